package tasks

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
)

const (
	DefaultStatus    = "draft"
	DefaultWorkers   = 3
	MaxWorkers       = 10
	DefaultRateLimit = 2.0
)

// Backend is the part of the WordPress API the editor writes to.
//
// services.WordPressService implements it.
type Backend interface {
	UploadFile(ctx context.Context, path, title string) (*models.Media, error)
	CreatePost(ctx context.Context, payload models.PostPayload) (*models.Post, error)
	UpdatePost(ctx context.Context, id int, payload models.PostPayload) (*models.Post, error)
}

// UploadRecorder persists successful uploads (repositories.UploadRepository).
//
// Recording is best effort: a failure is logged and the upload still counts.
type UploadRecorder interface {
	Create(upload *models.Upload) error
}

// Mode is the editor mode.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return ""
	}
}

// Draft is a copy of the editor state.
type Draft struct {
	Mode            Mode
	PostID          int
	Title           string
	Content         string
	Excerpt         string
	Status          string
	FeaturedMediaID int
	FeaturedFile    string
	GalleryFile     string
	Caption         string
	Gallery         []gallery.Item
	CaretStart      int
	CaretEnd        int
	Busy            bool
}

// Editor holds the state of the post being written and runs its uploads and saves.
//
// All methods are safe for concurrent use.
type Editor struct {
	mu        sync.Mutex
	backend   Backend
	tokens    oauth2.TokenSource
	recorder  UploadRecorder
	extractor *gallery.Extractor
	logger    *log.Logger

	defaultStatus string
	workers       int
	rateLimit     float64

	mode            Mode
	postID          int
	title           string
	content         string
	excerpt         string
	status          string
	featuredMediaID int
	featuredFile    string
	galleryFile     string
	caption         string
	items           []gallery.Item
	caretStart      int
	caretEnd        int
	inflight        int
}

// Option configures an [Editor].
type Option func(*Editor)

// WithRecorder records every successful upload.
func WithRecorder(r UploadRecorder) Option {
	return func(e *Editor) { e.recorder = r }
}

// WithLogger sets the editor logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// WithBaseURL resolves relative image sources found in edited content.
func WithBaseURL(u string) Option {
	return func(e *Editor) { e.extractor = gallery.NewExtractor(gallery.WithBaseURL(u)) }
}

// WithDefaultStatus sets the status of new posts.
func WithDefaultStatus(status string) Option {
	return func(e *Editor) {
		if status != "" {
			e.defaultStatus = status
		}
	}
}

// WithUploadPool sizes the batch upload pool. Non-positive values keep the defaults.
func WithUploadPool(workers int, rateLimit float64) Option {
	return func(e *Editor) {
		if workers > 0 {
			e.workers = min(workers, MaxWorkers)
		}
		if rateLimit > 0 {
			e.rateLimit = rateLimit
		}
	}
}

// NewEditor creates an editor in create mode.
//
// tokens gates protected actions; the session store is the usual source.
func NewEditor(backend Backend, tokens oauth2.TokenSource, opts ...Option) *Editor {
	e := &Editor{
		backend:       backend,
		tokens:        tokens,
		extractor:     gallery.NewExtractor(),
		logger:        log.New(io.Discard),
		defaultStatus: DefaultStatus,
		workers:       DefaultWorkers,
		rateLimit:     DefaultRateLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Editor) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// begin marks a network operation in flight. Callers hold the lock.
func (e *Editor) begin() { e.inflight++ }

func (e *Editor) done() {
	e.mu.Lock()
	e.inflight--
	e.mu.Unlock()
}

// authorize fails when no usable bearer token is available.
func (e *Editor) authorize() error {
	if e.tokens == nil {
		return errNoTokenSource
	}
	_, err := e.tokens.Token()
	return err
}
