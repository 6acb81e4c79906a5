package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/repositories"
	"github.com/desertthunder/wpx/internal/services"
	"github.com/desertthunder/wpx/internal/session"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	kv         *repositories.KVRepository
	settings   *repositories.SettingsRepository
	uploads    *repositories.UploadRepository
	session    *session.Store
	nav        *navigator
	wp         *services.WordPressService
	api        *services.APIService
	editor     *tasks.Editor
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	WordPress  *services.WordPressService
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a database the session lives in a private in-memory database and is lost on exit.
// The persisted session is rehydrated before the runner is returned.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.Site.RequestTimeout()}
	}
	if opts.DB == nil {
		opts.DB = mustMemoryDatabase()
	}

	kv := repositories.NewKVRepository(opts.DB)
	uploads := repositories.NewUploadRepository(opts.DB)
	nav := &navigator{logger: opts.Logger}

	store := session.NewStore(kv,
		session.WithNavigator(nav),
		session.WithLogger(shared.WithLogger(opts.Logger, "component", "session")),
	)
	store.Rehydrate()

	wp := opts.WordPress
	if wp == nil {
		wp = services.NewWordPressService(opts.Config.Site.APIURL, store, opts.HTTPClient)
		wp.SetJWTPath(opts.Config.Site.JWTPath)
	}

	api := opts.API
	if api == nil {
		api = services.NewAPIService(wp.BaseURL(), wp.AuthClient())
	}

	editor := tasks.NewEditor(wp, store,
		tasks.WithRecorder(uploads),
		tasks.WithLogger(shared.WithLogger(opts.Logger, "component", "editor")),
		tasks.WithBaseURL(opts.Config.Site.URL),
		tasks.WithDefaultStatus(opts.Config.Editor.DefaultStatus),
		tasks.WithUploadPool(opts.Config.Uploads.Workers, opts.Config.Uploads.RateLimit),
	)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		db:         opts.DB,
		kv:         kv,
		settings:   repositories.NewSettingsRepository(kv),
		uploads:    uploads,
		session:    store,
		nav:        nav,
		wp:         wp,
		api:        api,
		editor:     editor,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// mustMemoryDatabase opens a migrated in-memory database.
func mustMemoryDatabase() *sql.DB {
	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: shared.MemoryDatabase})
	if err != nil {
		panic(fmt.Sprintf("failed to open in-memory database: %v", err))
	}
	return db
}

// Close releases the database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, postsCommand, galleryCommand, mediaCommand, categoriesCommand,
		searchCommand, dashboardCommand, profileCommand, settingsCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireLogin fails unless a session exists.
func (r *Runner) requireLogin() (session.Session, error) {
	s, ok := r.session.Current()
	if !ok {
		return session.Session{}, fmt.Errorf("%w: run 'wpx auth login' first", shared.ErrNotAuthenticated)
	}
	return s, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// navigator forwards post-logout navigation to whichever front end is running.
//
// The CLI has no views to reset, so without a target the request is only logged.
type navigator struct {
	mu     sync.Mutex
	target session.Navigator
	logger *log.Logger
}

func (n *navigator) Navigate(path string) {
	n.mu.Lock()
	target, logger := n.target, n.logger
	n.mu.Unlock()

	if target != nil {
		target.Navigate(path)
		return
	}
	logger.Debug("navigate after logout", "path", path)
}

// Set routes navigation to target; nil restores logging only.
func (n *navigator) Set(target session.Navigator) {
	n.mu.Lock()
	n.target = target
	n.mu.Unlock()
}
