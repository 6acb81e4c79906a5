package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

type mockBackend struct {
	mu       sync.Mutex
	nextID   int
	failures map[string]error // by file base name
	saveErr  error
	uploads  []string
	created  []models.PostPayload
	updated  map[int]models.PostPayload
	block    chan struct{} // when set, UploadFile waits on it
	started  chan struct{}
}

func newMockBackend() *mockBackend {
	return &mockBackend{nextID: 100, failures: map[string]error{}, updated: map[int]models.PostPayload{}}
}

func (m *mockBackend) UploadFile(ctx context.Context, path, title string) (*models.Media, error) {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	name := filepath.Base(path)
	if err, ok := m.failures[name]; ok {
		return nil, err
	}
	m.nextID++
	m.uploads = append(m.uploads, name)
	return &models.Media{ID: m.nextID, SourceURL: "https://blog.test/uploads/" + name}, nil
}

func (m *mockBackend) CreatePost(ctx context.Context, payload models.PostPayload) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.created = append(m.created, payload)
	return &models.Post{ID: 7, Status: payload.Status, FeaturedMedia: payload.FeaturedMedia}, nil
}

func (m *mockBackend) UpdatePost(ctx context.Context, id int, payload models.PostPayload) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.updated[id] = payload
	return &models.Post{ID: id, Status: payload.Status, FeaturedMedia: payload.FeaturedMedia}, nil
}

type mockRecorder struct {
	mu      sync.Mutex
	uploads []*models.Upload
	err     error
}

func (r *mockRecorder) Create(u *models.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.uploads = append(r.uploads, u)
	return nil
}

type failingTokens struct{ err error }

func (f failingTokens) Token() (*oauth2.Token, error) { return nil, f.err }

func loggedIn() oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"})
}

func newTestEditor(backend *mockBackend, opts ...Option) *Editor {
	opts = append([]Option{WithUploadPool(4, 1000)}, opts...)
	return NewEditor(backend, loggedIn(), opts...)
}

func editablePost() *models.Post {
	return &models.Post{
		ID:            42,
		Status:        "publish",
		FeaturedMedia: 9,
		Title:         models.Rendered{Rendered: "Trip", Raw: "Trip"},
		Excerpt:       models.Rendered{Raw: "Short"},
		Content: models.Rendered{Raw: `<p>Intro</p>
<div class="image-gallery">
  <div class="gallery-item">
    <img src="/a.jpg" alt="Gallery image" />
    <p class="image-caption">Beach</p>
  </div>
  <div class="gallery-item">
    <img src="https://cdn.test/b.jpg" alt="Gallery image" />
  </div>
</div>`},
	}
}

func TestEditorModes(t *testing.T) {
	t.Run("new editor starts in create mode with defaults", func(t *testing.T) {
		e := newTestEditor(newMockBackend(), WithDefaultStatus("pending"))
		d := e.Draft()
		if d.Mode != ModeCreate || d.Status != "pending" || d.Content != "" || len(d.Gallery) != 0 {
			t.Errorf("unexpected initial draft: %+v", d)
		}
	})

	t.Run("edit mode seeds gallery and caret", func(t *testing.T) {
		e := newTestEditor(newMockBackend(), WithBaseURL("https://blog.test"))
		e.SelectGalleryFile("pending.jpg")
		e.SetCaption("pending")

		post := editablePost()
		e.EnterEditMode(post)
		d := e.Draft()

		if d.Mode != ModeEdit || d.PostID != 42 {
			t.Fatalf("expected edit mode for post 42, got %v/%d", d.Mode, d.PostID)
		}
		if d.Title != "Trip" || d.Excerpt != "Short" || d.Status != "publish" || d.FeaturedMediaID != 9 {
			t.Errorf("post fields not loaded: %+v", d)
		}
		if d.GalleryFile != "" || d.Caption != "" {
			t.Errorf("pending file and caption should be cleared, got %q %q", d.GalleryFile, d.Caption)
		}
		if len(d.Gallery) != 2 {
			t.Fatalf("expected 2 gallery items, got %d", len(d.Gallery))
		}
		if d.Gallery[0].URL != "https://blog.test/a.jpg" || d.Gallery[0].Caption != "Beach" {
			t.Errorf("unexpected first item %+v", d.Gallery[0])
		}
		if d.Gallery[1].Origin != gallery.OriginExtracted {
			t.Errorf("expected extracted origin, got %v", d.Gallery[1].Origin)
		}
		end := len([]rune(post.Content.Raw))
		if d.CaretStart != end || d.CaretEnd != end {
			t.Errorf("expected caret at %d, got %d-%d", end, d.CaretStart, d.CaretEnd)
		}
	})

	t.Run("rendered content is used without raw", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		e.EnterEditMode(&models.Post{ID: 3, Content: models.Rendered{Rendered: "<p>rendered</p>"}})
		d := e.Draft()
		if d.Content != "<p>rendered</p>" {
			t.Errorf("expected rendered content, got %q", d.Content)
		}
		if d.Status != DefaultStatus {
			t.Errorf("expected default status for empty post status, got %q", d.Status)
		}
	})

	t.Run("create mode clears everything", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		e.EnterEditMode(editablePost())
		e.SelectFeaturedFile("cover.jpg")
		e.EnterCreateMode()

		d := e.Draft()
		if d.Mode != ModeCreate || d.PostID != 0 {
			t.Errorf("expected create mode without post id, got %v/%d", d.Mode, d.PostID)
		}
		if d.Title != "" || d.Content != "" || d.Excerpt != "" || d.Status != DefaultStatus ||
			d.FeaturedMediaID != 0 || d.FeaturedFile != "" || len(d.Gallery) != 0 || d.CaretStart != 0 {
			t.Errorf("draft not cleared: %+v", d)
		}
	})

	t.Run("reset keeps mode and post id", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		e.EnterEditMode(editablePost())
		e.Reset()

		d := e.Draft()
		if d.Mode != ModeEdit || d.PostID != 42 {
			t.Errorf("reset changed mode or id: %v/%d", d.Mode, d.PostID)
		}
		if d.Title != "" || d.Content != "" || len(d.Gallery) != 0 {
			t.Errorf("reset did not clear the draft: %+v", d)
		}
	})
}

func TestEditorSetters(t *testing.T) {
	e := newTestEditor(newMockBackend())

	e.SetContent("héllo")
	e.SetCaret(10, 20)
	if d := e.Draft(); d.CaretStart != 10 || d.CaretEnd != 20 {
		t.Fatalf("SetCaret should store raw offsets, got %d-%d", d.CaretStart, d.CaretEnd)
	}

	e.SetContent("hé")
	if d := e.Draft(); d.CaretStart != 2 || d.CaretEnd != 2 {
		t.Errorf("expected caret clamped to 2 runes, got %d-%d", d.CaretStart, d.CaretEnd)
	}

	e.SetStatus("publish")
	if got := e.Draft().Status; got != "publish" {
		t.Errorf("expected publish, got %q", got)
	}
	e.SetStatus("  ")
	if got := e.Draft().Status; got != DefaultStatus {
		t.Errorf("expected default status, got %q", got)
	}

	e.EnterEditMode(editablePost())
	e.SelectFeaturedFile("new-cover.jpg")
	if d := e.Draft(); d.FeaturedMediaID != 0 || d.FeaturedFile != "new-cover.jpg" {
		t.Errorf("selecting a featured file should clear the media id: %+v", d)
	}
}

func TestEditorGallery(t *testing.T) {
	t.Run("insert at caret", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		e.EnterEditMode(&models.Post{ID: 1, Content: models.Rendered{Raw: `AB<img src="https://x.test/1.jpg">`}})
		e.SetContent("AB")
		e.SetCaret(1, 1)

		content, caret, err := e.InsertGallery()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		markup, _ := gallery.Serialize(e.Gallery())
		want := "A\n" + markup + "\nB"
		if content != want {
			t.Errorf("expected %q, got %q", want, content)
		}
		if wantCaret := 1 + len([]rune(markup)) + 2; caret != wantCaret {
			t.Errorf("expected caret %d, got %d", wantCaret, caret)
		}
		if d := e.Draft(); d.Content != want || d.CaretStart != caret || d.CaretEnd != caret {
			t.Errorf("editor state not updated: %+v", d)
		}
	})

	t.Run("empty gallery leaves content unchanged", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		e.SetContent("body")
		content, _, err := e.InsertGallery()
		if !errors.Is(err, shared.ErrEmptyGallery) {
			t.Fatalf("expected ErrEmptyGallery, got %v", err)
		}
		if content != "body" || e.Draft().Content != "body" {
			t.Errorf("content changed: %q", content)
		}
	})

	t.Run("remove item", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		e.EnterEditMode(editablePost())

		if err := e.RemoveGalleryItem(0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		items := e.Gallery()
		if len(items) != 1 || items[0].URL != "https://cdn.test/b.jpg" {
			t.Errorf("unexpected gallery after removal: %+v", items)
		}
		if err := e.RemoveGalleryItem(1); !errors.Is(err, shared.ErrIndexOutOfRange) {
			t.Errorf("expected ErrIndexOutOfRange, got %v", err)
		}
	})
}

func TestUploadGalleryImage(t *testing.T) {
	t.Run("appends uploaded item and clears the selection", func(t *testing.T) {
		backend := newMockBackend()
		rec := &mockRecorder{}
		e := newTestEditor(backend, WithRecorder(rec))
		e.EnterEditMode(editablePost())
		e.SelectGalleryFile("/tmp/photos/sunset.jpg")
		e.SetCaption("  Sunset ")

		item, err := e.UploadGalleryImage(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID != "101" || item.Caption != "Sunset" || item.Origin != gallery.OriginUploaded {
			t.Errorf("unexpected item %+v", item)
		}

		d := e.Draft()
		if len(d.Gallery) != 3 || d.Gallery[2] != *item {
			t.Errorf("expected item appended last, got %+v", d.Gallery)
		}
		if d.GalleryFile != "" || d.Caption != "" {
			t.Errorf("selection not cleared: %q %q", d.GalleryFile, d.Caption)
		}
		if len(rec.uploads) != 1 || rec.uploads[0].FileName() != "sunset.jpg" || rec.uploads[0].Caption() != "Sunset" {
			t.Errorf("upload not recorded: %+v", rec.uploads)
		}
	})

	t.Run("failure keeps the selection", func(t *testing.T) {
		backend := newMockBackend()
		backend.failures["big.jpg"] = fmt.Errorf("%w: file too large", shared.ErrAPIRequest)
		e := newTestEditor(backend)
		e.SelectGalleryFile("big.jpg")
		e.SetCaption("Big")

		_, err := e.UploadGalleryImage(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		d := e.Draft()
		if d.GalleryFile != "big.jpg" || d.Caption != "Big" || len(d.Gallery) != 0 {
			t.Errorf("state changed after failure: %+v", d)
		}
		if d.Busy {
			t.Error("editor still busy after failure")
		}
	})

	t.Run("requires a file and a session", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		if _, err := e.UploadGalleryImage(context.Background()); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		e = NewEditor(newMockBackend(), failingTokens{shared.ErrNotAuthenticated})
		e.SelectGalleryFile("a.jpg")
		if _, err := e.UploadGalleryImage(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		e = NewEditor(newMockBackend(), nil)
		e.SelectGalleryFile("a.jpg")
		if _, err := e.UploadGalleryImage(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated without token source, got %v", err)
		}
	})

	t.Run("recorder failure does not fail the upload", func(t *testing.T) {
		e := newTestEditor(newMockBackend(), WithRecorder(&mockRecorder{err: errors.New("disk full")}))
		e.SelectGalleryFile("a.jpg")
		if _, err := e.UploadGalleryImage(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(e.Gallery()) != 1 {
			t.Error("expected the item to be appended")
		}
	})
}

func TestUploadFeaturedImage(t *testing.T) {
	backend := newMockBackend()
	e := newTestEditor(backend)

	if _, err := e.UploadFeaturedImage(context.Background()); !errors.Is(err, shared.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}

	e.SelectFeaturedFile("cover.png")
	media, err := e.UploadFeaturedImage(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := e.Draft()
	if d.FeaturedMediaID != media.ID || d.FeaturedFile != "" {
		t.Errorf("featured media not stored: %+v", d)
	}
	if len(d.Gallery) != 0 {
		t.Error("featured image must not be added to the gallery")
	}
}

func TestUploadBatch(t *testing.T) {
	t.Run("appends every success", func(t *testing.T) {
		backend := newMockBackend()
		backend.failures["broken.jpg"] = fmt.Errorf("%w: unsupported type", shared.ErrAPIRequest)
		rec := &mockRecorder{}
		e := newTestEditor(backend, WithRecorder(rec))

		files := []BatchFile{
			{Path: "one.jpg", Caption: "One"},
			{Path: "two.jpg"},
			{Path: "broken.jpg"},
			{Path: "three.jpg", Caption: "Three"},
			{Path: "four.jpg"},
		}
		progress := make(chan ProgressUpdate, 32)

		result, err := e.UploadBatch(context.Background(), progress, files)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Total != 5 || len(result.Uploaded) != 4 || len(result.Failed) != 1 {
			t.Fatalf("unexpected result: total=%d uploaded=%d failed=%d",
				result.Total, len(result.Uploaded), len(result.Failed))
		}
		if result.Failed[0].Path != "broken.jpg" || !errors.Is(result.Failed[0].Err, shared.ErrAPIRequest) {
			t.Errorf("unexpected failure %+v", result.Failed[0])
		}

		var got []string
		for _, it := range e.Gallery() {
			got = append(got, strings.TrimPrefix(it.URL, "https://blog.test/uploads/"))
		}
		slices.Sort(got)
		want := []string{"four.jpg", "one.jpg", "three.jpg", "two.jpg"}
		if !slices.Equal(got, want) {
			t.Errorf("expected gallery %v, got %v", want, got)
		}
		if !slices.Equal(e.Gallery(), result.Uploaded) {
			t.Error("gallery order should match completion order")
		}
		if len(rec.uploads) != 4 {
			t.Errorf("expected 4 recorded uploads, got %d", len(rec.uploads))
		}
		if e.Busy() {
			t.Error("editor still busy after batch")
		}

		close(progress)
		var completed, failed int
		for u := range progress {
			if u.Phase != UploadGallery {
				t.Errorf("unexpected phase %v", u.Phase)
			}
			switch {
			case strings.Contains(u.Message, "✓"):
				completed++
			case strings.Contains(u.Message, "✗"):
				failed++
			}
		}
		if completed != 4 || failed != 1 {
			t.Errorf("expected 4 completed and 1 failed update, got %d/%d", completed, failed)
		}
	})

	t.Run("captions follow their files", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		_, err := e.UploadBatch(context.Background(), nil, []BatchFile{
			{Path: "a.jpg", Caption: "Alpha"},
			{Path: "b.jpg", Caption: "Beta"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		captions := map[string]string{}
		for _, it := range e.Gallery() {
			captions[filepath.Base(it.URL)] = it.Caption
		}
		if captions["a.jpg"] != "Alpha" || captions["b.jpg"] != "Beta" {
			t.Errorf("captions mismatched: %v", captions)
		}
	})

	t.Run("rejects empty input and missing session", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		if _, err := e.UploadBatch(context.Background(), nil, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		e = NewEditor(newMockBackend(), failingTokens{shared.ErrTokenExpired})
		_, err := e.UploadBatch(context.Background(), nil, []BatchFile{{Path: "a.jpg"}})
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		e := newTestEditor(newMockBackend())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := e.UploadBatch(ctx, nil, []BatchFile{{Path: "a.jpg"}, {Path: "b.jpg"}})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(result.Uploaded) != 0 || len(e.Gallery()) != 0 {
			t.Errorf("nothing should be uploaded after cancel: %+v", result.Uploaded)
		}
	})
}

func TestSave(t *testing.T) {
	t.Run("create resets the draft", func(t *testing.T) {
		backend := newMockBackend()
		e := newTestEditor(backend)
		e.SetTitle("Hello")
		e.SetContent("<p>World</p>")
		e.SetExcerpt("Hi")

		progress := make(chan ProgressUpdate, 8)
		post, err := e.Save(context.Background(), progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if post.ID != 7 {
			t.Errorf("expected post 7, got %d", post.ID)
		}
		want := models.PostPayload{Title: "Hello", Content: "<p>World</p>", Excerpt: "Hi", Status: DefaultStatus}
		if len(backend.created) != 1 || backend.created[0] != want {
			t.Errorf("unexpected create payload: %+v", backend.created)
		}
		if d := e.Draft(); d.Title != "" || d.Content != "" || d.Mode != ModeCreate {
			t.Errorf("draft not reset after create: %+v", d)
		}

		close(progress)
		var phases []Phase
		for u := range progress {
			phases = append(phases, u.Phase)
		}
		if !slices.Equal(phases, []Phase{SavePost, SavePost}) {
			t.Errorf("unexpected progress phases %v", phases)
		}
	})

	t.Run("edit updates and keeps the draft", func(t *testing.T) {
		backend := newMockBackend()
		e := newTestEditor(backend)
		e.EnterEditMode(editablePost())
		e.SetTitle("Trip, revised")

		if _, err := e.Save(context.Background(), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		payload, ok := backend.updated[42]
		if !ok {
			t.Fatal("expected PUT for post 42")
		}
		if payload.Title != "Trip, revised" || payload.Status != "publish" || payload.FeaturedMedia != 9 {
			t.Errorf("unexpected update payload %+v", payload)
		}
		if len(backend.created) != 0 {
			t.Error("edit mode must not create")
		}
		if d := e.Draft(); d.Title != "Trip, revised" || d.PostID != 42 {
			t.Errorf("draft should be kept after update: %+v", d)
		}
	})

	t.Run("uploads pending featured image first", func(t *testing.T) {
		backend := newMockBackend()
		e := newTestEditor(backend)
		e.SetTitle("T")
		e.SetContent("C")
		e.SelectFeaturedFile("cover.jpg")

		progress := make(chan ProgressUpdate, 8)
		post, err := e.Save(context.Background(), progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if post.FeaturedMedia != 101 || backend.created[0].FeaturedMedia != 101 {
			t.Errorf("expected featured media 101, got %d", post.FeaturedMedia)
		}
		if first := <-progress; first.Phase != UploadFeatured {
			t.Errorf("expected featured upload first, got %v", first.Phase)
		}
	})

	t.Run("validation order", func(t *testing.T) {
		tests := []struct {
			name    string
			tokens  oauth2.TokenSource
			title   string
			content string
			wantErr error
		}{
			{"not logged in", failingTokens{shared.ErrNotAuthenticated}, "", "", shared.ErrNotAuthenticated},
			{"missing title", loggedIn(), " ", "body", shared.ErrValidation},
			{"missing content", loggedIn(), "Title", "\n", shared.ErrValidation},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				backend := newMockBackend()
				e := NewEditor(backend, tt.tokens)
				e.SetTitle(tt.title)
				e.SetContent(tt.content)

				if _, err := e.Save(context.Background(), nil); !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if len(backend.created) != 0 {
					t.Error("nothing should be saved")
				}
			})
		}
	})

	t.Run("backend failure keeps the draft", func(t *testing.T) {
		backend := newMockBackend()
		backend.saveErr = fmt.Errorf("%w: 500", shared.ErrAPIRequest)
		e := newTestEditor(backend)
		e.SetTitle("T")
		e.SetContent("C")

		if _, err := e.Save(context.Background(), nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if d := e.Draft(); d.Title != "T" || d.Busy {
			t.Errorf("unexpected draft after failure: %+v", d)
		}
	})

	t.Run("refused while an upload is in flight", func(t *testing.T) {
		backend := newMockBackend()
		backend.block = make(chan struct{})
		backend.started = make(chan struct{}, 1)
		e := newTestEditor(backend)
		e.SetTitle("T")
		e.SetContent("C")
		e.SelectGalleryFile("slow.jpg")

		done := make(chan error, 1)
		go func() {
			_, err := e.UploadGalleryImage(context.Background())
			done <- err
		}()
		<-backend.started

		if !e.Busy() {
			t.Error("expected busy during upload")
		}
		if _, err := e.Save(context.Background(), nil); !errors.Is(err, shared.ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", err)
		}

		close(backend.block)
		if err := <-done; err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if e.Busy() {
			t.Error("expected idle after upload")
		}
		if _, err := e.Save(context.Background(), nil); err != nil {
			t.Errorf("save after upload failed: %v", err)
		}
	})
}

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{
		UploadGallery:  "upload_gallery",
		UploadFeatured: "upload_featured",
		SavePost:       "save_post",
		Phase(99):      "",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
	if ModeEdit.String() != "edit" || ModeCreate.String() != "create" {
		t.Error("unexpected mode names")
	}
}
