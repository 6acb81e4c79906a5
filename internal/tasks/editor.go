package tasks

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

var errNoTokenSource = fmt.Errorf("%w: no session available", shared.ErrNotAuthenticated)

// EnterCreateMode starts a blank post.
func (e *Editor) EnterCreateMode() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = ModeCreate
	e.postID = 0
	e.reset()
}

// EnterEditMode loads post into the editor and seeds the gallery from its content.
//
// Raw content is used when the API returned it (context=edit), rendered content otherwise.
func (e *Editor) EnterEditMode(post *models.Post) {
	content := post.EditableContent()
	items := e.extractor.Extract(content)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.mode = ModeEdit
	e.postID = post.ID
	e.title = post.EditableTitle()
	e.content = content
	e.excerpt = post.EditableExcerpt()
	e.status = post.Status
	if e.status == "" {
		e.status = e.defaultStatus
	}
	e.featuredMediaID = post.FeaturedMedia
	e.featuredFile = ""
	e.galleryFile = ""
	e.caption = ""
	e.items = items
	e.caretStart = utf8.RuneCountInString(content)
	e.caretEnd = e.caretStart

	e.logger.Debug("editing post", "id", post.ID, "gallery_items", len(items))
}

// Reset clears the draft but keeps the mode and post id.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Editor) reset() {
	e.title = ""
	e.content = ""
	e.excerpt = ""
	e.status = e.defaultStatus
	e.featuredMediaID = 0
	e.featuredFile = ""
	e.galleryFile = ""
	e.caption = ""
	e.items = nil
	e.caretStart = 0
	e.caretEnd = 0
}

// Draft returns a copy of the current state.
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Draft{
		Mode:            e.mode,
		PostID:          e.postID,
		Title:           e.title,
		Content:         e.content,
		Excerpt:         e.excerpt,
		Status:          e.status,
		FeaturedMediaID: e.featuredMediaID,
		FeaturedFile:    e.featuredFile,
		GalleryFile:     e.galleryFile,
		Caption:         e.caption,
		Gallery:         slices.Clone(e.items),
		CaretStart:      e.caretStart,
		CaretEnd:        e.caretEnd,
		Busy:            e.inflight > 0,
	}
}

// Gallery returns a copy of the gallery list.
func (e *Editor) Gallery() []gallery.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.items)
}

// Busy reports whether an upload or save is in flight.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight > 0
}

func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	e.title = title
	e.mu.Unlock()
}

func (e *Editor) SetExcerpt(excerpt string) {
	e.mu.Lock()
	e.excerpt = excerpt
	e.mu.Unlock()
}

// SetContent replaces the content buffer. The caret is clamped to the new content.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.content = content
	n := utf8.RuneCountInString(content)
	e.caretStart = min(e.caretStart, n)
	e.caretEnd = min(e.caretEnd, n)
}

// SetStatus sets the post status; an empty status restores the default.
func (e *Editor) SetStatus(status string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	status = strings.TrimSpace(status)
	if status == "" {
		status = e.defaultStatus
	}
	e.status = status
}

// SetCaret records the selection in the content buffer, counted in runes.
func (e *Editor) SetCaret(start, end int) {
	e.mu.Lock()
	e.caretStart, e.caretEnd = start, end
	e.mu.Unlock()
}

// SelectGalleryFile chooses the file for the next [Editor.UploadGalleryImage].
func (e *Editor) SelectGalleryFile(path string) {
	e.mu.Lock()
	e.galleryFile = strings.TrimSpace(path)
	e.mu.Unlock()
}

// SetCaption sets the caption of the next gallery upload.
func (e *Editor) SetCaption(caption string) {
	e.mu.Lock()
	e.caption = caption
	e.mu.Unlock()
}

// SelectFeaturedFile chooses a featured image. Its media id is cleared until it is uploaded.
func (e *Editor) SelectFeaturedFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.featuredFile = strings.TrimSpace(path)
	if e.featuredFile != "" {
		e.featuredMediaID = 0
	}
}

// RemoveGalleryItem removes the item at index.
func (e *Editor) RemoveGalleryItem(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := gallery.RemoveAt(index, e.items)
	if err != nil {
		return err
	}
	e.items = items
	return nil
}

// InsertGallery serializes the gallery into the content at the recorded selection.
//
// It returns the new content and the caret right after the inserted block. With an
// empty gallery the content is left alone and [shared.ErrEmptyGallery] is returned.
func (e *Editor) InsertGallery() (string, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, caret, err := gallery.Insert(e.items, e.content, e.caretStart, e.caretEnd)
	if err != nil {
		return e.content, caret, err
	}

	e.content = content
	e.caretStart, e.caretEnd = caret, caret
	return content, caret, nil
}
