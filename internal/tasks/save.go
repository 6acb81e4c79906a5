package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// Save creates or updates the post.
//
// Checks run in order: nothing in flight, a usable token, a title, then content.
// A selected featured image without a media id is uploaded first. After a
// successful create the draft is reset; after an update the draft is kept.
func (e *Editor) Save(ctx context.Context, progress chan<- ProgressUpdate) (*models.Post, error) {
	e.mu.Lock()
	if e.inflight > 0 {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: wait for the current upload or save to finish", shared.ErrBusy)
	}
	if err := e.authorize(); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("you must be logged in to save posts: %w", err)
	}
	if strings.TrimSpace(e.title) == "" {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: title is required", shared.ErrValidation)
	}
	if strings.TrimSpace(e.content) == "" {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: content is required", shared.ErrValidation)
	}

	mode, postID, featuredFile := e.mode, e.postID, e.featuredFile
	payload := models.PostPayload{
		Title:         e.title,
		Content:       e.content,
		Excerpt:       e.excerpt,
		Status:        e.status,
		FeaturedMedia: e.featuredMediaID,
	}
	e.begin()
	e.mu.Unlock()
	defer e.done()

	if featuredFile != "" && payload.FeaturedMedia == 0 {
		e.sendProgress(progress, featuredUploadUpdate(featuredFile))
		media, err := e.uploadFeatured(ctx, featuredFile)
		if err != nil {
			return nil, err
		}
		payload.FeaturedMedia = media.ID
	}

	e.sendProgress(progress, savingPostUpdate(mode))

	var (
		post *models.Post
		err  error
	)
	if mode == ModeEdit && postID > 0 {
		post, err = e.backend.UpdatePost(ctx, postID, payload)
	} else {
		post, err = e.backend.CreatePost(ctx, payload)
	}
	if err != nil {
		e.logger.Error("failed to save post", "mode", mode, "id", postID, "error", err)
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	e.logger.Info("saved post", "mode", mode, "id", post.ID, "status", post.Status)

	e.mu.Lock()
	if mode == ModeCreate && e.mode == ModeCreate {
		e.reset()
	}
	e.mu.Unlock()

	e.sendProgress(progress, savedPostUpdate(mode, post))
	return post, nil
}
