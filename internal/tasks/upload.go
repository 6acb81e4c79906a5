package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// BatchFile is one file of a batch upload with its gallery caption.
type BatchFile struct {
	Path    string
	Caption string
}

// UploadFailure is a batch file that could not be uploaded.
type UploadFailure struct {
	Path string
	Err  error
}

// BatchResult summarizes an [Editor.UploadBatch] run.
type BatchResult struct {
	Total    int
	Uploaded []gallery.Item // completion order
	Failed   []UploadFailure
}

type uploadResult struct {
	file  BatchFile
	media *models.Media
	err   error
}

// UploadGalleryImage uploads the selected gallery file and appends it to the gallery with the pending caption.
//
// On success the selection and caption are cleared. On failure they are kept for a retry.
func (e *Editor) UploadGalleryImage(ctx context.Context) (*gallery.Item, error) {
	e.mu.Lock()
	path, caption := e.galleryFile, e.caption
	if path == "" {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: select an image file first", shared.ErrMissingArgument)
	}
	if err := e.authorize(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.begin()
	e.mu.Unlock()
	defer e.done()

	e.logger.Info("uploading gallery image", "file", path)

	media, err := e.backend.UploadFile(ctx, path, filepath.Base(path))
	if err != nil {
		e.logger.Error("gallery image upload failed", "file", path, "error", err)
		return nil, fmt.Errorf("gallery image upload failed: %w", err)
	}

	item := e.appendUpload(BatchFile{Path: path, Caption: caption}, media)

	e.mu.Lock()
	if e.galleryFile == path {
		e.galleryFile = ""
		e.caption = ""
	}
	e.mu.Unlock()
	return &item, nil
}

// UploadFeaturedImage uploads the selected featured image and stores its media id.
func (e *Editor) UploadFeaturedImage(ctx context.Context) (*models.Media, error) {
	e.mu.Lock()
	path := e.featuredFile
	if path == "" {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: select a featured image first", shared.ErrMissingArgument)
	}
	if err := e.authorize(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.begin()
	e.mu.Unlock()
	defer e.done()

	return e.uploadFeatured(ctx, path)
}

func (e *Editor) uploadFeatured(ctx context.Context, path string) (*models.Media, error) {
	e.logger.Info("uploading featured image", "file", path)

	media, err := e.backend.UploadFile(ctx, path, filepath.Base(path))
	if err != nil {
		e.logger.Error("featured image upload failed", "file", path, "error", err)
		return nil, fmt.Errorf("featured image upload failed: %w", err)
	}

	e.mu.Lock()
	if e.featuredFile == path {
		e.featuredMediaID = media.ID
		e.featuredFile = ""
	}
	e.mu.Unlock()

	e.record(path, "", media)
	return media, nil
}

// UploadBatch uploads files concurrently and appends each success to the gallery as it completes.
//
// The pool is bounded by the configured worker count and requests are paced by a
// token bucket. Failures are collected in the result; the returned error is only set
// when the batch could not start or ctx was cancelled.
func (e *Editor) UploadBatch(ctx context.Context, progress chan<- ProgressUpdate, files []BatchFile) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", shared.ErrMissingArgument)
	}

	e.mu.Lock()
	if err := e.authorize(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	workers, limit := min(e.workers, len(files)), e.rateLimit
	e.begin()
	e.mu.Unlock()
	defer e.done()

	result := &BatchResult{
		Total:    len(files),
		Uploaded: make([]gallery.Item, 0, len(files)),
	}

	limiter := rate.NewLimiter(rate.Limit(limit), 1)

	jobs := make(chan BatchFile, len(files))
	results := make(chan uploadResult, len(files))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go e.uploadWorker(ctx, &wg, jobs, results)
	}

	go func() {
		defer close(jobs)
		for i, f := range files {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			e.sendProgress(progress, uploadStartedUpdate(i+1, len(files), f.Path))
			jobs <- f
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.err != nil {
			result.Failed = append(result.Failed, UploadFailure{Path: res.file.Path, Err: res.err})
			e.sendProgress(progress, uploadFailedUpdate(completed, len(files), res.file.Path, res.err))
			continue
		}

		item := e.appendUpload(res.file, res.media)
		result.Uploaded = append(result.Uploaded, item)
		e.sendProgress(progress, uploadCompletedUpdate(completed, len(files), res.file.Path, item))
	}

	e.logger.Info("batch upload finished",
		"uploaded", len(result.Uploaded), "failed", len(result.Failed), "total", len(files))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("batch upload interrupted after %d of %d files: %w", completed, len(files), err)
	}
	return result, nil
}

// uploadWorker uploads files from the jobs channel until it is closed.
func (e *Editor) uploadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan BatchFile,
	results chan<- uploadResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- uploadResult{file: job, err: ctx.Err()}
			continue
		default:
		}

		media, err := e.backend.UploadFile(ctx, job.Path, filepath.Base(job.Path))
		results <- uploadResult{file: job, media: media, err: err}
	}
}

// appendUpload adds an uploaded media item to the gallery and records it.
func (e *Editor) appendUpload(f BatchFile, media *models.Media) gallery.Item {
	item := gallery.Item{
		ID:      strconv.Itoa(media.ID),
		URL:     media.SourceURL,
		Caption: strings.TrimSpace(f.Caption),
	}

	e.mu.Lock()
	e.items = gallery.AppendUploaded(item, e.items)
	item = e.items[len(e.items)-1]
	e.mu.Unlock()

	e.record(f.Path, item.Caption, media)
	return item
}

func (e *Editor) record(path, caption string, media *models.Media) {
	if e.recorder == nil {
		return
	}
	upload := models.NewUpload(media.ID, media.SourceURL, filepath.Base(path), caption)
	if err := e.recorder.Create(upload); err != nil {
		e.logger.Warn("failed to record upload", "media_id", media.ID, "error", err)
	}
}
