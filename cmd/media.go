package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// uploadRecord is the JSON view of a local upload record.
type uploadRecord struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	MediaID   int       `json:"media_id"`
	SourceURL string    `json:"source_url"`
	FileName  string    `json:"file_name"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MediaUpload uploads one file to the media library and records it locally.
func (r *Runner) MediaUpload(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireLogin(); err != nil {
		return err
	}

	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	r.logger.Info("uploading media", "path", path)
	media, err := r.wp.UploadFile(ctx, path, cmd.String("title"))
	if err != nil {
		return err
	}

	upload := models.NewUpload(media.ID, media.SourceURL, filepath.Base(path), "")
	if err := r.uploads.Create(upload); err != nil {
		r.logger.Warn("failed to record upload", "media_id", media.ID, "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(media, true)
	}
	return r.writePlain("✓ Uploaded %s as media #%d\n%s\n", filepath.Base(path), media.ID, media.SourceURL)
}

// MediaHistory lists uploads recorded by this client, newest first.
func (r *Runner) MediaHistory(ctx context.Context, cmd *cli.Command) error {
	uploads, err := r.uploads.List(map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		records := make([]uploadRecord, 0, len(uploads))
		for _, u := range uploads {
			records = append(records, uploadRecord{
				ID:        u.ID(),
				Sequence:  u.Sequence(),
				MediaID:   u.MediaID(),
				SourceURL: u.SourceURL(),
				FileName:  u.FileName(),
				Caption:   u.Caption(),
				CreatedAt: u.CreatedAt(),
			})
		}
		return r.writeJSON(records, true)
	}

	if len(uploads) == 0 {
		return r.writePlain("No uploads recorded\n")
	}

	r.writePlainHeader(fmt.Sprintf("Uploads (%d)", len(uploads)))
	for _, u := range uploads {
		r.writePlain("%4d. #%-6d %s  %s\n", u.Sequence(), u.MediaID(), u.CreatedAt().Local().Format("2006-01-02 15:04"), u.FileName())
		r.writePlain("      %s\n", u.SourceURL())
		if u.Caption() != "" {
			r.writePlain("      %s\n", u.Caption())
		}
	}
	return nil
}
