package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/wpx/internal/formatter"
	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// GalleryExtract prints the gallery found in a post or a local HTML file.
func (r *Runner) GalleryExtract(ctx context.Context, cmd *cli.Command) error {
	var content string

	if path := cmd.String("file"); path != "" {
		data, err := shared.VerifyAndReadFile(path)
		if err != nil {
			return err
		}
		content = string(data)
	} else {
		_, loggedIn := r.session.Current()
		post, err := r.loadPost(ctx, cmd.StringArg("post"), loggedIn)
		if err != nil {
			return err
		}
		content = post.EditableContent()
	}

	items := gallery.NewExtractor(gallery.WithBaseURL(r.config.Site.URL)).Extract(content)
	r.logger.Debug("extracted gallery", "items", len(items))

	data, err := formatter.ExportGallery(items, cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// GalleryRender prints gallery markup for the given image URLs.
func (r *Runner) GalleryRender(ctx context.Context, cmd *cli.Command) error {
	markup, err := gallery.Serialize(imageItems(cmd.StringSlice("image")))
	if err != nil {
		return err
	}
	return r.writePlain("%s", markup)
}

// GalleryInsert splices gallery markup into a content file and writes it back.
func (r *Runner) GalleryInsert(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return err
	}

	content := string(data)
	at := cmd.Int("at")
	if at < 0 {
		at = len([]rune(content))
	}

	out, caret, err := gallery.Insert(imageItems(cmd.StringSlice("image")), content, at, at)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write content file: %w", err)
	}

	r.logger.Info("gallery inserted", "file", path, "at", at, "caret", caret)
	return r.writePlain("✓ Inserted gallery into %s (caret at %d)\n", path, caret)
}

// GalleryUpload uploads images through the worker pool and prints the resulting gallery.
func (r *Runner) GalleryUpload(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireLogin(); err != nil {
		return err
	}

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one image file", shared.ErrMissingArgument)
	}

	editor := r.editor
	if workers := cmd.Int("workers"); workers > 0 {
		editor = tasks.NewEditor(r.wp, r.session,
			tasks.WithRecorder(r.uploads),
			tasks.WithLogger(shared.WithLogger(r.logger, "component", "editor")),
			tasks.WithBaseURL(r.config.Site.URL),
			tasks.WithUploadPool(workers, r.config.Uploads.RateLimit),
		)
	}
	editor.EnterCreateMode()
	defer editor.Reset()

	var result *tasks.BatchResult
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = editor.UploadBatch(ctx, progress, parseBatchFiles(args))
		return err
	})
	if err != nil {
		return err
	}

	for _, f := range result.Failed {
		r.writePlain("✗ %s: %v\n", f.Path, f.Err)
	}
	r.writePlain("✓ Uploaded %d of %d images\n\n", len(result.Uploaded), result.Total)

	if len(result.Uploaded) == 0 {
		return fmt.Errorf("%w: all %d uploads failed", shared.ErrAPIRequest, result.Total)
	}

	data, err := formatter.ExportGallery(result.Uploaded, cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// imageItems builds gallery items from url or url=caption arguments.
//
// A URL with a query string is taken whole, since its own "=" would be ambiguous.
func imageItems(args []string) []gallery.Item {
	items := make([]gallery.Item, 0, len(args))
	for _, arg := range args {
		src, caption := arg, ""
		if !strings.Contains(arg, "?") {
			src, caption, _ = strings.Cut(arg, "=")
		}
		items = gallery.AppendUploaded(gallery.Item{
			URL:     strings.TrimSpace(src),
			Caption: strings.TrimSpace(caption),
		}, items)
	}
	return items
}
