package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/wpx/internal/formatter"
	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/desertthunder/wpx/internal/tasks"
	"github.com/urfave/cli/v3"
)

const relatedPostCount = 3

// PostsList lists posts, optionally saving the export to a file.
func (r *Runner) PostsList(ctx context.Context, cmd *cli.Command) error {
	q := models.PostQuery{
		Page:    max(cmd.Int("page"), 1),
		PerPage: cmd.Int("per-page"),
		Search:  cmd.String("search"),
		Embed:   true,
	}
	if q.PerPage <= 0 {
		q.PerPage = r.config.Editor.PerPage
	}
	if c := cmd.Int("category"); c > 0 {
		q.Categories = []int{c}
	}
	if cmd.Bool("mine") {
		s, err := r.requireLogin()
		if err != nil {
			return err
		}
		q.Author = s.User.ID
		q.Status = "any"
	}

	page, err := r.wp.Posts(ctx, q)
	if err != nil {
		return err
	}
	r.logger.Debug("fetched posts", "count", len(page.Posts), "total", page.Total)

	format := cmd.String("format")
	if output := cmd.String("output"); output != "" || cmd.Bool("save") {
		path, err := formatter.WritePostsExport(page.Posts, format, output)
		if err != nil {
			return err
		}
		r.logger.Info("export saved", "path", path, "posts", len(page.Posts))
		return r.writePlain("✓ Saved %d posts to %s\n", len(page.Posts), path)
	}

	data, err := formatter.ExportPosts(page.Posts, format)
	if err != nil {
		return err
	}
	if err := r.writeBytes(data); err != nil {
		return err
	}

	if format == formatter.FormatText || format == "" {
		r.writePlain("\nPage %d of %d (%d posts)\n", q.Page, max(page.TotalPages, 1), page.Total)
	}
	return nil
}

// PostsShow prints a post by id or slug with a few related posts.
func (r *Runner) PostsShow(ctx context.Context, cmd *cli.Command) error {
	post, err := r.loadPost(ctx, cmd.StringArg("post"), false)
	if err != nil {
		return err
	}

	if cmd.Bool("gallery") {
		items := gallery.NewExtractor(gallery.WithBaseURL(r.config.Site.URL)).Extract(post.EditableContent())
		data, err := formatter.ExportGallery(items, cmd.String("format"))
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	}

	if cmd.String("format") == formatter.FormatJSON {
		return r.writeJSON(post, true)
	}

	related, err := r.wp.RelatedPosts(ctx, post, relatedPostCount)
	if err != nil {
		r.logger.Warn("failed to fetch related posts", "error", err)
	}

	data, err := formatter.ExportPostToText(post, related)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// PostsCreate uploads the given images and creates a post through the editor.
func (r *Runner) PostsCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireLogin(); err != nil {
		return err
	}

	r.editor.EnterCreateMode()
	defer r.editor.Reset()

	if err := r.applyPostFlags(cmd, true); err != nil {
		return err
	}

	if files := cmd.StringSlice("gallery"); len(files) > 0 {
		if err := r.uploadAndInsertGallery(ctx, files); err != nil {
			return err
		}
	}

	post, err := r.savePost(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created post #%d (%s)\n%s\n", post.ID, post.Status, post.Link)
}

// PostsUpdate loads a post into the editor, applies the set flags and saves it.
//
// Uploaded gallery images are appended to the gallery extracted from the post. With
// --insert-gallery the whole gallery is inserted at the end of the content.
func (r *Runner) PostsUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireLogin(); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	post, err := r.wp.Post(ctx, id, true)
	if err != nil {
		return err
	}

	r.editor.EnterEditMode(post)
	defer r.editor.Reset()

	if err := r.applyPostFlags(cmd, false); err != nil {
		return err
	}

	if files := cmd.StringSlice("gallery"); len(files) > 0 {
		if err := r.uploadGallery(ctx, files); err != nil {
			return err
		}
	}

	if cmd.Bool("insert-gallery") {
		if err := r.insertGalleryAtEnd(); err != nil {
			return err
		}
	}

	saved, err := r.savePost(ctx)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated post #%d (%s)\n%s\n", saved.ID, saved.Status, saved.Link)
}

// PostsDelete trashes a post, or deletes it with --force.
func (r *Runner) PostsDelete(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireLogin(); err != nil {
		return err
	}

	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	force := cmd.Bool("force")
	if err := r.wp.DeletePost(ctx, id, force); err != nil {
		return err
	}

	r.logger.Info("post deleted", "id", id, "force", force)
	if force {
		return r.writePlain("✓ Deleted post #%d\n", id)
	}
	return r.writePlain("✓ Moved post #%d to trash\n", id)
}

// applyPostFlags copies the payload flags into the editor draft.
//
// When creating every flag applies; when updating only flags set on the command line do.
func (r *Runner) applyPostFlags(cmd *cli.Command, create bool) error {
	set := func(name string) bool { return create || cmd.IsSet(name) }

	if set("title") {
		r.editor.SetTitle(cmd.String("title"))
	}
	if set("excerpt") {
		r.editor.SetExcerpt(cmd.String("excerpt"))
	}
	if cmd.IsSet("status") {
		r.editor.SetStatus(cmd.String("status"))
	}
	if f := cmd.String("featured"); f != "" {
		r.editor.SelectFeaturedFile(f)
	}

	if cmd.IsSet("content") || cmd.IsSet("content-file") {
		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		r.editor.SetContent(content)
	}
	return nil
}

// readContent returns --content or the contents of --content-file, converted from
// Markdown when --markdown is set.
func readContent(cmd *cli.Command) (string, error) {
	content := cmd.String("content")
	if path := cmd.String("content-file"); path != "" {
		if content != "" {
			return "", fmt.Errorf("%w: cannot specify both --content and --content-file", shared.ErrInvalidArgument)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read content file: %w", err)
		}
		content = string(data)
	}

	if !cmd.Bool("markdown") {
		return content, nil
	}
	html, err := formatter.MarkdownToHTML([]byte(content))
	if err != nil {
		return "", err
	}
	return string(html), nil
}

// uploadAndInsertGallery uploads files and inserts the resulting gallery at the end of the content.
func (r *Runner) uploadAndInsertGallery(ctx context.Context, files []string) error {
	if err := r.uploadGallery(ctx, files); err != nil {
		return err
	}
	return r.insertGalleryAtEnd()
}

func (r *Runner) uploadGallery(ctx context.Context, files []string) error {
	batch := parseBatchFiles(files)

	var result *tasks.BatchResult
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		result, err = r.editor.UploadBatch(ctx, progress, batch)
		return err
	})
	if err != nil {
		return err
	}

	for _, f := range result.Failed {
		r.logger.Error("upload failed", "path", f.Path, "error", f.Err)
	}
	if len(result.Uploaded) == 0 {
		return fmt.Errorf("%w: all %d uploads failed", shared.ErrAPIRequest, result.Total)
	}
	r.writePlain("✓ Uploaded %d of %d images\n", len(result.Uploaded), result.Total)
	return nil
}

func (r *Runner) insertGalleryAtEnd() error {
	end := len([]rune(r.editor.Draft().Content))
	r.editor.SetCaret(end, end)
	if _, _, err := r.editor.InsertGallery(); err != nil {
		return err
	}
	return nil
}

func (r *Runner) savePost(ctx context.Context) (*models.Post, error) {
	var post *models.Post
	err := r.runWithProgress(func(progress chan<- tasks.ProgressUpdate) error {
		var err error
		post, err = r.editor.Save(ctx, progress)
		return err
	})
	return post, err
}

// runWithProgress runs fn with a progress channel whose updates are printed as they arrive.
func (r *Runner) runWithProgress(fn func(chan<- tasks.ProgressUpdate) error) error {
	progress := make(chan tasks.ProgressUpdate, 16)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Debug("progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("→ %s\n", update.Message)
		}
	}()

	err := fn(progress)
	close(progress)
	wg.Wait()
	return err
}

// loadPost fetches a post by numeric id or by slug.
func (r *Runner) loadPost(ctx context.Context, ref string, edit bool) (*models.Post, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: post id or slug", shared.ErrMissingArgument)
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return r.wp.Post(ctx, id, edit)
	}
	return r.wp.PostBySlug(ctx, ref)
}

func parseID(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("%w: post id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not a post id", shared.ErrInvalidArgument, arg)
	}
	return id, nil
}

// parseBatchFiles splits path=caption arguments.
func parseBatchFiles(args []string) []tasks.BatchFile {
	files := make([]tasks.BatchFile, 0, len(args))
	for _, arg := range args {
		path, caption, _ := strings.Cut(arg, "=")
		files = append(files, tasks.BatchFile{Path: strings.TrimSpace(path), Caption: strings.TrimSpace(caption)})
	}
	return files
}
