package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/desertthunder/wpx/internal/formatter"
	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/server"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// PostsPreview serves a rendered post, or a local content file, until interrupted.
//
// The page is rebuilt on every request, so reloading the browser picks up edits to the file.
func (r *Runner) PostsPreview(ctx context.Context, cmd *cli.Command) error {
	var source server.PageSource

	if path := cmd.String("file"); path != "" {
		source = r.filePageSource(path)
	} else {
		ref := cmd.StringArg("post")
		if ref == "" {
			return fmt.Errorf("%w: post id or slug, or --file", shared.ErrMissingArgument)
		}
		_, loggedIn := r.session.Current()
		source = func(ctx context.Context) (*server.Page, error) {
			post, err := r.loadPost(ctx, ref, loggedIn)
			if err != nil {
				return nil, err
			}
			return server.PostPage(post, r.config.Site.URL), nil
		}
	}

	if _, err := source(ctx); err != nil {
		return err
	}

	logger := shared.WithLogger(r.logger, "component", "preview")
	router := server.NewBasicRouter()
	router.Use(server.Recover(logger), server.Logging(logger), server.NoCache)
	router.Handler(server.NewPreviewHandler(source))
	logger.Debug("preview routes", "patterns", router.Patterns())

	serverAddr := r.config.Server.Addr()
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting preview server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	previewURL := "http://" + serverAddr + "/"
	r.writePlain("→ Preview at %s\n", previewURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(previewURL); err != nil {
			logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
		}
	}
	r.writePlain("→ Press Ctrl+C to stop\n")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-serverErrors:
		serveErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", "error", err)
	}
	return serveErr
}

// filePageSource renders an HTML or Markdown file.
func (r *Runner) filePageSource(path string) server.PageSource {
	return func(ctx context.Context) (*server.Page, error) {
		data, err := shared.VerifyAndReadFile(path)
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".markdown":
			if data, err = formatter.MarkdownToHTML(data); err != nil {
				return nil, err
			}
		}

		content := string(data)
		return &server.Page{
			Title:   filepath.Base(path),
			Meta:    path,
			Content: content,
			Gallery: gallery.NewExtractor(gallery.WithBaseURL(r.config.Site.URL)).Extract(content),
		}, nil
	}
}
