package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/services"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentPosts = 5

// Categories lists the site's categories.
func (r *Runner) Categories(ctx context.Context, cmd *cli.Command) error {
	categories, err := r.wp.Categories(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}

	if len(categories) == 0 {
		return r.writePlain("No categories found\n")
	}

	r.writePlainHeader(fmt.Sprintf("Categories (%d)", len(categories)))
	for _, c := range categories {
		r.writePlain("#%-5d %-30s %4d posts  (%s)\n", c.ID, c.Name, c.Count, c.Slug)
	}
	return nil
}

// Search runs a site-wide search.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	term := strings.TrimSpace(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}

	results, err := r.wp.Search(ctx, term)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	if len(results) == 0 {
		return r.writePlain("No results for %q\n", term)
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q (%d)", term, len(results)))
	for i, res := range results {
		r.writePlain("%d. %s [%s]\n", i+1, res.Title, res.Subtype)
		r.writePlain("   %s\n", res.URL)
	}
	return nil
}

// Dashboard prints the signed-in user, their most recent posts and site totals.
//
// The three requests run concurrently; a failed count is shown as unknown.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	s, err := r.requireLogin()
	if err != nil {
		return err
	}

	var (
		user        *models.User
		recent      *models.PostPage
		posts, cats int
		countsErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = r.wp.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = r.wp.Posts(gctx, models.PostQuery{
			Author:  s.User.ID,
			PerPage: dashboardRecentPosts,
			Status:  "any",
		})
		return err
	})
	g.Go(func() error {
		posts, cats, countsErr = r.wp.Counts(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := r.session.UpdateUser(services.UserToSession(user)); err != nil {
		r.logger.Warn("failed to refresh stored user", "error", err)
	}

	r.writePlainHeader("Dashboard")
	r.writePlain("Signed in as %s (@%s)\n", user.Name, user.Slug)
	r.writePlain("Site: %s\n", r.wp.BaseURL())
	if countsErr != nil {
		r.logger.Warn("failed to fetch counts", "error", countsErr)
		r.writePlain("Published posts: ?  Categories: ?\n")
	} else {
		r.writePlain("Published posts: %d  Categories: %d\n", posts, cats)
	}

	r.writePlainln("Your recent posts (%d total)", recent.Total)
	if len(recent.Posts) == 0 {
		return r.writePlain("None yet. Create one with 'wpx posts create'\n")
	}
	for _, p := range recent.Posts {
		r.writePlain("#%-6d %-9s %s\n", p.ID, p.Status, shared.Truncate(p.EditableTitle(), 60))
	}
	return nil
}

// ProfileShow prints the user stored with the session.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	s, err := r.requireLogin()
	if err != nil {
		return err
	}

	r.writePlainHeader("Profile")
	r.writePlain("Name: %s\n", s.User.Name())
	r.writePlain("Username: %s\n", s.User.Username)
	r.writePlain("ID: %d\n", s.User.ID)
	if s.User.Email != "" {
		r.writePlain("Email: %s\n", s.User.Email)
	}
	if s.User.Description != "" {
		r.writePlain("About: %s\n", s.User.Description)
	}
	if avatar := s.User.Avatar(); avatar != "" {
		r.writePlain("Avatar: %s\n", avatar)
	}
	return nil
}

// ProfileUpdate saves the given profile fields and refreshes the stored user.
//
// Fields not set on the command line keep their stored value.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	s, err := r.requireLogin()
	if err != nil {
		return err
	}

	update := models.UserUpdate{
		Name:        s.User.DisplayName,
		Email:       s.User.Email,
		Description: s.User.Description,
	}
	changed := false
	if cmd.IsSet("name") {
		update.Name, changed = strings.TrimSpace(cmd.String("name")), true
	}
	if cmd.IsSet("email") {
		update.Email, changed = strings.TrimSpace(cmd.String("email")), true
	}
	if cmd.IsSet("description") {
		update.Description, changed = cmd.String("description"), true
	}
	if !changed {
		return fmt.Errorf("%w: set at least one of --name, --email or --description", shared.ErrMissingArgument)
	}
	if update.Name == "" {
		return fmt.Errorf("%w: name cannot be empty", shared.ErrValidation)
	}

	user, err := r.wp.UpdateUser(ctx, s.User.ID, update)
	if err != nil {
		return err
	}

	updated := services.UserToSession(user)
	if updated.Email == "" {
		updated.Email = update.Email
	}
	if updated.Username == "" {
		updated.Username = s.User.Username
	}
	if err := r.session.UpdateUser(updated); err != nil {
		return err
	}

	r.logger.Info("profile updated", "user_id", user.ID)
	return r.writePlain("✓ Profile updated for %s\n", user.Name)
}
