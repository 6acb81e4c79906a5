package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/wpx/internal/services"
	"github.com/desertthunder/wpx/internal/session"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin exchanges username and password for a JWT and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.String("username"))
	password := cmd.String("password")

	if username == "" {
		username = r.session.SavedUsername()
	}
	if username == "" || password == "" {
		return fmt.Errorf("%w: --username and --password are required", shared.ErrMissingCredentials)
	}

	r.logger.Info("requesting token", "user", username, "site", r.wp.BaseURL())

	resp, err := r.wp.RequestToken(ctx, username, password)
	if err != nil {
		return err
	}

	if err := r.session.Login(resp.Token, resp.SessionUser()); err != nil {
		return err
	}

	if cmd.Bool("remember") {
		if err := r.session.RememberUsername(username); err != nil {
			r.logger.Warn("failed to remember username", "error", err)
		}
	}

	s, _ := r.session.Current()
	r.logger.Info("authentication successful", "user_id", s.User.ID)
	return r.writePlain("✓ Signed in as %s\n", s.User.Name())
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if _, ok := r.session.Current(); !ok {
		return r.writePlain("Not signed in\n")
	}
	if err := r.session.Logout(); err != nil {
		return err
	}
	r.logger.Info("signed out")
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the session state, user and token expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s, ok := r.session.Current()

	r.writePlainHeader("Session")
	r.writePlain("Site: %s\n", r.wp.BaseURL())
	r.writePlain("State: %s\n", r.session.State())
	if !ok {
		if saved := r.session.SavedUsername(); saved != "" {
			r.writePlain("Remembered user: %s\n", saved)
		}
		return nil
	}

	r.writePlain("User: %s (#%d)\n", s.User.Name(), s.User.ID)
	if s.User.Email != "" {
		r.writePlain("Email: %s\n", s.User.Email)
	}

	expiry, err := session.TokenExpiry(s.Token)
	switch {
	case err != nil:
		r.writePlain("Token: not a JWT, no expiry\n")
	case expiry.IsZero():
		r.writePlain("Token: no expiry\n")
	default:
		remaining := time.Until(expiry).Round(time.Minute)
		if remaining <= 0 {
			r.writePlain("Token: ✗ expired at %s\n", expiry.Format(time.RFC1123))
		} else {
			r.writePlain("Token: ✓ valid until %s (%s left)\n", expiry.Format(time.RFC1123), remaining)
		}
	}
	return nil
}

// AuthWhoami fetches the signed-in user from the site and refreshes the stored user record.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireLogin(); err != nil {
		return err
	}

	user, err := r.wp.Me(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			return fmt.Errorf("%w: run 'wpx auth login' again", err)
		}
		return err
	}

	if err := r.session.UpdateUser(services.UserToSession(user)); err != nil {
		r.logger.Warn("failed to refresh stored user", "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("%s (@%s, #%d)\n", user.Name, user.Slug, user.ID)
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	if user.Link != "" {
		r.writePlain("Profile: %s\n", user.Link)
	}
	return nil
}
