package main

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/mixtape/internal/auth"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser consent flow and stores the resulting token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	p, err := r.provider()
	if err != nil {
		return err
	}

	r.logger.Info("starting authorization", "redirect", p.Config().RedirectURL)
	token, err := p.Authorize(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%s Authorization successful\n", r.palette.OK("✓"))
	if !token.Expiry.IsZero() {
		r.writePlain("Access token expires: %s\n", token.Expiry.Local().Format(time.RFC1123))
	}
	if token.RefreshToken == "" {
		r.writePlain("%s\n", r.palette.Warn("No refresh token was issued; you will need to log in again when it expires"))
	}
	return nil
}

// AuthStatus reports whether a token is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore()
	if err != nil {
		return err
	}

	token, err := store.Load(ctx)
	switch {
	case errors.Is(err, shared.ErrNoToken):
		r.writePlain("%s Not authenticated\n", r.palette.Err("✗"))
		return r.writePlain("%s\n", r.palette.Help("Run 'mixtape auth login' to authorize"))
	case err != nil:
		return err
	}

	r.writePlain("%s Token stored (%s)\n", r.palette.OK("✓"), r.config.Auth.Store)
	if fs, ok := store.(*auth.FileStore); ok {
		r.writePlain("Path: %s\n", fs.Path())
	}
	if repo, ok := store.(*repositories.CredentialRepository); ok {
		if updated, err := repo.UpdatedAt(ctx); err == nil {
			r.writePlain("Saved: %s\n", updated.Local().Format(time.RFC1123))
		}
	}

	switch {
	case token.Expiry.IsZero():
		r.writePlain("Expires: never\n")
	case token.Expiry.Before(time.Now()):
		r.writePlain("Expires: %s\n", r.palette.Warn("expired "+token.Expiry.Local().Format(time.RFC1123)))
	default:
		r.writePlain("Expires: %s\n", token.Expiry.Local().Format(time.RFC1123))
	}

	if token.RefreshToken != "" {
		r.writePlain("Refresh token: present\n")
	} else {
		r.writePlain("Refresh token: %s\n", r.palette.Warn("missing"))
	}
	return nil
}

// AuthLogout removes the stored token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.tokenStore()
	if err != nil {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		return err
	}
	r.logger.Info("token removed", "store", r.config.Auth.Store)
	return r.writePlain("%s Logged out\n", r.palette.OK("✓"))
}
