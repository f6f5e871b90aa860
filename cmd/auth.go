package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/spotkit/internal/auth"
	"github.com/desertthunder/spotkit/internal/server"
	"github.com/desertthunder/spotkit/internal/shared"
	"github.com/desertthunder/spotkit/internal/ui"
	"github.com/urfave/cli/v3"
)

// tokenJSON is the printed form of a [auth.TokenRecord].
type tokenJSON struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthLogin performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local HTTP server for the redirect, opens the browser, exchanges the code through
// [auth.NewSession] and stores the resulting token pair.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	config, creds, err := r.credentials()
	if err != nil {
		return err
	}

	code, err := r.authorize(ctx, cmd, config, creds)
	if err != nil {
		return err
	}

	session, err := auth.NewSession(ctx, code, creds.RedirectURI, creds, r.sessionOptions(config)...)
	if err != nil {
		return err
	}
	defer session.Shutdown()

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	rec := session.Current()
	if err := repo.Save(creds.ClientID, rec); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved to %s (expires %s)\n\n", config.Database.Path, rec.ExpirationTime().Local().Format(time.Kitchen))
	r.writePlain("You can now use: spotkit playlists\n")
	return nil
}

// authorize runs the browser half of the flow and returns the authorization code.
func (r *Runner) authorize(ctx context.Context, cmd *cli.Command, config *shared.Config, creds auth.Credentials) (string, error) {
	redirect, err := url.Parse(creds.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	state := shared.GenerateID()
	handler := server.NewCallbackHandler(redirect.Path, state)

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(handler)

	srv, err := server.Start(config.Server.Addr(), router, r.logger)
	if err != nil {
		return "", err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := creds.AuthCodeURL(state)
	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	timeout := cmd.Duration("timeout")
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case res := <-handler.Result():
		if res.Err != nil {
			return "", res.Err
		}
		return res.Code, nil
	case err := <-srv.Errors():
		return "", fmt.Errorf("callback server stopped: %w", err)
	case <-waitCtx.Done():
		return "", fmt.Errorf("%w: no redirect within %s", shared.ErrAuthFailed, timeout)
	}
}

// AuthLogout removes the stored token for the configured client.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	config, creds, err := r.credentials()
	if err != nil {
		return err
	}
	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.Delete(creds.ClientID); err != nil {
		if errors.Is(err, shared.ErrTokenNotFound) {
			return r.writePlain("No stored token for %s\n", creds.ClientID)
		}
		return err
	}
	return r.writePlain("✓ Stored token removed\n")
}

// Token resumes the stored session and prints the access token, renewing it first when expired.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if !cmd.Bool("json") {
		return r.writePlain("%s\n", conn.session.Token())
	}

	rec := conn.session.Current()
	return r.writeJSON(tokenJSON{
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		TokenType:    rec.TokenType,
		Scope:        rec.Scope,
		ExpiresAt:    rec.ExpirationTime(),
	}, true)
}

// Status renders the stored token, optionally the live scheduler state, and recent refresh events.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	view := ui.StatusView{}

	if cmd.Bool("live") {
		conn, err := r.connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()
		st := conn.session.Status()
		view.Status = &st
		view.Record = conn.session.Current()
	}

	config, creds, err := r.credentials()
	if err != nil {
		return err
	}
	view.ClientID = creds.ClientID

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return err
	}
	defer closeDB()

	if view.Record.Empty() {
		rec, err := repo.Load(creds.ClientID)
		if err != nil && !errors.Is(err, shared.ErrTokenNotFound) {
			return err
		}
		view.Record = rec
	}

	if view.Events, err = repo.RecentEvents(creds.ClientID, cmd.Int("events")); err != nil {
		return err
	}

	return r.writePlain("%s", ui.RenderStatus(view))
}
