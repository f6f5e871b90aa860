package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotkit/internal/auth"
	"github.com/desertthunder/spotkit/internal/repositories"
	"github.com/desertthunder/spotkit/internal/services"
	"github.com/desertthunder/spotkit/internal/shared"
	"github.com/urfave/cli/v3"
)

// keptEvents is how many refresh events survive pruning per client.
const keptEvents = 50

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// A nil Config is loaded from ConfigPath when the first command runs.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "spotkit",
		Usage:   "Spotify Web API session manager and toolkit",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   r.configPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}
	return ctx, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, tokenCommand, statusCommand, decodeCommand, getCommand, playlistsCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the runner's config, reading it from configPath on first use.
//
// A missing file yields the defaults.
func (r *Runner) loadConfig() (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	if _, err := os.Stat(r.configPath); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		r.config = shared.DefaultConfig()
		return r.config, nil
	}

	config, err := shared.LoadConfig(r.configPath)
	if err != nil {
		return nil, err
	}
	r.config = config
	return config, nil
}

// credentials loads the config and returns validated client credentials.
func (r *Runner) credentials() (*shared.Config, auth.Credentials, error) {
	config, err := r.loadConfig()
	if err != nil {
		return nil, auth.Credentials{}, err
	}
	creds := auth.CredentialsFromConfig(config.Credentials.Spotify)
	if err := creds.Validate(); err != nil {
		return nil, auth.Credentials{}, fmt.Errorf("%w (set them in %s)", err, r.configPath)
	}
	return config, creds, nil
}

// openRepository opens the configured database and returns its token repository.
func (r *Runner) openRepository(config *shared.Config) (*repositories.TokenRepository, func(), error) {
	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewTokenRepository(db), func() { db.Close() }, nil
}

// connection is a resumed session together with the API client reading its token.
type connection struct {
	session *auth.Session
	spotify *services.SpotifyService
	close   func()
}

// Close stops the session before closing the database its hooks write to.
func (c *connection) Close() {
	c.session.Shutdown()
	c.close()
}

// connect resumes the stored session for the configured client.
//
// Renewed tokens are saved as they arrive. When the stored token has already expired, connect
// waits for the first renewal so that the first request carries a live token.
func (r *Runner) connect(ctx context.Context) (*connection, error) {
	config, creds, err := r.credentials()
	if err != nil {
		return nil, err
	}

	repo, closeDB, err := r.openRepository(config)
	if err != nil {
		return nil, err
	}

	rec, err := repo.Load(creds.ClientID)
	if err != nil {
		closeDB()
		if errors.Is(err, shared.ErrTokenNotFound) {
			return nil, fmt.Errorf("%w: run `spotkit auth login` first", shared.ErrNotAuthenticated)
		}
		return nil, err
	}

	renewed := make(chan struct{}, 1)
	failed := make(chan error, 1)

	opts := append(r.sessionOptions(config),
		auth.WithOnRefresh(func(_ auth.Hook, rec auth.TokenRecord) {
			r.persistRefresh(repo, creds.ClientID, rec, nil)
			select {
			case renewed <- struct{}{}:
			default:
			}
		}),
		auth.WithOnRefreshError(func(_ auth.Hook, err error) {
			r.persistRefresh(repo, creds.ClientID, auth.TokenRecord{}, err)
			select {
			case failed <- err:
			default:
			}
		}),
	)

	session, err := auth.Resume(rec, creds, opts...)
	if err != nil {
		closeDB()
		return nil, err
	}
	conn := &connection{session: session, close: closeDB}

	if rec.Expired(time.Now()) {
		r.logger.Info("stored token expired, renewing")
		select {
		case <-renewed:
		case err := <-failed:
			conn.Close()
			return nil, fmt.Errorf("failed to renew expired token: %w", err)
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		}
	}

	svcOpts := []services.Option{
		services.WithHTTPClient(r.httpClient),
		services.WithRequestRate(config.Session.RequestRate),
		services.WithLogger(r.logger),
	}
	if base := config.Credentials.Spotify.APIURL; base != "" {
		svcOpts = append(svcOpts, services.WithBaseURL(base))
	}
	conn.spotify, err = services.NewSpotifyService(session, svcOpts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (r *Runner) sessionOptions(config *shared.Config) []auth.Option {
	return []auth.Option{
		auth.WithHTTPClient(r.httpClient),
		auth.WithLogger(r.logger),
		auth.WithSafetyMargin(config.Session.SafetyMargin.Duration),
		auth.WithRetryDelay(config.Session.RetryDelay.Duration),
	}
}

// persistRefresh records a renewal attempt and, on success, stores the new record.
func (r *Runner) persistRefresh(repo *repositories.TokenRepository, clientID string, rec auth.TokenRecord, cause error) {
	if cause == nil {
		if err := repo.Save(clientID, rec); err != nil {
			r.logger.Error("failed to save renewed token", "error", err)
		}
	}
	if err := repo.RecordRefresh(clientID, cause); err != nil {
		r.logger.Warn("failed to record refresh event", "error", err)
	}
	if _, err := repo.PruneEvents(clientID, keptEvents); err != nil {
		r.logger.Warn("failed to prune refresh events", "error", err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
