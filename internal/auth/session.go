package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotkit/internal/shared"
)

// Session owns a [CredentialStore] and the [RefreshScheduler] that keeps it fresh.
type Session struct {
	id        string
	store     *CredentialStore
	scheduler *RefreshScheduler
	logger    *log.Logger
	closeOnce sync.Once
}

type options struct {
	httpClient *http.Client
	logger     *log.Logger
	margin     time.Duration
	retry      time.Duration
	onRefresh  func(Hook, TokenRecord)
	onError    func(Hook, error)
	refresher  Refresher
}

// Option configures a [Session].
type Option func(*options)

// WithHTTPClient sets the client used for token endpoint calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSafetyMargin sets how long before expiry the token is renewed. Defaults to [DefaultSafetyMargin].
func WithSafetyMargin(d time.Duration) Option {
	return func(o *options) { o.margin = d }
}

// WithRetryDelay sets the wait after a failed renewal. Defaults to [DefaultRetryDelay].
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) { o.retry = d }
}

// WithOnRefresh registers a hook run after each successful renewal, for example to persist a rotated refresh token.
// The hook ends the session with [Hook.Stop], not [Session.Shutdown].
func WithOnRefresh(fn func(Hook, TokenRecord)) Option {
	return func(o *options) { o.onRefresh = fn }
}

// WithOnRefreshError registers a hook run after each failed renewal.
func WithOnRefreshError(fn func(Hook, error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithRefresher replaces the token endpoint used for renewals.
func WithRefresher(r Refresher) Option {
	return func(o *options) { o.refresher = r }
}

func newOptions(opts []Option) *options {
	o := &options{margin: DefaultSafetyMargin, retry: DefaultRetryDelay}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewSession exchanges an authorization code for the initial token pair and starts background renewal.
//
// The exchange happens once, synchronously. Any failure is returned as an [*AuthError] and no session is created.
func NewSession(ctx context.Context, code, redirectURI string, creds Credentials, opts ...Option) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, &AuthError{Reason: "invalid client credentials", Err: err}
	}
	o := newOptions(opts)

	client := NewTokenClient(creds, o.httpClient)
	rec, err := client.Exchange(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}
	return start(rec, client, o), nil
}

// Resume starts a session from a previously granted record, for example one loaded from the database.
// The record is renewed right away when it is already inside the safety margin.
func Resume(record TokenRecord, creds Credentials, opts ...Option) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if record.RefreshToken == "" {
		return nil, fmt.Errorf("cannot resume session: %w", shared.ErrNoRefreshToken)
	}
	o := newOptions(opts)
	return start(record, NewTokenClient(creds, o.httpClient), o), nil
}

func start(rec TokenRecord, client *TokenClient, o *options) *Session {
	var refresher Refresher = client
	if o.refresher != nil {
		refresher = o.refresher
	}

	id := shared.GenerateID()
	logger := shared.WithLogger(o.logger, "session", id[:8])
	store := NewCredentialStore(rec)
	scheduler := NewRefreshScheduler(store, refresher, SchedulerConfig{
		SafetyMargin: o.margin,
		RetryDelay:   o.retry,
		OnReplace:    o.onRefresh,
		OnError:      o.onError,
		Logger:       logger,
	})
	scheduler.Start(rec)

	logger.Info("session started", "expires_at", rec.ExpirationTime().Format(time.RFC3339))
	return &Session{id: id, store: store, scheduler: scheduler, logger: logger}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Token returns the current access token. It never blocks on a renewal in progress.
func (s *Session) Token() string { return s.store.AccessToken() }

// Current returns a copy of the current token record.
func (s *Session) Current() TokenRecord { return s.store.Current() }

// Status reports renewal health.
func (s *Session) Status() Status { return s.scheduler.Status() }

// Restart supersedes any pending renewal with one after wait. Restart(0) renews now.
func (s *Session) Restart(wait time.Duration) { s.scheduler.Restart(wait) }

// Shutdown stops background renewal and returns once the refresh goroutine, and any hook it was
// running, has finished. It is idempotent and safe from any goroutine; a refresh hook stops the
// session through its [Hook] instead. The last token stays readable.
func (s *Session) Shutdown() {
	s.scheduler.Stop()
	s.closeOnce.Do(func() {
		s.logger.Info("session shut down")
	})
}
