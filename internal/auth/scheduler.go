package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotkit/internal/shared"
)

const (
	DefaultSafetyMargin = 60 * time.Second
	DefaultRetryDelay   = 10 * time.Second
)

// State is the phase of a [RefreshScheduler].
type State int

const (
	StateIdle State = iota
	StateWaiting
	StateRefreshing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWaiting:
		return "waiting"
	case StateRefreshing:
		return "refreshing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the scheduler and the token it maintains.
//
// Stale is set while an expired access token is still the current one, which happens when renewals keep failing.
type Status struct {
	State       State
	ExpiresAt   time.Time
	Stale       bool
	LastRefresh time.Time
	LastError   error
	Failures    int
	NextAttempt time.Time
}

// SchedulerConfig tunes a [RefreshScheduler].
type SchedulerConfig struct {
	SafetyMargin time.Duration // renew this long before expiry, negative means 0
	RetryDelay   time.Duration // wait after a failed attempt, [DefaultRetryDelay] when not positive
	OnReplace    func(Hook, TokenRecord)
	OnError      func(Hook, error)
	Logger       *log.Logger
}

// Hook is handed to OnReplace and OnError. Both run on the scheduler goroutine, so a hook that
// wants to end renewal calls [Hook.Stop]; [RefreshScheduler.Stop] there would wait on itself.
type Hook struct {
	s *RefreshScheduler
}

// Stop ends renewal without waiting for the scheduler goroutine. The goroutine exits as soon
// as the hook returns, with no further refresh or Replace.
func (h Hook) Stop() { h.s.stop(false) }

type rearmRequest struct {
	wait time.Duration
	gen  uint64
}

// RefreshScheduler renews the token held by a [CredentialStore] shortly before it expires.
//
// A single goroutine owns the timer. Every arm bumps a generation counter; an attempt whose
// generation is no longer current is cancelled and can never publish its result.
// Lock order is scheduler then store.
type RefreshScheduler struct {
	store     *CredentialStore
	refresher Refresher
	margin    time.Duration
	retry     time.Duration
	onReplace func(Hook, TokenRecord)
	onError   func(Hook, error)
	logger    *log.Logger

	mu            sync.Mutex
	gen           uint64
	state         State
	started       bool
	stopped       bool
	cancelAttempt context.CancelFunc
	lastRefresh   time.Time
	lastError     error
	failures      int
	nextAttempt   time.Time

	rearm chan rearmRequest
	quit  chan struct{}
	done  chan struct{}
}

// NewRefreshScheduler creates an idle scheduler. Nothing runs until [RefreshScheduler.Start].
func NewRefreshScheduler(store *CredentialStore, refresher Refresher, cfg SchedulerConfig) *RefreshScheduler {
	if cfg.SafetyMargin < 0 {
		cfg.SafetyMargin = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &RefreshScheduler{
		store:     store,
		refresher: refresher,
		margin:    cfg.SafetyMargin,
		retry:     cfg.RetryDelay,
		onReplace: cfg.OnReplace,
		onError:   cfg.OnError,
		logger:    shared.WithLogger(cfg.Logger, "component", "scheduler"),
		rearm:     make(chan rearmRequest, 1),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start publishes initial and arms the first renewal at its expiry minus the safety margin.
// Calls after the first, or after Stop, do nothing.
func (s *RefreshScheduler) Start(initial TokenRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	s.store.Replace(initial)
	s.gen++
	s.armLocked(s.waitFor(initial))
	go s.loop()
}

// Restart cancels any pending or in-flight renewal and arms a new one after wait.
func (s *RefreshScheduler) Restart(wait time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.stopped {
		return
	}
	s.gen++
	if s.cancelAttempt != nil {
		s.cancelAttempt()
		s.cancelAttempt = nil
	}
	s.armLocked(wait)
}

// Stop cancels pending and in-flight work and waits for the scheduler goroutine to exit,
// including any hook it is running. No Replace happens once Stop returns. Stop is idempotent.
//
// Hooks must use [Hook.Stop] instead.
func (s *RefreshScheduler) Stop() { s.stop(true) }

func (s *RefreshScheduler) stop(join bool) {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		s.state = StateStopped
		s.gen++
		if s.cancelAttempt != nil {
			s.cancelAttempt()
			s.cancelAttempt = nil
		}
		close(s.quit)
	}
	started := s.started
	s.mu.Unlock()

	if started && join {
		<-s.done
	}
	s.logger.Debug("scheduler stopped")
}

// Status returns a snapshot of the scheduler state.
func (s *RefreshScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.store.Current()
	return Status{
		State:       s.state,
		ExpiresAt:   rec.ExpirationTime(),
		Stale:       !rec.Empty() && rec.Expired(time.Now()),
		LastRefresh: s.lastRefresh,
		LastError:   s.lastError,
		Failures:    s.failures,
		NextAttempt: s.nextAttempt,
	}
}

// waitFor is the delay until rec should be renewed.
func (s *RefreshScheduler) waitFor(rec TokenRecord) time.Duration {
	return max(time.Until(rec.ExpirationTime())-s.margin, 0)
}

// armLocked hands a new deadline for the current generation to the loop. s.mu must be held.
func (s *RefreshScheduler) armLocked(wait time.Duration) {
	wait = max(wait, 0)
	s.state = StateWaiting
	s.nextAttempt = time.Now().Add(wait)

	// only the newest request matters
	select {
	case <-s.rearm:
	default:
	}
	s.rearm <- rearmRequest{wait: wait, gen: s.gen}
}

func (s *RefreshScheduler) loop() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	var armed uint64

	for {
		select {
		case <-s.quit:
			stopTimer(timer)
			return
		case req := <-s.rearm:
			armed = req.gen
			resetTimer(timer, req.wait)
		case <-timer.C:
			if wait, ok := s.attempt(armed); ok {
				resetTimer(timer, wait)
			}
		}
	}
}

// attempt runs one renewal for generation gen. It reports the next delay, or false when gen was superseded.
func (s *RefreshScheduler) attempt(gen uint64) (time.Duration, bool) {
	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return 0, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelAttempt = cancel
	s.state = StateRefreshing
	refreshToken := s.store.Current().RefreshToken
	s.mu.Unlock()

	rec, err := s.refresher.Refresh(ctx, refreshToken)
	cancel()

	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("refresh superseded", "gen", gen)
		return 0, false
	}
	s.cancelAttempt = nil

	var wait time.Duration
	if err != nil {
		var re *RefreshError
		if !errors.As(err, &re) {
			err = &RefreshError{Err: err}
		}
		s.failures++
		s.lastError = err
		wait = s.retry
		s.logger.Warn("token refresh failed", "err", err, "failures", s.failures, "retry_in", wait)
	} else {
		if rec.RefreshToken == "" {
			rec.RefreshToken = refreshToken
		}
		s.store.Replace(rec)
		s.lastRefresh = time.Now()
		s.lastError = nil
		s.failures = 0
		wait = s.waitFor(rec)
		s.logger.Info("token refreshed", "expires_in", rec.ExpiresIn, "next_in", wait.Round(time.Second))
	}
	s.state = StateWaiting
	s.nextAttempt = time.Now().Add(wait)
	s.mu.Unlock()

	hook := Hook{s: s}
	if err != nil {
		if s.onError != nil {
			s.onError(hook, err)
		}
	} else if s.onReplace != nil {
		s.onReplace(hook, rec)
	}

	s.mu.Lock()
	current := !s.stopped && gen == s.gen
	s.mu.Unlock()
	return wait, current
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	stopTimer(t)
	t.Reset(d)
}
