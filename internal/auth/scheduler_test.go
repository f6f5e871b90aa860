package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// RefresherFunc adapts a function to [Refresher].
type RefresherFunc func(ctx context.Context, refreshToken string) (TokenRecord, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (TokenRecord, error) {
	return f(ctx, refreshToken)
}

// recorder collects hook invocations.
type recorder struct {
	mu       sync.Mutex
	replaced []TokenRecord
	errs     []error
	calls    chan time.Time
}

func newRecorder() *recorder {
	return &recorder{calls: make(chan time.Time, 64)}
}

func (r *recorder) onReplace(_ Hook, rec TokenRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaced = append(r.replaced, rec)
}

func (r *recorder) onError(_ Hook, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) replacedTokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.replaced))
	for i, rec := range r.replaced {
		out[i] = rec.AccessToken
	}
	return out
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func expiringIn(access, refresh string, d time.Duration) TokenRecord {
	return TokenRecord{AccessToken: access, RefreshToken: refresh, GrantTime: time.Now(), ExpiresIn: d}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestRefreshScheduler(t *testing.T) {
	t.Run("Refreshes Before Expiry", func(t *testing.T) {
		rec := newRecorder()
		var n atomic.Int32
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			i := n.Add(1)
			return expiringIn(fmt.Sprintf("access-%d", i), "", 2*time.Hour), nil
		})

		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{
			SafetyMargin: time.Hour - 50*time.Millisecond,
			OnReplace:    rec.onReplace,
		})
		s.Start(expiringIn("access-0", "refresh-0", time.Hour))
		defer s.Stop()

		if got := store.AccessToken(); got != "access-0" {
			t.Fatalf("expected initial token to be published, got %s", got)
		}

		waitFor(t, 2*time.Second, func() bool { return store.AccessToken() == "access-1" })

		if got := store.Current().RefreshToken; got != "refresh-0" {
			t.Errorf("expected refresh token to carry over without rotation, got %s", got)
		}
		status := s.Status()
		if status.State != StateWaiting || status.LastRefresh.IsZero() || status.Failures != 0 {
			t.Errorf("unexpected status %+v", status)
		}
	})

	t.Run("Rotated Refresh Token Is Used Next", func(t *testing.T) {
		seen := make(chan string, 4)
		var n atomic.Int32
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			select {
			case seen <- rt:
			default:
			}
			i := n.Add(1)
			return expiringIn(fmt.Sprintf("access-%d", i), fmt.Sprintf("refresh-%d", i), 10*time.Millisecond), nil
		})

		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{SafetyMargin: 0})
		s.Start(expiringIn("access-0", "refresh-0", 0))
		defer s.Stop()

		for _, want := range []string{"refresh-0", "refresh-1", "refresh-2"} {
			select {
			case got := <-seen:
				if got != want {
					t.Fatalf("expected refresh with %s, got %s", want, got)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for refresh with %s", want)
			}
		}
	})

	t.Run("Retries After Short Delay", func(t *testing.T) {
		rec := newRecorder()
		var n atomic.Int32
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			rec.calls <- time.Now()
			if n.Add(1) == 1 {
				return TokenRecord{}, errors.New("connection reset")
			}
			return expiringIn("access-1", "", time.Hour), nil
		})

		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{
			SafetyMargin: time.Minute,
			RetryDelay:   100 * time.Millisecond,
			OnError:      rec.onError,
		})
		// expires inside the margin, so the first attempt is immediate
		s.Start(expiringIn("access-0", "refresh-0", 30*time.Second))
		defer s.Stop()

		var first, second time.Time
		select {
		case first = <-rec.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("first attempt never happened")
		}

		waitFor(t, time.Second, func() bool { return s.Status().Failures == 1 })
		status := s.Status()
		var re *RefreshError
		if !errors.As(status.LastError, &re) {
			t.Errorf("expected last error to be a *RefreshError, got %v", status.LastError)
		}
		if store.AccessToken() != "access-0" {
			t.Error("a failed refresh must not replace the token")
		}
		waitFor(t, time.Second, func() bool { return rec.errorCount() == 1 })

		select {
		case second = <-rec.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("retry never happened")
		}
		if gap := second.Sub(first); gap < 100*time.Millisecond || gap > time.Second {
			t.Errorf("expected retry after ~100ms, got %v", gap)
		}

		waitFor(t, time.Second, func() bool { return store.AccessToken() == "access-1" })
		if s.Status().Failures != 0 || s.Status().LastError != nil {
			t.Errorf("expected failure bookkeeping to reset, got %+v", s.Status())
		}
	})

	t.Run("Stale Token Is Visible", func(t *testing.T) {
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			return TokenRecord{}, errors.New("down")
		})
		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{RetryDelay: time.Hour})
		s.Start(TokenRecord{AccessToken: "old", RefreshToken: "r", GrantTime: time.Now().Add(-2 * time.Hour), ExpiresIn: time.Hour})
		defer s.Stop()

		waitFor(t, time.Second, func() bool { return s.Status().Failures == 1 })
		status := s.Status()
		if !status.Stale {
			t.Error("expected stale flag for an expired token")
		}
		if time.Until(status.NextAttempt) < 30*time.Minute {
			t.Errorf("expected next attempt after the retry delay, got %v", status.NextAttempt)
		}
	})

	t.Run("Restart Supersedes Pending", func(t *testing.T) {
		var n atomic.Int32
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			i := n.Add(1)
			return expiringIn(fmt.Sprintf("access-%d", i), "", time.Hour), nil
		})

		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{})
		s.Start(expiringIn("access-0", "refresh-0", time.Hour))
		defer s.Stop()

		s.Restart(30 * time.Millisecond)
		s.Restart(time.Hour)
		s.Restart(20 * time.Millisecond)

		waitFor(t, 2*time.Second, func() bool { return n.Load() >= 1 })
		time.Sleep(150 * time.Millisecond)
		if got := n.Load(); got != 1 {
			t.Errorf("expected exactly one refresh, got %d", got)
		}
	})

	t.Run("Restart Cancels In Flight", func(t *testing.T) {
		rec := newRecorder()
		started := make(chan struct{})
		var n atomic.Int32
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			if n.Add(1) == 1 {
				close(started)
				<-ctx.Done()
				// a slow endpoint that answers anyway must not win
				return expiringIn("stale", "", time.Hour), nil
			}
			return expiringIn("fresh", "", time.Hour), nil
		})

		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{OnReplace: rec.onReplace})
		s.Start(expiringIn("access-0", "refresh-0", 0))
		defer s.Stop()

		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("first attempt never started")
		}
		s.Restart(0)

		waitFor(t, 2*time.Second, func() bool { return store.AccessToken() == "fresh" })
		time.Sleep(50 * time.Millisecond)

		if got := store.AccessToken(); got != "fresh" {
			t.Errorf("expected fresh token to persist, got %s", got)
		}
		for _, tok := range rec.replacedTokens() {
			if tok == "stale" {
				t.Error("superseded attempt published its result")
			}
		}
	})

	t.Run("Stop Joins In Flight Attempt", func(t *testing.T) {
		started := make(chan struct{})
		finished := make(chan struct{})
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			close(started)
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return expiringIn("late", "", time.Hour), nil
		})

		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{})
		s.Start(expiringIn("access-0", "refresh-0", 0))
		<-started

		s.Stop()
		select {
		case <-finished:
		default:
			t.Error("Stop returned before the in-flight attempt finished")
		}
		if store.AccessToken() != "access-0" {
			t.Errorf("expected no replace after stop, got %s", store.AccessToken())
		}
		if s.Status().State != StateStopped {
			t.Errorf("expected stopped state, got %s", s.Status().State)
		}

		s.Stop()
		s.Restart(0)
		s.Start(expiringIn("again", "r", 0))
		if store.AccessToken() != "access-0" {
			t.Error("expected stopped scheduler to ignore restart and start")
		}
	})

	t.Run("Stop Before Start", func(t *testing.T) {
		s := NewRefreshScheduler(NewCredentialStore(TokenRecord{}), RefresherFunc(nil), SchedulerConfig{})
		done := make(chan struct{})
		go func() {
			s.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Stop blocked on a scheduler that never started")
		}
	})

	t.Run("Stop From Hook", func(t *testing.T) {
		var s *RefreshScheduler
		hookDone := make(chan struct{})
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			return expiringIn("access-1", "", 0), nil
		})
		store := NewCredentialStore(TokenRecord{})
		s = NewRefreshScheduler(store, refresher, SchedulerConfig{
			OnReplace: func(h Hook, _ TokenRecord) {
				h.Stop()
				close(hookDone)
			},
		})
		s.Start(expiringIn("access-0", "refresh-0", 0))

		select {
		case <-hookDone:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop deadlocked inside hook")
		}

		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler goroutine did not exit after hook")
		}
		s.Stop()
	})

	t.Run("Stop Waits For Running Hook", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		var hookFinished atomic.Bool
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			return expiringIn("access-1", "", time.Hour), nil
		})
		store := NewCredentialStore(TokenRecord{})
		s := NewRefreshScheduler(store, refresher, SchedulerConfig{
			OnReplace: func(Hook, TokenRecord) {
				close(entered)
				<-release
				time.Sleep(20 * time.Millisecond)
				hookFinished.Store(true)
			},
		})
		s.Start(expiringIn("access-0", "refresh-0", 0))

		select {
		case <-entered:
		case <-time.After(2 * time.Second):
			t.Fatal("hook never ran")
		}

		stopped := make(chan struct{})
		go func() {
			s.Stop()
			close(stopped)
		}()

		select {
		case <-stopped:
			t.Fatal("Stop returned while the hook was still running")
		case <-time.After(50 * time.Millisecond):
		}

		close(release)
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop never returned after the hook finished")
		}
		if !hookFinished.Load() {
			t.Error("Stop returned before the hook finished")
		}
		select {
		case <-s.done:
		default:
			t.Error("scheduler goroutine still running after Stop returned")
		}
	})

	t.Run("Error Hook Can Stop", func(t *testing.T) {
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			return TokenRecord{}, errors.New("invalid_grant")
		})
		var n atomic.Int32
		s := NewRefreshScheduler(NewCredentialStore(TokenRecord{}), refresher, SchedulerConfig{
			RetryDelay: time.Millisecond,
			OnError: func(h Hook, err error) {
				n.Add(1)
				h.Stop()
			},
		})
		s.Start(expiringIn("access-0", "refresh-0", 0))

		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler goroutine did not exit after the error hook stopped it")
		}
		if got := n.Load(); got != 1 {
			t.Errorf("expected a single attempt after stopping, got %d", got)
		}
		if s.Status().State != StateStopped {
			t.Errorf("expected stopped state, got %s", s.Status().State)
		}
		s.Stop()
	})

	t.Run("Negative Margin Clamps To Zero", func(t *testing.T) {
		s := NewRefreshScheduler(NewCredentialStore(TokenRecord{}), RefresherFunc(nil), SchedulerConfig{SafetyMargin: -time.Minute})
		if s.margin != 0 {
			t.Errorf("expected margin 0, got %v", s.margin)
		}
		if s.retry != DefaultRetryDelay {
			t.Errorf("expected default retry delay, got %v", s.retry)
		}
		if wait := s.waitFor(expiringIn("a", "r", -time.Hour)); wait != 0 {
			t.Errorf("expected expired record to wait 0, got %v", wait)
		}
	})
}
