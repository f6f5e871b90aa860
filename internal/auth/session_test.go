package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/spotkit/internal/shared"
	tu "github.com/desertthunder/spotkit/internal/testing"
)

func TestNewSession(t *testing.T) {
	t.Run("Exchanges Code And Serves Token", func(t *testing.T) {
		endpoint := tu.NewTokenEndpoint(t, func(r tu.TokenRequest) (int, any) {
			return 200, tu.TokenResponse("access-1", "refresh-1", 3600)
		})

		sess, err := NewSession(context.Background(), "code", "", testCredentials(endpoint.TokenURL()),
			WithHTTPClient(endpoint.Client()))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sess.Shutdown()

		if sess.Token() != "access-1" {
			t.Errorf("expected access-1, got %s", sess.Token())
		}
		if sess.Current().RefreshToken != "refresh-1" {
			t.Errorf("unexpected record %+v", sess.Current())
		}
		if sess.ID() == "" {
			t.Error("expected session id")
		}

		status := sess.Status()
		if status.State != StateWaiting {
			t.Errorf("expected waiting state, got %s", status.State)
		}
		if until := time.Until(status.NextAttempt); until < 58*time.Minute || until > time.Hour {
			t.Errorf("expected renewal about a minute before expiry, got %v", until)
		}
		if len(endpoint.Requests()) != 1 {
			t.Errorf("expected exactly one token request, got %d", len(endpoint.Requests()))
		}
	})

	t.Run("Rejected Exchange", func(t *testing.T) {
		endpoint := tu.NewTokenEndpoint(t, func(r tu.TokenRequest) (int, any) {
			return 401, map[string]string{"error": "invalid_client"}
		})

		sess, err := NewSession(context.Background(), "code", "", testCredentials(endpoint.TokenURL()),
			WithHTTPClient(endpoint.Client()))
		if sess != nil {
			t.Error("expected no session")
		}
		var ae *AuthError
		if !errors.As(err, &ae) || ae.StatusCode != 401 {
			t.Fatalf("expected *AuthError with status 401, got %v", err)
		}
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		_, err := NewSession(context.Background(), "code", "", Credentials{})
		var ae *AuthError
		if !errors.As(err, &ae) || !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected *AuthError wrapping ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Renews Through Token Endpoint", func(t *testing.T) {
		var n atomic.Int32
		endpoint := tu.NewTokenEndpoint(t, func(r tu.TokenRequest) (int, any) {
			i := n.Add(1)
			if r.GrantType == "authorization_code" {
				// 61s lifetime with a 60s margin renews after about a second
				return 200, tu.TokenResponse("access-1", "refresh-1", 61)
			}
			return 200, tu.TokenResponse(fmt.Sprintf("access-%d", i), "", 3600)
		})

		refreshed := make(chan TokenRecord, 1)
		sess, err := NewSession(context.Background(), "code", "", testCredentials(endpoint.TokenURL()),
			WithHTTPClient(endpoint.Client()),
			WithOnRefresh(func(_ Hook, rec TokenRecord) { refreshed <- rec }))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sess.Shutdown()

		select {
		case rec := <-refreshed:
			if rec.AccessToken != "access-2" || rec.RefreshToken != "refresh-1" {
				t.Errorf("unexpected refreshed record %+v", rec)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("session never renewed")
		}
		if sess.Token() != "access-2" {
			t.Errorf("expected renewed token, got %s", sess.Token())
		}
	})
}

func TestResume(t *testing.T) {
	creds := testCredentials("http://127.0.0.1:1/api/token")

	t.Run("Requires Refresh Token", func(t *testing.T) {
		_, err := Resume(TokenRecord{AccessToken: "a"}, creds)
		if !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})

	t.Run("Expired Record Renews Immediately", func(t *testing.T) {
		var calls atomic.Int32
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			calls.Add(1)
			return expiringIn("access-new", "", time.Hour), nil
		})

		old := TokenRecord{AccessToken: "access-old", RefreshToken: "r", GrantTime: time.Now().Add(-time.Hour), ExpiresIn: time.Hour}
		sess, err := Resume(old, creds, WithRefresher(refresher))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sess.Shutdown()

		waitFor(t, 2*time.Second, func() bool { return sess.Token() == "access-new" })
		if calls.Load() != 1 {
			t.Errorf("expected one renewal, got %d", calls.Load())
		}
	})

	t.Run("Restart Renews Now", func(t *testing.T) {
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			return expiringIn("access-forced", "", time.Hour), nil
		})
		sess, err := Resume(expiringIn("access-0", "r", time.Hour), creds, WithRefresher(refresher))
		if err != nil {
			t.Fatal(err)
		}
		defer sess.Shutdown()

		sess.Restart(0)
		waitFor(t, 2*time.Second, func() bool { return sess.Token() == "access-forced" })
	})
}

func TestSessionShutdown(t *testing.T) {
	creds := testCredentials("http://127.0.0.1:1/api/token")

	t.Run("Concurrent With In Flight Refresh", func(t *testing.T) {
		started := make(chan struct{})
		var once sync.Once
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			once.Do(func() { close(started) })
			<-ctx.Done()
			return expiringIn("after-shutdown", "", time.Hour), nil
		})

		sess, err := Resume(expiringIn("access-0", "r", 0), creds, WithRefresher(refresher))
		if err != nil {
			t.Fatal(err)
		}
		<-started

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess.Shutdown()
				if tok := sess.Token(); tok != "access-0" {
					t.Errorf("token replaced after shutdown returned: %s", tok)
				}
			}()
		}
		wg.Wait()

		if sess.Status().State != StateStopped {
			t.Errorf("expected stopped, got %s", sess.Status().State)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		sess, err := Resume(expiringIn("a", "r", time.Hour), creds, WithRefresher(RefresherFunc(nil)))
		if err != nil {
			t.Fatal(err)
		}
		sess.Shutdown()
		sess.Shutdown()
		if sess.Token() != "a" {
			t.Error("expected last token to remain readable")
		}
	})

	t.Run("From Refresh Hook", func(t *testing.T) {
		var sess *Session
		ready := make(chan struct{})
		hookDone := make(chan struct{})
		refresher := RefresherFunc(func(ctx context.Context, rt string) (TokenRecord, error) {
			return expiringIn("access-1", "", 0), nil
		})

		var err error
		sess, err = Resume(expiringIn("access-0", "r", time.Hour), creds,
			WithRefresher(refresher),
			WithOnRefresh(func(h Hook, _ TokenRecord) {
				<-ready
				h.Stop()
				close(hookDone)
			}))
		if err != nil {
			t.Fatal(err)
		}
		close(ready)
		sess.Restart(0)

		select {
		case <-hookDone:
		case <-time.After(2 * time.Second):
			t.Fatal("stopping deadlocked inside refresh hook")
		}

		select {
		case <-sess.scheduler.done:
		case <-time.After(2 * time.Second):
			t.Fatal("refresh goroutine did not exit after the hook returned")
		}
		sess.Shutdown()
		if sess.Status().State != StateStopped {
			t.Errorf("expected stopped, got %s", sess.Status().State)
		}
	})
}
