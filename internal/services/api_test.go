package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spotkit/internal/shared"
	tu "github.com/desertthunder/spotkit/internal/testing"
)

func TestAPIService(t *testing.T) {
	t.Run("Resolve", func(t *testing.T) {
		srv, _ := NewSpotifyService(StaticToken("t"), WithBaseURL("https://api.example.com/v1/"))

		tests := []struct {
			name  string
			path  string
			query url.Values
			want  string
		}{
			{"Leading Slash", "/me", nil, "https://api.example.com/v1/me"},
			{"No Slash", "me/tracks", nil, "https://api.example.com/v1/me/tracks"},
			{"Absolute Next Link", "https://api.example.com/v1/me/tracks?offset=20&limit=20", nil, "https://api.example.com/v1/me/tracks?offset=20&limit=20"},
			{"Query Added", "/search", url.Values{"q": {"a b"}}, "https://api.example.com/v1/search?q=a+b"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := srv.resolve(tt.path, tt.query)
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if got != tt.want {
					t.Errorf("expected %s, got %s", tt.want, got)
				}
			})
		}
	})

	t.Run("Resolve Rejects Foreign Hosts", func(t *testing.T) {
		srv, _ := NewSpotifyService(StaticToken("t"), WithBaseURL("https://api.example.com/v1"))

		for _, path := range []string{
			"https://evil.example.net/v1/me",
			"http://api.example.com/v1/me",
			"https://api.example.com.evil.net/v1/me",
			"https://api.example.com:8443/v1/me",
		} {
			t.Run(path, func(t *testing.T) {
				got, err := srv.resolve(path, nil)
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %q, %v", got, err)
				}
			})
		}
	})

	t.Run("Foreign Next Link Never Sees Token", func(t *testing.T) {
		var leaked atomic.Bool
		foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "" {
				leaked.Store(true)
			}
			io.WriteString(w, `{}`)
		}))
		defer foreign.Close()

		srv, _ := NewSpotifyService(StaticToken("secret"), WithBaseURL("https://api.example.com/v1"))
		if _, err := srv.GetRaw(context.Background(), foreign.URL+"/me"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if leaked.Load() {
			t.Error("bearer token sent to a foreign host")
		}
	})

	t.Run("GetRaw", func(t *testing.T) {
		t.Run("Sends Bearer Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("expected bearer header, got %q", got)
				}
				if r.Method != http.MethodGet {
					t.Errorf("expected GET, got %s", r.Method)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Test", "kept")
				io.WriteString(w, `{"id":"me"}`)
			}))
			defer server.Close()

			srv, _ := NewSpotifyService(StaticToken("secret"), WithBaseURL(server.URL))
			resp, err := srv.GetRaw(context.Background(), "/me")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON {
				t.Error("expected JSON body")
			}
			if resp.Headers.Get("X-Test") != "kept" {
				t.Error("expected response headers to be preserved")
			}
			if !strings.Contains(string(resp.Indent()), "\n") {
				t.Errorf("expected indented body, got %s", resp.Indent())
			}
		})

		t.Run("Non JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "plain text")
			}))
			defer server.Close()

			srv, _ := NewSpotifyService(StaticToken("t"), WithBaseURL(server.URL))
			resp, err := srv.GetRaw(context.Background(), "/x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected non-JSON body")
			}
			if string(resp.Indent()) != "plain text" {
				t.Errorf("expected body unchanged, got %s", resp.Indent())
			}
		})

		t.Run("Status Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				io.WriteString(w, `{"error":{"status":404,"message":"Not found."}}`)
			}))
			defer server.Close()

			srv, _ := NewSpotifyService(StaticToken("t"), WithBaseURL(server.URL))
			_, err := srv.GetRaw(context.Background(), "/tracks/nope")

			var se *shared.StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *shared.StatusError, got %v", err)
			}
			if se.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", se.StatusCode)
			}
			if !strings.Contains(string(se.Body), "Not found.") {
				t.Errorf("expected body to be kept, got %s", se.Body)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected error to match ErrAPIRequest")
			}
			var te *shared.TransportError
			if errors.As(err, &te) {
				t.Error("status error must not be a transport error")
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			srv, _ := NewSpotifyService(StaticToken("t"), WithHTTPClient(client))

			_, err := srv.GetRaw(context.Background(), "/me")
			var te *shared.TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected *shared.TransportError, got %v", err)
			}
			if !errors.Is(err, shared.ErrTransport) {
				t.Error("expected error to match ErrTransport")
			}
			var se *shared.StatusError
			if errors.As(err, &se) {
				t.Error("transport error must not carry a status")
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			srv, _ := NewSpotifyService(StaticToken("t"), WithHTTPClient(client))

			_, err := srv.GetRaw(context.Background(), "/me")
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
		})

		t.Run("Empty Token", func(t *testing.T) {
			srv, _ := NewSpotifyService(StaticToken(""))
			_, err := srv.GetRaw(context.Background(), "/me")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("Canceled Context While Paced", func(t *testing.T) {
			srv, _ := NewSpotifyService(StaticToken("t"), WithRequestRate(1))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := srv.GetRaw(ctx, "/me")
			if !errors.Is(err, shared.ErrTransport) {
				t.Errorf("expected transport error, got %v", err)
			}
		})
	})

	t.Run("APIResponse", func(t *testing.T) {
		if !(&APIResponse{StatusCode: http.StatusNoContent}).NoContent() {
			t.Error("expected 204 to be no content")
		}
		if !(&APIResponse{StatusCode: http.StatusOK}).NoContent() {
			t.Error("expected empty body to be no content")
		}
		if (&APIResponse{StatusCode: http.StatusOK, Body: []byte("{}")}).NoContent() {
			t.Error("expected body to count as content")
		}
	})
}
