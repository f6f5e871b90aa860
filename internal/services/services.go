package services

import (
	"net/http"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.spotify.com/v1"
	DefaultLimit   = 20
	MaxLimit       = 50
)

// TokenSource supplies the bearer token for each request. [*auth.Session] satisfies it.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed access token, for scripts and tests.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Option configures a [SpotifyService].
type Option func(*SpotifyService)

func WithBaseURL(u string) Option {
	return func(s *SpotifyService) { s.baseURL = u }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *SpotifyService) { s.httpClient = c }
}

// WithRequestRate paces outgoing requests to perSecond. Zero or less disables pacing.
func WithRequestRate(perSecond float64) Option {
	return func(s *SpotifyService) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *SpotifyService) { s.logger = l }
}

// clampLimit bounds a page size to what the API accepts.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}
