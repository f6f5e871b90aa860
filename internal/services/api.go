// Raw HTTP layer shared by every Spotify endpoint wrapper
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/spotkit/internal/shared"
)

// APIResponse is a successful response before decoding.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
}

// NoContent reports a 204 response, which several player endpoints use for "nothing playing".
func (r *APIResponse) NoContent() bool {
	return r.StatusCode == http.StatusNoContent || len(r.Body) == 0
}

// Indent returns the body pretty printed when it is JSON, as-is otherwise.
func (r *APIResponse) Indent() []byte {
	if !r.IsJSON {
		return r.Body
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return r.Body
	}
	out, err := shared.MarshalJSON(v, true)
	if err != nil {
		return r.Body
	}
	return out
}

// resolve joins a path or absolute URL against the base URL.
// Absolute URLs, such as page "next" links, must share the base URL's scheme and host,
// since the bearer token is attached to every request.
func (s *SpotifyService) resolve(path string, query url.Values) (string, error) {
	var raw string
	absolute := strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
	switch {
	case absolute:
		raw = path
	case strings.HasPrefix(path, "/"):
		raw = s.baseURL + path
	default:
		raw = s.baseURL + "/" + path
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if absolute {
		base, err := url.Parse(s.baseURL)
		if err != nil {
			return "", fmt.Errorf("%w: base URL: %v", shared.ErrInvalidInput, err)
		}
		if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
			return "", fmt.Errorf("%w: %s is not on %s://%s", shared.ErrInvalidInput, u.Redacted(), base.Scheme, base.Host)
		}
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// doRequest performs an authorized GET.
//
// A request that never produced a response fails with [*shared.TransportError]. A non-2xx response
// fails with [*shared.StatusError] carrying the status code and body.
func (s *SpotifyService) doRequest(ctx context.Context, path string, query url.Values) (*APIResponse, error) {
	target, err := s.resolve(path, query)
	if err != nil {
		return nil, err
	}

	token := s.tokens.Token()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &shared.TransportError{Method: http.MethodGet, URL: target, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &shared.TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	s.logger.Debug("api request", "url", target, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.StatusError{Method: req.Method, URL: target, StatusCode: resp.StatusCode, Body: body}
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
		IsJSON:     json.Valid(body),
	}, nil
}

// GetRaw performs an authorized GET and returns the undecoded response.
func (s *SpotifyService) GetRaw(ctx context.Context, path string) (*APIResponse, error) {
	return s.doRequest(ctx, path, nil)
}
