package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/spotkit/internal/shared"
)

// CallbackResult is the outcome of the authorization redirect: a code to exchange, or the reason there is none.
type CallbackResult struct {
	Code string
	Err  error
}

// CallbackHandler receives the authorization code redirect.
//
// It checks the state parameter and hands the code to whoever waits on [CallbackHandler.Result].
// The token exchange itself is left to the caller. Only the first callback is processed.
type CallbackHandler struct {
	path    string
	state   string
	results chan CallbackResult
	once    sync.Once

	mu  sync.Mutex
	hit bool
}

// NewCallbackHandler creates a handler serving path that accepts only callbacks carrying state.
func NewCallbackHandler(path, state string) *CallbackHandler {
	if path == "" {
		path = "/callback"
	}
	return &CallbackHandler{
		path:    path,
		state:   state,
		results: make(chan CallbackResult, 1),
	}
}

func (h *CallbackHandler) Routes() []string {
	return []string{"GET " + h.path}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.hit = true
	h.mu.Unlock()

	q := r.URL.Query()
	if q.Get("state") != h.state {
		h.send(CallbackResult{Err: fmt.Errorf("%w: state parameter mismatch", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := q.Get("code")
	if code == "" {
		reason := q.Get("error")
		if reason == "" {
			reason = "no authorization code"
		}
		h.send(CallbackResult{Err: fmt.Errorf("%w: %s", shared.ErrAuthFailed, reason)})
		renderPage(w, http.StatusBadRequest, "Authorization Failed", "Spotify reported: "+reason)
		return
	}

	h.send(CallbackResult{Code: code})
	renderPage(w, http.StatusOK, "Authorization Successful", "You can close this window and return to the terminal.")
}

func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result receives exactly one [CallbackResult] and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

// Wait blocks until the callback arrives or ctx is done.
func (h *CallbackHandler) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-h.results:
		return res.Code, res.Err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

var pageTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	pageTemplate.Execute(w, struct{ Title, Message string }{title, message})
}
