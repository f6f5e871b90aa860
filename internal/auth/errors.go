package auth

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/spotkit/internal/shared"
)

// AuthError reports a failed authorization code exchange. A session cannot be created after one.
//
// StatusCode is 0 when the token endpoint was never reached.
type AuthError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *AuthError) Error() string {
	return describe("authorization code exchange failed", e.StatusCode, e.Reason, e.Err)
}

func (e *AuthError) Unwrap() []error {
	return unwrap(shared.ErrAuthFailed, e.Err)
}

// RefreshError reports a failed renewal attempt. It is only observed through
// [Status] and the refresh error hook; callers of Token keep the previous token.
type RefreshError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *RefreshError) Error() string {
	return describe("token refresh failed", e.StatusCode, e.Reason, e.Err)
}

func (e *RefreshError) Unwrap() []error {
	return unwrap(shared.ErrRefreshFailed, e.Err)
}

func describe(prefix string, status int, reason string, err error) string {
	msg := prefix
	if status != 0 {
		msg += fmt.Sprintf(": status %d %s", status, http.StatusText(status))
	}
	if reason != "" {
		msg += ": " + reason
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}

func unwrap(sentinel, err error) []error {
	if err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, err}
}
