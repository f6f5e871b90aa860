package auth

import (
	"time"
)

// TokenRecord is one access/refresh token pair as granted by the token endpoint.
type TokenRecord struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scope        string
	GrantTime    time.Time
	ExpiresIn    time.Duration
}

// ExpirationTime is GrantTime + ExpiresIn.
func (r TokenRecord) ExpirationTime() time.Time {
	return r.GrantTime.Add(r.ExpiresIn)
}

// Expired reports whether the access token is no longer valid at now.
func (r TokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpirationTime())
}

// Empty reports whether the record holds no access token.
func (r TokenRecord) Empty() bool {
	return r.AccessToken == ""
}
