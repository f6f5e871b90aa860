package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/spotkit/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL  = "https://accounts.spotify.com/authorize"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Credentials identify the client application to the accounts service.
//
// AuthURL and TokenURL default to the Spotify accounts endpoints.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
}

// CredentialsFromConfig builds Credentials from the [shared.SpotifyConfig] section.
func CredentialsFromConfig(cfg shared.SpotifyConfig) Credentials {
	return Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		AuthURL:      cfg.AuthURL,
		TokenURL:     cfg.TokenURL,
	}
}

// Validate reports missing client credentials.
func (c Credentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: client id and secret are required", shared.ErrMissingCredentials)
	}
	return nil
}

// Config returns the [oauth2.Config] for these credentials. Client credentials travel in
// the Authorization header as HTTP Basic auth.
func (c Credentials) Config() *oauth2.Config {
	authURL, tokenURL := c.AuthURL, c.TokenURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// AuthCodeURL returns the URL the user visits to grant access. state is echoed back to the redirect URI.
func (c Credentials) AuthCodeURL(state string) string {
	return c.Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Refresher mints a new token pair from a refresh token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (TokenRecord, error)
}

// TokenClient talks to the token endpoint for both grants.
type TokenClient struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewTokenClient creates a client for creds. A nil httpClient uses [http.DefaultClient].
func NewTokenClient(creds Credentials, httpClient *http.Client) *TokenClient {
	return &TokenClient{config: creds.Config(), httpClient: httpClient}
}

func (c *TokenClient) context(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// Exchange trades an authorization code for the initial token pair.
// redirectURI must match the one used to obtain code; "" keeps the configured one.
// Every failure is an [*AuthError].
func (c *TokenClient) Exchange(ctx context.Context, code, redirectURI string) (TokenRecord, error) {
	if code == "" {
		return TokenRecord{}, &AuthError{Reason: "empty authorization code", Err: shared.ErrMissingArgument}
	}

	config := *c.config
	if redirectURI != "" {
		config.RedirectURL = redirectURI
	}

	tok, err := config.Exchange(c.context(ctx), code)
	if err != nil {
		status, reason, cause := c.classify(err)
		return TokenRecord{}, &AuthError{StatusCode: status, Reason: reason, Err: cause}
	}

	rec, err := recordFrom(tok, "")
	if err != nil {
		return TokenRecord{}, &AuthError{Reason: "malformed token response", Err: err}
	}
	return rec, nil
}

// Refresh performs the refresh_token grant. When the response rotates the refresh token the new one
// is returned, otherwise refreshToken is carried over. Every failure is a [*RefreshError].
func (c *TokenClient) Refresh(ctx context.Context, refreshToken string) (TokenRecord, error) {
	if refreshToken == "" {
		return TokenRecord{}, &RefreshError{Err: shared.ErrNoRefreshToken}
	}

	// an expired token with only a refresh token forces the refresh grant
	tok, err := c.config.TokenSource(c.context(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		status, reason, cause := c.classify(err)
		return TokenRecord{}, &RefreshError{StatusCode: status, Reason: reason, Err: cause}
	}

	rec, err := recordFrom(tok, refreshToken)
	if err != nil {
		return TokenRecord{}, &RefreshError{Reason: "malformed token response", Err: err}
	}
	return rec, nil
}

// classify separates non-2xx responses, transport failures and unparsable bodies.
func (c *TokenClient) classify(err error) (status int, reason string, cause error) {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		reason = re.ErrorCode
		if re.ErrorDescription != "" {
			reason += ": " + re.ErrorDescription
		}
		return status, reason, &shared.StatusError{
			Method:     http.MethodPost,
			URL:        c.config.Endpoint.TokenURL,
			StatusCode: status,
			Body:       re.Body,
		}
	}

	var ue *url.Error
	if errors.As(err, &ue) {
		return 0, "", &shared.TransportError{Method: http.MethodPost, URL: c.config.Endpoint.TokenURL, Err: ue.Err}
	}

	return 0, "malformed token response", err
}

func recordFrom(tok *oauth2.Token, previousRefresh string) (TokenRecord, error) {
	if tok.AccessToken == "" {
		return TokenRecord{}, errors.New("missing access_token")
	}
	if tok.Expiry.IsZero() {
		return TokenRecord{}, errors.New("missing expires_in")
	}

	granted := time.Now()
	rec := TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		GrantTime:    granted,
		ExpiresIn:    tok.Expiry.Sub(granted).Round(time.Second),
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}
	if rec.RefreshToken == "" {
		rec.RefreshToken = previousRefresh
	}
	return rec, nil
}
