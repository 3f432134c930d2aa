package core

import (
	"context"
	"time"
)

// Token holds the bearer credentials issued by the provider's token
// endpoint. ExpiresAt already has the refresh margin subtracted, so a token
// is due for renewal as soon as ExpiresAt passes.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the access token has passed its (margin-adjusted)
// expiry instant.
func (t *Token) Expired() bool {
	return !t.ExpiresAt.After(time.Now())
}

// TokenStore holds the current token for a session. It is written once by
// the authorization-code flow and repeatedly by the refresh loop, and read
// on every dispatched request, so implementations must never let a reader
// observe a half-written token.
type TokenStore interface {
	// Save replaces the stored token.
	Save(ctx context.Context, token *Token) error
	// Load returns a copy of the stored token, or ErrTokenNotFound if no
	// token has been saved yet.
	Load(ctx context.Context) (*Token, error)
}
