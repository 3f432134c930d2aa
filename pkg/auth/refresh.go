package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-trading/tradestation-go/pkg/core"
)

// Refresher exchanges the refresh token for a fresh access token, either on
// demand or as a recurring background loop. It is the only component that
// renews tokens; the request dispatcher never refreshes on its own.
type Refresher struct {
	cfg Config
}

// NewRefresher validates the configuration and returns a ready refresher.
func NewRefresher(cfg Config) (*Refresher, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if cfg.Store == nil {
		return nil, &core.ConfigError{Reason: "refresher requires a token store"}
	}
	return &Refresher{cfg: cfg}, nil
}

// Refresh renews the access token using the stored refresh token. It fails
// with ErrNoRefreshToken, without touching the network, when no refresh
// token is held. The provider may or may not rotate the refresh token; if
// the response carries none, the prior value is kept.
func (r *Refresher) Refresh(ctx context.Context) (*core.Token, error) {
	prev, err := r.cfg.Store.Load(ctx)
	if err != nil || prev.RefreshToken == "" {
		return nil, core.ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", r.cfg.ClientID)
	form.Set("client_secret", r.cfg.ClientSecret)
	form.Set("refresh_token", prev.RefreshToken)

	token, err := requestToken(ctx, r.cfg.HTTPClient, r.cfg.TokenURL, form, r.cfg.RefreshMargin)
	if err != nil {
		return nil, err
	}
	if token.RefreshToken == "" {
		token.RefreshToken = prev.RefreshToken
	}
	if err := r.cfg.Store.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}
	return token, nil
}

// Run refreshes the token in a loop, sleeping until each expiry instant
// (the refresh margin is already folded into ExpiresAt). It returns when
// the context is cancelled, when no refresh token remains, or on the first
// refresh failure; there is no retry.
func (r *Refresher) Run(ctx context.Context) error {
	logger := core.LoggerFromCtx(ctx)
	for {
		token, err := r.cfg.Store.Load(ctx)
		if err != nil || token.RefreshToken == "" {
			return core.ErrNoRefreshToken
		}

		wait := time.Until(token.ExpiresAt)
		if wait < 0 {
			wait = 0
		}
		logger.Debug("scheduling token refresh", "in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		refreshed, err := r.Refresh(ctx)
		if err != nil {
			return err
		}
		logger.Info("access token refreshed", "expires_at", refreshed.ExpiresAt)
	}
}
