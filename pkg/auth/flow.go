package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-trading/tradestation-go/pkg/core"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// successPage is served to the browser once the authorization code has been
// exchanged. It closes the tab after a second.
const successPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Authentication Successful</title>
    <script>
        setTimeout(() => {
            window.close();
        }, 1000);
    </script>
    <style>
        body {
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            font-family: Arial, sans-serif;
            font-size: 24px;
            font-weight: bold;
        }
    </style>
</head>
<body>
    Authentication successful!
</body>
</html>
`

// Flow drives one authorization-code round trip: authorize URL, browser,
// local redirect listener, code exchange. A Flow is single-use; the
// listener is torn down as soon as the first code has been handled.
type Flow struct {
	cfg Config
}

// NewFlow validates the configuration and returns a ready flow.
func NewFlow(cfg Config) (*Flow, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	if cfg.Store == nil {
		return nil, &core.ConfigError{Reason: "auth flow requires a token store"}
	}
	return &Flow{cfg: cfg}, nil
}

// RedirectURI returns the local redirect target registered with the
// provider: http://localhost:{port}/.
func (f *Flow) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d/", f.cfg.Port)
}

// AuthorizeURL builds the provider authorize URL for the given anti-CSRF
// state and optional PKCE challenge.
func (f *Flow) AuthorizeURL(state, codeChallenge string) string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", f.cfg.ClientID)
	params.Set("audience", audience)
	params.Set("redirect_uri", f.RedirectURI())
	params.Set("scope", scopes)
	params.Set("state", state)
	if codeChallenge != "" {
		params.Set("code_challenge", codeChallenge)
		params.Set("code_challenge_method", "S256")
	}
	return f.cfg.AuthURL + "?" + params.Encode()
}

// authResult is the single-shot signal from the redirect handler back to
// the blocked Authenticate call.
type authResult struct {
	token *core.Token
	err   error
}

// Authenticate runs the full authorization-code flow and blocks until the
// redirect has been received and exchanged, the context is cancelled, or
// the authorize timeout expires. The listener is bound before the browser
// opens so the provider can never redirect into a closed port. The obtained
// token is saved to the configured store before Authenticate returns.
func (f *Flow) Authenticate(ctx context.Context) (*core.Token, error) {
	state := uuid.NewString()
	codeVerifier := ""
	codeChallenge := ""
	if f.cfg.UsePKCE {
		codeVerifier = oauth2.GenerateVerifier()
		codeChallenge = oauth2.S256ChallengeFromVerifier(codeVerifier)
	}

	results := make(chan authResult, 1)
	var once sync.Once
	deliver := func(r authResult) {
		once.Do(func() { results <- r })
	}

	logger := core.LoggerFromCtx(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/", func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			// Gate stays closed; the provider may retry or the user may
			// restart the flow in the same browser session.
			c.String(http.StatusBadRequest, "No authorization code found.")
			return
		}
		if c.Query("state") != state {
			logger.Warn("authorization redirect with mismatched state, rejecting")
			c.String(http.StatusBadRequest, "State mismatch.")
			return
		}

		token, err := f.Exchange(ctx, code, codeVerifier)
		if err != nil {
			c.String(http.StatusBadGateway, "Token exchange failed.")
			deliver(authResult{err: err})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(successPage))
		deliver(authResult{token: token})
	})

	addr := fmt.Sprintf("localhost:%d", f.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind redirect listener on %s: %w", addr, err)
	}
	server := &http.Server{Handler: router}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("redirect listener error", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authorizeURL := f.AuthorizeURL(state, codeChallenge)
	logger.Info("starting authorization flow", "redirect_uri", f.RedirectURI())
	if err := f.cfg.OpenBrowser(authorizeURL); err != nil {
		logger.Warn("failed to open browser, open the URL manually", "url", authorizeURL, "err", err)
	}

	select {
	case r := <-results:
		return r.token, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.cfg.AuthorizeTimeout):
		return nil, &core.AuthError{Reason: fmt.Sprintf("timed out after %s waiting for authorization redirect", f.cfg.AuthorizeTimeout)}
	}
}

// Exchange swaps an authorization code for tokens and saves the result to
// the store. codeVerifier is empty unless PKCE is enabled.
func (f *Flow) Exchange(ctx context.Context, code, codeVerifier string) (*core.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", f.RedirectURI())
	form.Set("client_id", f.cfg.ClientID)
	form.Set("client_secret", f.cfg.ClientSecret)
	if codeVerifier != "" {
		form.Set("code_verifier", codeVerifier)
	}

	token, err := requestToken(ctx, f.cfg.HTTPClient, f.cfg.TokenURL, form, f.cfg.RefreshMargin)
	if err != nil {
		return nil, err
	}
	if err := f.cfg.Store.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return token, nil
}
