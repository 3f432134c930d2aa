// Package auth implements the TradeStation OAuth2 authorization-code flow
// and the token refresh lifecycle. It is deliberately not a general-purpose
// OAuth client: the authorize endpoint, token endpoint, audience and scopes
// are fixed provider values.
package auth

import (
	"net/http"
	"os"
	"time"

	"github.com/go-trading/tradestation-go/pkg/core"
)

const (
	// DefaultAuthURL is the provider's fixed authorize endpoint.
	DefaultAuthURL = "https://signin.tradestation.com/authorize"
	// DefaultTokenURL is the provider's fixed token endpoint.
	DefaultTokenURL = "https://signin.tradestation.com/oauth/token"

	// DefaultPort is the local callback listener port.
	DefaultPort = 8080
	// DefaultRefreshMargin is subtracted from the token lifetime so renewal
	// happens slightly before the provider-side expiry.
	DefaultRefreshMargin = 5 * time.Second
	// DefaultAuthorizeTimeout bounds the wait for the browser redirect.
	DefaultAuthorizeTimeout = 5 * time.Minute

	audience = "https://api.tradestation.com"
	scopes   = "openid profile offline_access MarketData ReadAccount Trade"

	// Token lifetime the provider applies when expires_in is absent.
	defaultExpiresIn = 1200

	requestTimeout = 30 * time.Second
)

// Config carries everything the flow and the refresher need. ClientID and
// ClientSecret fall back to the CLIENT_ID and CLIENT_SECRET environment
// variables when left empty.
type Config struct {
	ClientID     string
	ClientSecret string

	// Port for the local redirect listener. Defaults to 8080; the redirect
	// URI is always http://localhost:{port}/.
	Port int

	// AuthURL and TokenURL override the provider endpoints, for tests.
	AuthURL  string
	TokenURL string

	// RefreshMargin is subtracted from expires_in when computing the token
	// expiry instant.
	RefreshMargin time.Duration

	// AuthorizeTimeout bounds the wait between opening the browser and
	// receiving the redirect. Expiry fails the flow with an AuthError.
	AuthorizeTimeout time.Duration

	// UsePKCE adds an S256 code challenge to the authorize request and the
	// matching verifier to the code exchange.
	UsePKCE bool

	// Store receives the token after every exchange and refresh.
	Store core.TokenStore

	// HTTPClient overrides the client used against the token endpoint.
	HTTPClient *http.Client

	// OpenBrowser overrides how the authorize URL is opened. Defaults to
	// the platform browser.
	OpenBrowser func(url string) error
}

// normalize fills defaults and applies the environment fallback for
// credentials. It fails fast with ErrMissingCredentials so a misconfigured
// session never reaches the provider.
func (c Config) normalize() (Config, error) {
	if c.ClientID == "" {
		c.ClientID = os.Getenv("CLIENT_ID")
	}
	if c.ClientSecret == "" {
		c.ClientSecret = os.Getenv("CLIENT_SECRET")
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return c, core.ErrMissingCredentials
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AuthURL == "" {
		c.AuthURL = DefaultAuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.RefreshMargin == 0 {
		c.RefreshMargin = DefaultRefreshMargin
	}
	if c.AuthorizeTimeout == 0 {
		c.AuthorizeTimeout = DefaultAuthorizeTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if c.OpenBrowser == nil {
		c.OpenBrowser = openBrowser
	}
	return c, nil
}
