// Package tradestation is a client SDK for the TradeStation REST and
// streaming API: authentication, market data bars, account, order and
// position retrieval, and order placement.
package tradestation

import (
	"context"
	"net/http"
	"time"

	"github.com/go-trading/tradestation-go/pkg/auth"
	"github.com/go-trading/tradestation-go/pkg/core"
	"github.com/go-trading/tradestation-go/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	liveAPIURL = "https://api.tradestation.com/v3"
	demoAPIURL = "https://sim-api.tradestation.com/v3"

	tracerName = "github.com/go-trading/tradestation-go"
)

// Config configures a Client. The zero value targets the simulation
// environment and reads credentials from CLIENT_ID / CLIENT_SECRET.
type Config struct {
	// ClientID and ClientSecret identify the API application. When empty
	// they fall back to the CLIENT_ID and CLIENT_SECRET environment
	// variables; construction fails if neither is set.
	ClientID     string
	ClientSecret string

	// Live selects the production API. The default is the simulation
	// endpoint.
	Live bool

	// Port for the local OAuth redirect listener (default 8080).
	Port int

	// RefreshMargin is subtracted from each token lifetime (default 5s).
	RefreshMargin time.Duration

	// AuthorizeTimeout bounds the blocking wait for the browser redirect
	// during construction (default 5m).
	AuthorizeTimeout time.Duration

	// UsePKCE adds an S256 code challenge to the authorization flow.
	UsePKCE bool

	// BaseURL, AuthURL and TokenURL override the provider endpoints.
	BaseURL  string
	AuthURL  string
	TokenURL string

	// Store holds the session token (default: in-memory).
	Store core.TokenStore

	// HTTPClient is used for all API calls and streams.
	HTTPClient *http.Client

	// OpenBrowser overrides how the authorize URL is opened.
	OpenBrowser func(url string) error
}

// Client is a TradeStation API session. All endpoint methods funnel
// through Call and Stream, which attach the bearer token read from the
// token store at call time.
type Client struct {
	baseURL    string
	store      core.TokenStore
	httpClient *http.Client
	refresher  *auth.Refresher
	tracer     trace.Tracer
}

// New authenticates and returns a ready client. It blocks until the
// authorization-code flow completes: the local listener is started, the
// browser is opened, and the redirect is exchanged for tokens. ctx and the
// authorize timeout both bound the wait; failure aborts construction.
func New(ctx context.Context, cfg Config) (*Client, error) {
	tokenStore := cfg.Store
	if tokenStore == nil {
		tokenStore = store.NewMemoryStore()
	}

	authCfg := auth.Config{
		ClientID:         cfg.ClientID,
		ClientSecret:     cfg.ClientSecret,
		Port:             cfg.Port,
		AuthURL:          cfg.AuthURL,
		TokenURL:         cfg.TokenURL,
		RefreshMargin:    cfg.RefreshMargin,
		AuthorizeTimeout: cfg.AuthorizeTimeout,
		UsePKCE:          cfg.UsePKCE,
		Store:            tokenStore,
		HTTPClient:       cfg.HTTPClient,
		OpenBrowser:      cfg.OpenBrowser,
	}

	flow, err := auth.NewFlow(authCfg)
	if err != nil {
		return nil, err
	}
	if _, err := flow.Authenticate(ctx); err != nil {
		return nil, err
	}

	refresher, err := auth.NewRefresher(authCfg)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = demoAPIURL
		if cfg.Live {
			baseURL = liveAPIURL
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No client-wide timeout: streaming connections are long-lived and
		// bounded by the request context instead.
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    baseURL,
		store:      tokenStore,
		httpClient: httpClient,
		refresher:  refresher,
		tracer:     otel.Tracer(tracerName),
	}, nil
}

// Token returns a copy of the current session token.
func (c *Client) Token(ctx context.Context) (*core.Token, error) {
	return c.store.Load(ctx)
}

// Refresh renews the access token once using the stored refresh token.
func (c *Client) Refresh(ctx context.Context) (*core.Token, error) {
	return c.refresher.Refresh(ctx)
}

// RunAutoRefresh renews the access token in a loop until ctx is cancelled,
// no refresh token remains, or a refresh fails. Run it in its own
// goroutine; expired tokens are never refreshed transparently inside Call.
func (c *Client) RunAutoRefresh(ctx context.Context) error {
	return c.refresher.Run(ctx)
}
