package tradestation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-trading/tradestation-go/pkg/core"

	"go.opentelemetry.io/otel/attribute"
)

// Request describes one API call. Either Endpoint (a path under the
// configured base URL) or URL (absolute) must be set.
type Request struct {
	Endpoint string
	URL      string
	// Method defaults to GET.
	Method string
	Query  url.Values
	// Headers replaces the default header set entirely when non-nil. The
	// default is an Authorization bearer header drawn from the token store
	// at call time; if no token is held yet the request goes out without
	// one, which permits pre-auth calls.
	Headers http.Header
	// Payload is JSON-encoded into the request body when non-nil.
	Payload any
}

// newHTTPRequest translates a Request into an *http.Request, attaching
// query parameters, the JSON payload, and the bearer token.
func (c *Client) newHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	if r.Endpoint == "" && r.URL == "" {
		return nil, core.ErrMissingEndpoint
	}

	target := r.URL
	if target == "" {
		target = c.baseURL + "/" + r.Endpoint
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Payload != nil {
		data, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if len(r.Query) > 0 {
		q := req.URL.Query()
		for key, values := range r.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}

	if r.Headers != nil {
		req.Header = r.Headers.Clone()
	} else if token, err := c.store.Load(ctx); err == nil && token.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}
	if r.Payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Call performs one request and returns the raw JSON body of a 200
// response. Any other status fails with a RequestError carrying the status
// code and the provider's response text verbatim. Call never retries and
// never mutates the token store: a 401 from an expired token surfaces as a
// RequestError, renewal is the refresh manager's job.
func (c *Client) Call(ctx context.Context, r Request) (json.RawMessage, error) {
	req, err := c.newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "tradestation.Call")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("url.path", req.URL.Path),
	)

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &core.RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return json.RawMessage(body), nil
}
