package tradestation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-trading/tradestation-go/pkg/core"
)

// Account is one brokerage account of the authenticated user.
type Account struct {
	AccountID   string `json:"AccountID"`
	AccountType string `json:"AccountType"`
	Alias       string `json:"Alias"`
	Currency    string `json:"Currency"`
	Status      string `json:"Status"`
}

// GetAccounts fetches all brokerage accounts for the authenticated user.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	raw, err := c.Call(ctx, Request{Endpoint: "brokerage/accounts"})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Accounts []Account `json:"Accounts"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts response: %w", err)
	}
	return envelope.Accounts, nil
}

// GetBalances fetches balances for the given accounts. The response
// envelope is provider-defined and returned as raw JSON.
func (c *Client) GetBalances(ctx context.Context, accounts ...string) (json.RawMessage, error) {
	ids, err := joinIDs(accounts, "account")
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, Request{Endpoint: "brokerage/accounts/" + ids + "/balances"})
}

// GetPositions fetches positions for the given accounts, optionally
// filtered by symbols (wildcards allowed by the provider).
func (c *Client) GetPositions(ctx context.Context, accounts []string, symbols ...string) (json.RawMessage, error) {
	ids, err := joinIDs(accounts, "account")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if len(symbols) > 0 {
		params.Set("symbol", strings.Join(symbols, ","))
	}
	return c.Call(ctx, Request{
		Endpoint: "brokerage/accounts/" + ids + "/positions",
		Query:    params,
	})
}

// StreamPositions streams positions for the given accounts. With changes
// set, updates arrive as deltas rather than full snapshots. Deleted
// positions fire the handler's OnDeleted.
func (c *Client) StreamPositions(ctx context.Context, accounts []string, changes bool, h StreamHandler) error {
	ids, err := joinIDs(accounts, "account")
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("changes", strconv.FormatBool(changes))
	return c.consumeStream(ctx, Request{
		Endpoint: "brokerage/stream/accounts/" + ids + "/positions",
		Query:    params,
	}, h)
}

// joinIDs renders a non-empty id list in the comma-separated form the
// provider expects in path segments.
func joinIDs(ids []string, kind string) (string, error) {
	if len(ids) == 0 {
		return "", &core.ConfigError{Reason: "at least one " + kind + " id is required"}
	}
	return strings.Join(ids, ","), nil
}
