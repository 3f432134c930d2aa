package tradestation

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-trading/tradestation-go/pkg/core"
)

// GroupType selects how the orders of a group relate to each other.
type GroupType string

const (
	// GroupBracket submits a bracket (entry plus protective exits).
	GroupBracket GroupType = "BRK"
	// GroupOCO submits one-cancels-other orders.
	GroupOCO GroupType = "OCO"
	// GroupNormal submits independent orders in one request.
	GroupNormal GroupType = "NORMAL"
)

// GetOrders fetches today's orders and open orders for the given accounts,
// sorted by the provider in descending order of time placed (open) or time
// executed (closed).
func (c *Client) GetOrders(ctx context.Context, accounts ...string) (json.RawMessage, error) {
	ids, err := joinIDs(accounts, "account")
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, Request{Endpoint: "brokerage/accounts/" + ids + "/orders"})
}

// GetOrdersByID fetches today's and open orders for the given accounts,
// filtered to the given order ids.
func (c *Client) GetOrdersByID(ctx context.Context, accounts, orderIDs []string) (json.RawMessage, error) {
	accountIDs, err := joinIDs(accounts, "account")
	if err != nil {
		return nil, err
	}
	ids, err := joinIDs(orderIDs, "order")
	if err != nil {
		return nil, err
	}
	return c.Call(ctx, Request{Endpoint: "brokerage/accounts/" + accountIDs + "/orders/" + ids})
}

// StreamOrders streams order updates for the given accounts.
func (c *Client) StreamOrders(ctx context.Context, accounts []string, h StreamHandler) error {
	ids, err := joinIDs(accounts, "account")
	if err != nil {
		return err
	}
	return c.consumeStream(ctx, Request{
		Endpoint: "brokerage/stream/accounts/" + ids + "/orders",
	}, h)
}

// StreamOrdersByID streams updates for specific orders of the given
// accounts.
func (c *Client) StreamOrdersByID(ctx context.Context, accounts, orderIDs []string, h StreamHandler) error {
	accountIDs, err := joinIDs(accounts, "account")
	if err != nil {
		return err
	}
	ids, err := joinIDs(orderIDs, "order")
	if err != nil {
		return err
	}
	return c.consumeStream(ctx, Request{
		Endpoint: "brokerage/stream/accounts/" + accountIDs + "/orders/" + ids,
	}, h)
}

// PlaceOrder places a new brokerage order.
func (c *Client) PlaceOrder(ctx context.Context, order *Order) (json.RawMessage, error) {
	if order == nil {
		return nil, &core.ConfigError{Reason: "order is required"}
	}
	return c.Call(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "brokerage/accounts/orders",
		Payload:  order,
	})
}

// groupOrderPayload is the wire shape of a group order submission.
type groupOrderPayload struct {
	Type   GroupType `json:"Type"`
	Orders []*Order  `json:"Orders"`
}

// PlaceGroupOrder places a group order (bracket, OCO or normal).
func (c *Client) PlaceGroupOrder(ctx context.Context, groupType GroupType, orders []*Order) (json.RawMessage, error) {
	if len(orders) == 0 {
		return nil, &core.ConfigError{Reason: "at least one order is required"}
	}
	return c.Call(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "brokerage/accounts/ordergroups",
		Payload:  groupOrderPayload{Type: groupType, Orders: orders},
	})
}

// ConfirmOrder returns estimated cost and commission information for an
// order without placing it.
func (c *Client) ConfirmOrder(ctx context.Context, order *Order) (json.RawMessage, error) {
	if order == nil {
		return nil, &core.ConfigError{Reason: "order is required"}
	}
	return c.Call(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "brokerage/accounts/orderconfirm",
		Payload:  order,
	})
}

// ConfirmGroupOrder returns estimated cost and commission information for
// a group order without placing it.
func (c *Client) ConfirmGroupOrder(ctx context.Context, groupType GroupType, orders []*Order) (json.RawMessage, error) {
	if len(orders) == 0 {
		return nil, &core.ConfigError{Reason: "at least one order is required"}
	}
	return c.Call(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "brokerage/accounts/ordergroupconfirm",
		Payload:  groupOrderPayload{Type: groupType, Orders: orders},
	})
}

// ReplaceOrderRequest carries the modifiable fields of an active order.
// Zero-valued fields are left unchanged.
type ReplaceOrderRequest struct {
	Quantity   string
	LimitPrice string
	StopPrice  string
	// OrderType can only be changed to Market.
	OrderType OrderType

	ShowOnlyQuantity    string
	TrailingStopAmount  string
	TrailingStopPercent string

	// MarketActivationClearAll removes all market activation rules.
	MarketActivationClearAll *bool
	MarketActivationRules    []MarketActivationRule

	// TimeActivationClearAll removes all time activation rules.
	TimeActivationClearAll *bool
	TimeActivationRules    []time.Time
}

// ruleUpdate is the wire shape of an activation-rule change: a ClearAll
// flag and/or a replacement rule list.
type ruleUpdate struct {
	ClearAll *bool `json:"ClearAll,omitempty"`
	Rules    any   `json:"Rules,omitempty"`
}

// replaceAdvanced is the AdvancedOptions shape of a replace request, which
// differs from placement: activation rules are wrapped in rule updates.
type replaceAdvanced struct {
	ShowOnlyQuantity      string        `json:"ShowOnlyQuantity,omitempty"`
	TrailingStop          *TrailingStop `json:"TrailingStop,omitempty"`
	MarketActivationRules *ruleUpdate   `json:"MarketActivationRules,omitempty"`
	TimeActivationRules   *ruleUpdate   `json:"TimeActivationRules,omitempty"`
}

// replaceWire is the full replace payload.
type replaceWire struct {
	Quantity        string           `json:"Quantity,omitempty"`
	LimitPrice      string           `json:"LimitPrice,omitempty"`
	StopPrice       string           `json:"StopPrice,omitempty"`
	OrderType       OrderType        `json:"OrderType,omitempty"`
	AdvancedOptions *replaceAdvanced `json:"AdvancedOptions,omitempty"`
}

// payload renders the replace request in the provider's nested shape.
func (r ReplaceOrderRequest) payload() replaceWire {
	wire := replaceWire{
		Quantity:   r.Quantity,
		LimitPrice: r.LimitPrice,
		StopPrice:  r.StopPrice,
		OrderType:  r.OrderType,
	}

	advanced := &replaceAdvanced{
		ShowOnlyQuantity: r.ShowOnlyQuantity,
	}
	if r.TrailingStopAmount != "" || r.TrailingStopPercent != "" {
		advanced.TrailingStop = &TrailingStop{
			Amount:  r.TrailingStopAmount,
			Percent: r.TrailingStopPercent,
		}
	}
	if r.MarketActivationClearAll != nil || len(r.MarketActivationRules) > 0 {
		update := &ruleUpdate{ClearAll: r.MarketActivationClearAll}
		if len(r.MarketActivationRules) > 0 {
			update.Rules = r.MarketActivationRules
		}
		advanced.MarketActivationRules = update
	}
	if r.TimeActivationClearAll != nil || len(r.TimeActivationRules) > 0 {
		update := &ruleUpdate{ClearAll: r.TimeActivationClearAll}
		if len(r.TimeActivationRules) > 0 {
			rules := make([]TimeActivationRule, 0, len(r.TimeActivationRules))
			for _, at := range r.TimeActivationRules {
				rules = append(rules, TimeActivationRule{TimeUTC: formatTime(at)})
			}
			update.Rules = rules
		}
		advanced.TimeActivationRules = update
	}

	if *advanced != (replaceAdvanced{}) {
		wire.AdvancedOptions = advanced
	}
	return wire
}

// ReplaceOrder replaces an active order with a modified version of itself.
func (c *Client) ReplaceOrder(ctx context.Context, orderID string, req ReplaceOrderRequest) (json.RawMessage, error) {
	if orderID == "" {
		return nil, &core.ConfigError{Reason: "order id is required"}
	}
	return c.Call(ctx, Request{
		Method:   http.MethodPut,
		Endpoint: "brokerage/accounts/orders/" + orderID,
		Payload:  req.payload(),
	})
}

// GetActivationTriggers retrieves the available activation triggers and
// their keys.
func (c *Client) GetActivationTriggers(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, Request{Endpoint: "brokerage/accounts/activationtriggers"})
}

// GetRoutes retrieves the valid routes an order may specify.
func (c *Client) GetRoutes(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, Request{Endpoint: "brokerage/accounts/routes"})
}
