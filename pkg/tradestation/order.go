package tradestation

import (
	"encoding/json"
	"time"
)

// OrderType is the execution style of an order.
type OrderType string

const (
	OrderTypeLimit      OrderType = "Limit"
	OrderTypeStopMarket OrderType = "StopMarket"
	OrderTypeMarket     OrderType = "Market"
	OrderTypeStopLimit  OrderType = "StopLimit"
)

// TradeAction is the intent of a trade.
type TradeAction string

const (
	ActionBuy         TradeAction = "BUY"
	ActionSell        TradeAction = "SELL"
	ActionBuyToCover  TradeAction = "BUYTOCOVER"
	ActionSellShort   TradeAction = "SELLSHORT"
	ActionBuyToOpen   TradeAction = "BUYTOOPEN"
	ActionBuyToClose  TradeAction = "BUYTOCLOSE"
	ActionSellToOpen  TradeAction = "SELLTOOPEN"
	ActionSellToClose TradeAction = "SELLTOCLOSE"
)

// Duration values for an order's time in force: DAY, DYP, GTC, GCP, GTD,
// GDP, OPG, CLO, IOC, FOK, or a day count ("1", "3", "5").
const (
	DurationDay          = "DAY"
	DurationGoodTillDate = "GTD"
	DurationGTC          = "GTC"
	DurationIOC          = "IOC"
	DurationFOK          = "FOK"
)

// TrailingStop is a trailing stop offset, in currency or percent.
type TrailingStop struct {
	Amount  string `json:"Amount,omitempty"`
	Percent string `json:"Percent,omitempty"`
}

// MarketActivationRule activates an order when a price predicate on a
// symbol is met.
type MarketActivationRule struct {
	RuleType      string `json:"RuleType,omitempty"`
	Symbol        string `json:"Symbol,omitempty"`
	Predicate     string `json:"Predicate,omitempty"`
	TriggerKey    string `json:"TriggerKey,omitempty"`
	Price         string `json:"Price,omitempty"`
	LogicOperator string `json:"LogicOperator,omitempty"`
}

// TimeActivationRule activates an order at an absolute UTC instant.
type TimeActivationRule struct {
	TimeUTC string `json:"TimeUtc"`
}

// AdvancedOptions are the optional execution refinements of an order. The
// whole object is omitted from the wire payload when no field is set.
type AdvancedOptions struct {
	AddLiquidity          *bool                  `json:"AddLiquidity,omitempty"`
	AllOrNone             *bool                  `json:"AllOrNone,omitempty"`
	BookOnly              *bool                  `json:"BookOnly,omitempty"`
	DiscretionaryPrice    string                 `json:"DiscretionaryPrice,omitempty"`
	MarketActivationRules []MarketActivationRule `json:"MarketActivationRules,omitempty"`
	NonDisplay            *bool                  `json:"NonDisplay,omitempty"`
	PegValue              string                 `json:"PegValue,omitempty"`
	ShowOnlyQuantity      string                 `json:"ShowOnlyQuantity,omitempty"`
	TimeActivationRules   []TimeActivationRule   `json:"TimeActivationRules,omitempty"`
	TrailingStop          *TrailingStop          `json:"TrailingStop,omitempty"`
	BuyingPowerWarning    string                 `json:"BuyingPowerWarning,omitempty"`
}

// Order is one brokerage order. Required fields are AccountID, Symbol,
// Quantity, OrderType, TradeAction and Duration; everything else is
// optional. The struct is built by the caller and serialized once when the
// order is placed or confirmed; no validation is applied locally beyond
// what the query builders check.
type Order struct {
	AccountID   string
	Symbol      string
	Quantity    string
	OrderType   OrderType
	TradeAction TradeAction

	// Duration is the time-in-force duration code.
	Duration string
	// Expiration applies to GTD/GDP durations.
	Expiration time.Time

	// Route defaults to "Intelligent".
	Route string

	LimitPrice string
	StopPrice  string

	AdvancedOptions *AdvancedOptions

	// OrderConfirmID deduplicates order submissions.
	OrderConfirmID string
}

// timeInForce is the nested wire shape of the duration fields.
type timeInForce struct {
	Duration   string `json:"Duration"`
	Expiration string `json:"Expiration,omitempty"`
}

// orderWire is the JSON shape the provider expects.
type orderWire struct {
	AccountID       string           `json:"AccountID"`
	Symbol          string           `json:"Symbol"`
	Quantity        string           `json:"Quantity"`
	OrderType       OrderType        `json:"OrderType"`
	TradeAction     TradeAction      `json:"TradeAction"`
	TimeInForce     timeInForce      `json:"TimeInForce"`
	Route           string           `json:"Route"`
	LimitPrice      string           `json:"LimitPrice,omitempty"`
	StopPrice       string           `json:"StopPrice,omitempty"`
	AdvancedOptions *AdvancedOptions `json:"AdvancedOptions,omitempty"`
	OrderConfirmID  string           `json:"OrderConfirmID,omitempty"`
}

// MarshalJSON renders the order in the provider's nested shape: a
// TimeInForce object, Route defaulted to "Intelligent", and AdvancedOptions
// present only when at least one option is set.
func (o *Order) MarshalJSON() ([]byte, error) {
	route := o.Route
	if route == "" {
		route = "Intelligent"
	}

	tif := timeInForce{Duration: o.Duration}
	if !o.Expiration.IsZero() {
		tif.Expiration = formatTime(o.Expiration)
	}

	return json.Marshal(orderWire{
		AccountID:       o.AccountID,
		Symbol:          o.Symbol,
		Quantity:        o.Quantity,
		OrderType:       o.OrderType,
		TradeAction:     o.TradeAction,
		TimeInForce:     tif,
		Route:           route,
		LimitPrice:      o.LimitPrice,
		StopPrice:       o.StopPrice,
		AdvancedOptions: o.AdvancedOptions,
		OrderConfirmID:  o.OrderConfirmID,
	})
}
