package tradestation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-trading/tradestation-go/pkg/core"
)

// BarUnit is the interval unit for bar charts.
type BarUnit string

const (
	UnitMinute  BarUnit = "Minute"
	UnitDaily   BarUnit = "Daily"
	UnitWeekly  BarUnit = "Weekly"
	UnitMonthly BarUnit = "Monthly"
)

// SessionTemplate selects which trading sessions a bar request covers.
type SessionTemplate string

const (
	SessionDefault        SessionTemplate = "Default"
	SessionUSEQPre        SessionTemplate = "USEQPre"
	SessionUSEQPost       SessionTemplate = "USEQPost"
	SessionUSEQPreAndPost SessionTemplate = "USEQPreAndPost"
	SessionUSEQ24Hour     SessionTemplate = "USEQ24Hour"
)

// Bar is one historical or streamed price bar. Prices arrive as decimal
// strings, as the provider sends them.
type Bar struct {
	High            string `json:"High"`
	Low             string `json:"Low"`
	Open            string `json:"Open"`
	Close           string `json:"Close"`
	TimeStamp       string `json:"TimeStamp"`
	TotalVolume     string `json:"TotalVolume"`
	DownTicks       int64  `json:"DownTicks"`
	DownVolume      int64  `json:"DownVolume"`
	OpenInterest    string `json:"OpenInterest"`
	UnchangedTicks  int64  `json:"UnchangedTicks"`
	UnchangedVolume int64  `json:"UnchangedVolume"`
	UpTicks         int64  `json:"UpTicks"`
	UpVolume        int64  `json:"UpVolume"`
	TotalTicks      int64  `json:"TotalTicks"`
	Epoch           int64  `json:"Epoch"`
	IsRealtime      bool   `json:"IsRealtime"`
	IsEndOfHistory  bool   `json:"IsEndOfHistory"`
	BarStatus       string `json:"BarStatus"`
}

// BarsQuery selects a bar range. BarsBack and FirstDate are mutually
// exclusive; when neither is set one bar is fetched.
type BarsQuery struct {
	// Interval between bars, in Unit terms (default 1).
	Interval int
	// Unit of the interval (default Daily).
	Unit BarUnit
	// BarsBack counts bars backwards from LastDate or now.
	BarsBack int
	// FirstDate is the inclusive start of the range.
	FirstDate time.Time
	// LastDate is the inclusive end of the range.
	LastDate time.Time
	// SessionTemplate defaults to Default.
	SessionTemplate SessionTemplate
}

// values validates the query and renders it as query parameters. All
// validation happens before any network call.
func (q BarsQuery) values() (url.Values, error) {
	if q.BarsBack > 0 && !q.FirstDate.IsZero() {
		return nil, &core.ConfigError{Reason: "bars_back and first_date are mutually exclusive, choose one"}
	}

	interval := q.Interval
	if interval == 0 {
		interval = 1
	}
	unit := q.Unit
	if unit == "" {
		unit = UnitDaily
	}
	session := q.SessionTemplate
	if session == "" {
		session = SessionDefault
	}

	params := url.Values{}
	params.Set("interval", strconv.Itoa(interval))
	params.Set("unit", string(unit))
	params.Set("sessiontemplate", string(session))

	if !q.FirstDate.IsZero() {
		params.Set("firstdate", formatTime(q.FirstDate))
	} else {
		barsBack := q.BarsBack
		if barsBack == 0 {
			barsBack = 1
		}
		params.Set("barsback", strconv.Itoa(barsBack))
	}
	if !q.LastDate.IsZero() {
		params.Set("lastdate", formatTime(q.LastDate))
	}
	return params, nil
}

// GetBars fetches historical bars for a symbol.
func (c *Client) GetBars(ctx context.Context, symbol string, q BarsQuery) ([]Bar, error) {
	params, err := q.values()
	if err != nil {
		return nil, err
	}

	raw, err := c.Call(ctx, Request{
		Endpoint: "marketdata/barcharts/" + symbol,
		Query:    params,
	})
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Bars []Bar `json:"Bars"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bars response: %w", err)
	}
	return envelope.Bars, nil
}

// StreamBars streams bars for a symbol, dispatching each object through
// the handler. It blocks until the stream ends or fails.
func (c *Client) StreamBars(ctx context.Context, symbol string, q BarsQuery, h StreamHandler) error {
	interval := q.Interval
	if interval == 0 {
		interval = 1
	}
	if interval < 1 || interval > 64999 {
		return &core.ConfigError{Reason: "interval must be between 1 and 64999"}
	}
	if q.BarsBack != 0 && (q.BarsBack < 1 || q.BarsBack > 57600) {
		return &core.ConfigError{Reason: "bars_back must be between 1 and 57600"}
	}

	unit := q.Unit
	if unit == "" {
		unit = UnitDaily
	}
	session := q.SessionTemplate
	if session == "" {
		session = SessionDefault
	}

	params := url.Values{}
	params.Set("interval", strconv.Itoa(interval))
	params.Set("unit", string(unit))
	params.Set("sessiontemplate", string(session))
	if q.BarsBack != 0 {
		params.Set("barsback", strconv.Itoa(q.BarsBack))
	}

	return c.consumeStream(ctx, Request{
		Endpoint: "marketdata/stream/barcharts/" + symbol,
		Query:    params,
	}, h)
}

// formatTime renders a timestamp the way the provider expects: UTC,
// second precision, ISO-8601.
func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}
