package tradestation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-trading/tradestation-go/pkg/core"
)

// capturingServer records the last request's method, path and body.
type capturedRequest struct {
	method string
	path   string
	body   []byte
}

func capturingServer(t *testing.T, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(response))
	}))
	return srv, captured
}

func TestClient_GetOrders(t *testing.T) {
	srv, captured := capturingServer(t, `{"Orders":[]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	if _, err := client.GetOrders(context.Background(), "123456", "789SIM"); err != nil {
		t.Fatalf("GetOrders() error = %v", err)
	}
	if captured.path != "/brokerage/accounts/123456,789SIM/orders" {
		t.Errorf("request path = %q, want the comma-joined orders path", captured.path)
	}
	if captured.method != http.MethodGet {
		t.Errorf("method = %q, want GET", captured.method)
	}
}

func TestClient_GetOrdersByID(t *testing.T) {
	srv, captured := capturingServer(t, `{"Orders":[]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	if _, err := client.GetOrdersByID(context.Background(), []string{"123456"}, []string{"111", "222"}); err != nil {
		t.Fatalf("GetOrdersByID() error = %v", err)
	}
	if captured.path != "/brokerage/accounts/123456/orders/111,222" {
		t.Errorf("request path = %q, want order ids appended", captured.path)
	}
}

func TestClient_GetOrdersByID_MissingIDs(t *testing.T) {
	client := newTestClient(t, "http://unused", testToken())

	_, err := client.GetOrdersByID(context.Background(), []string{"123456"}, nil)
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("GetOrdersByID() error = %v, want *core.ConfigError", err)
	}
}

func TestClient_PlaceOrder(t *testing.T) {
	srv, captured := capturingServer(t, `{"Orders":[{"OrderID":"987"}]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	order := &Order{
		AccountID:   "123456",
		Symbol:      "MSFT",
		Quantity:    "10",
		OrderType:   OrderTypeMarket,
		TradeAction: ActionBuy,
		Duration:    DurationDay,
	}

	raw, err := client.PlaceOrder(context.Background(), order)
	if err != nil {
		t.Fatalf("PlaceOrder() error = %v", err)
	}

	if captured.method != http.MethodPost {
		t.Errorf("method = %q, want POST", captured.method)
	}
	if captured.path != "/brokerage/accounts/orders" {
		t.Errorf("request path = %q, want /brokerage/accounts/orders", captured.path)
	}

	var sent map[string]json.RawMessage
	if err := json.Unmarshal(captured.body, &sent); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}
	if string(sent["Symbol"]) != `"MSFT"` {
		t.Errorf("sent Symbol = %s, want MSFT", sent["Symbol"])
	}
	if _, ok := sent["TimeInForce"]; !ok {
		t.Error("sent order is missing the TimeInForce object")
	}

	var resp struct {
		Orders []struct {
			OrderID string `json:"OrderID"`
		} `json:"Orders"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("PlaceOrder() response is not valid JSON: %v", err)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].OrderID != "987" {
		t.Errorf("PlaceOrder() response = %s, want OrderID 987", raw)
	}
}

func TestClient_PlaceOrder_Nil(t *testing.T) {
	client := newTestClient(t, "http://unused", testToken())

	_, err := client.PlaceOrder(context.Background(), nil)
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("PlaceOrder(nil) error = %v, want *core.ConfigError", err)
	}
}

func TestClient_PlaceGroupOrder(t *testing.T) {
	srv, captured := capturingServer(t, `{"Orders":[]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	orders := []*Order{
		{
			AccountID:   "123456",
			Symbol:      "MSFT",
			Quantity:    "10",
			OrderType:   OrderTypeLimit,
			TradeAction: ActionSell,
			Duration:    DurationGTC,
			LimitPrice:  "250.00",
		},
		{
			AccountID:   "123456",
			Symbol:      "MSFT",
			Quantity:    "10",
			OrderType:   OrderTypeStopMarket,
			TradeAction: ActionSell,
			Duration:    DurationGTC,
			StopPrice:   "200.00",
		},
	}

	if _, err := client.PlaceGroupOrder(context.Background(), GroupOCO, orders); err != nil {
		t.Fatalf("PlaceGroupOrder() error = %v", err)
	}

	if captured.path != "/brokerage/accounts/ordergroups" {
		t.Errorf("request path = %q, want /brokerage/accounts/ordergroups", captured.path)
	}

	var sent struct {
		Type   string            `json:"Type"`
		Orders []json.RawMessage `json:"Orders"`
	}
	if err := json.Unmarshal(captured.body, &sent); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}
	if sent.Type != "OCO" {
		t.Errorf("group Type = %q, want OCO", sent.Type)
	}
	if len(sent.Orders) != 2 {
		t.Errorf("group carried %d orders, want 2", len(sent.Orders))
	}
}

func TestClient_PlaceGroupOrder_Empty(t *testing.T) {
	client := newTestClient(t, "http://unused", testToken())

	_, err := client.PlaceGroupOrder(context.Background(), GroupBracket, nil)
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("PlaceGroupOrder() error = %v, want *core.ConfigError", err)
	}
}

func TestClient_ConfirmOrder(t *testing.T) {
	srv, captured := capturingServer(t, `{"Confirmations":[{"EstimatedCost":"2160.00"}]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	order := &Order{
		AccountID:   "123456",
		Symbol:      "MSFT",
		Quantity:    "10",
		OrderType:   OrderTypeMarket,
		TradeAction: ActionBuy,
		Duration:    DurationDay,
	}

	if _, err := client.ConfirmOrder(context.Background(), order); err != nil {
		t.Fatalf("ConfirmOrder() error = %v", err)
	}
	if captured.path != "/brokerage/accounts/orderconfirm" {
		t.Errorf("request path = %q, want /brokerage/accounts/orderconfirm", captured.path)
	}
	if captured.method != http.MethodPost {
		t.Errorf("method = %q, want POST", captured.method)
	}
}

func TestClient_ConfirmGroupOrder(t *testing.T) {
	srv, captured := capturingServer(t, `{"Confirmations":[]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	orders := []*Order{{
		AccountID:   "123456",
		Symbol:      "MSFT",
		Quantity:    "10",
		OrderType:   OrderTypeMarket,
		TradeAction: ActionBuy,
		Duration:    DurationDay,
	}}

	if _, err := client.ConfirmGroupOrder(context.Background(), GroupNormal, orders); err != nil {
		t.Fatalf("ConfirmGroupOrder() error = %v", err)
	}
	if captured.path != "/brokerage/accounts/ordergroupconfirm" {
		t.Errorf("request path = %q, want /brokerage/accounts/ordergroupconfirm", captured.path)
	}
}

func TestClient_ReplaceOrder(t *testing.T) {
	srv, captured := capturingServer(t, `{"Message":"Order replaced"}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	if _, err := client.ReplaceOrder(context.Background(), "987654", ReplaceOrderRequest{
		Quantity:   "5",
		LimitPrice: "210.00",
	}); err != nil {
		t.Fatalf("ReplaceOrder() error = %v", err)
	}

	if captured.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", captured.method)
	}
	if captured.path != "/brokerage/accounts/orders/987654" {
		t.Errorf("request path = %q, want /brokerage/accounts/orders/987654", captured.path)
	}

	var sent map[string]json.RawMessage
	if err := json.Unmarshal(captured.body, &sent); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}
	if string(sent["Quantity"]) != `"5"` {
		t.Errorf("sent Quantity = %s, want 5", sent["Quantity"])
	}
}

func TestClient_ReplaceOrder_MissingID(t *testing.T) {
	client := newTestClient(t, "http://unused", testToken())

	_, err := client.ReplaceOrder(context.Background(), "", ReplaceOrderRequest{Quantity: "5"})
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("ReplaceOrder() error = %v, want *core.ConfigError", err)
	}
}

func TestClient_GetActivationTriggers(t *testing.T) {
	srv, captured := capturingServer(t, `{"ActivationTriggers":[]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	if _, err := client.GetActivationTriggers(context.Background()); err != nil {
		t.Fatalf("GetActivationTriggers() error = %v", err)
	}
	if captured.path != "/brokerage/accounts/activationtriggers" {
		t.Errorf("request path = %q, want /brokerage/accounts/activationtriggers", captured.path)
	}
}

func TestClient_GetRoutes(t *testing.T) {
	srv, captured := capturingServer(t, `{"Routes":[]}`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	if _, err := client.GetRoutes(context.Background()); err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if captured.path != "/brokerage/accounts/routes" {
		t.Errorf("request path = %q, want /brokerage/accounts/routes", captured.path)
	}
}

func TestClient_StreamOrders(t *testing.T) {
	srv, captured := capturingServer(t, `{"OrderID":"987","Status":"FLL"}
`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())
	h := &recordingHandler{}

	if err := client.StreamOrders(context.Background(), []string{"123456"}, h); err != nil {
		t.Fatalf("StreamOrders() error = %v", err)
	}
	if captured.path != "/brokerage/stream/accounts/123456/orders" {
		t.Errorf("request path = %q, want the order stream path", captured.path)
	}
	if len(h.events) != 1 || h.events[0] != `data:{"OrderID":"987","Status":"FLL"}` {
		t.Errorf("events = %v, want the single order update", h.events)
	}
}

func TestClient_StreamOrdersByID(t *testing.T) {
	srv, captured := capturingServer(t, `{"OrderID":"111","Status":"ACK"}
`)
	defer srv.Close()

	client := newTestClient(t, srv.URL, testToken())

	if err := client.StreamOrdersByID(context.Background(), []string{"123456"}, []string{"111", "222"}, BaseHandler{}); err != nil {
		t.Fatalf("StreamOrdersByID() error = %v", err)
	}
	if captured.path != "/brokerage/stream/accounts/123456/orders/111,222" {
		t.Errorf("request path = %q, want order ids appended to the stream path", captured.path)
	}
}
