// Command ts-stream-bars authenticates against TradeStation and streams
// live price bars for one symbol to the log. It doubles as a smoke test for
// the whole SDK: authorization-code flow, token refresh loop, and the
// streaming dispatcher.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/go-trading/tradestation-go/pkg/core"
	"github.com/go-trading/tradestation-go/pkg/logger"
	"github.com/go-trading/tradestation-go/pkg/store"
	"github.com/go-trading/tradestation-go/pkg/tradestation"

	"github.com/appleboy/graceful"
)

// barLogger logs every stream event instead of acting on it.
type barLogger struct {
	tradestation.BaseHandler
}

func (barLogger) OnData(data json.RawMessage) {
	var bar tradestation.Bar
	if err := json.Unmarshal(data, &bar); err != nil {
		slog.Warn("unrecognized stream object", "raw", string(data))
		return
	}
	slog.Info("bar",
		"time", bar.TimeStamp,
		"open", bar.Open,
		"high", bar.High,
		"low", bar.Low,
		"close", bar.Close,
		"volume", bar.TotalVolume,
		"status", bar.BarStatus,
	)
}

func (barLogger) OnHeartbeat(hb tradestation.Heartbeat) {
	slog.Debug("heartbeat", "n", hb.Heartbeat, "timestamp", hb.Timestamp)
}

func (barLogger) OnError(e tradestation.StreamError) {
	slog.Error("stream error", "error", e.Error, "message", e.Message)
}

func (barLogger) OnStatus(s tradestation.StreamStatus) {
	slog.Info("stream status", "status", s.StreamStatus)
}

func main() {
	var (
		symbol    string
		interval  int
		unit      string
		barsBack  int
		live      bool
		port      int
		usePKCE   bool
		storeType string
		redisAddr string
		logLevel  string
	)
	flag.StringVar(&symbol, "symbol", "MSFT", "symbol to stream")
	flag.IntVar(&interval, "interval", 1, "bar interval")
	flag.StringVar(&unit, "unit", "Minute", "bar unit (Minute, Daily, Weekly, Monthly)")
	flag.IntVar(&barsBack, "barsback", 10, "number of historical bars to replay before going live")
	flag.BoolVar(&live, "live", false, "use the production API instead of the simulator")
	flag.IntVar(&port, "port", 8080, "local port for the OAuth redirect listener")
	flag.BoolVar(&usePKCE, "pkce", false, "use PKCE in the authorization flow")
	flag.StringVar(&storeType, "store", "memory", "token store backend (memory or redis)")
	flag.StringVar(&redisAddr, "redis-addr", "localhost:6379", "redis address for -store redis")
	flag.StringVar(&logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	logger.NewWithLevel(logLevel)

	tokenStore, err := store.NewStore(store.Config{
		Type:     store.ParseStoreType(storeType),
		ClientID: os.Getenv("CLIENT_ID"),
		Redis:    store.RedisOptions{Addr: redisAddr},
	})
	if err != nil {
		slog.Error("failed to create token store", "err", err)
		os.Exit(1)
	}

	// Tag the session's log lines with one request id for correlation.
	ctx := core.WithRequestID(context.Background())

	slog.Info("authenticating, a browser window will open")
	client, err := tradestation.New(ctx, tradestation.Config{
		Live:    live,
		Port:    port,
		UsePKCE: usePKCE,
		Store:   tokenStore,
	})
	if err != nil {
		slog.Error("authentication failed", "err", err)
		os.Exit(1)
	}

	m := graceful.NewManager()

	m.AddRunningJob(func(ctx context.Context) error {
		err := client.RunAutoRefresh(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("token refresh loop stopped", "err", err)
		}
		return err
	})

	m.AddRunningJob(func(ctx context.Context) error {
		slog.Info("streaming bars", "symbol", symbol, "interval", interval, "unit", unit)
		err := client.StreamBars(ctx, symbol, tradestation.BarsQuery{
			Interval: interval,
			Unit:     tradestation.BarUnit(unit),
			BarsBack: barsBack,
		}, barLogger{})
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("bar stream ended", "err", err)
		}
		return err
	})

	<-m.Done()
}
