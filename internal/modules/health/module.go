package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"paper_bot/internal/metrics"
	"paper_bot/internal/models"
	appconfig "paper_bot/internal/modules/config"
	"paper_bot/internal/modules/health/service"
	marketService "paper_bot/internal/modules/market/service"
	traderService "paper_bot/internal/modules/trader/service"
)

type Config struct {
	Addr string // например ":8080"
	// Stale — порог тишины стрима для /healthz; 0 выключает проверку.
	Stale time.Duration
}

func NewConfig(cfg *appconfig.Config) Config {
	return Config{
		Addr:  fmt.Sprintf(":%d", cfg.Service.AdminPort),
		Stale: 3 * cfg.ReportEvery,
	}
}

// MarketSource — снапшоты рынка для query-ручек.
type MarketSource interface {
	Tickers() map[string]models.Ticker
	AllCandles() map[string][]models.Candle
	CandleCounts() map[string]int
}

// TradeSource — журнал и mark-to-market.
type TradeSource interface {
	Orders() []models.Order
	PnL() float64
}

type statusResponse struct {
	Ready        bool                     `json:"ready"`
	WSConnected  bool                     `json:"ws_connected"`
	UptimeSec    int64                    `json:"uptime_sec"`
	LastEventSec int64                    `json:"last_event_unix"`
	Tickers      map[string]models.Ticker `json:"tickers"`
	CandleCounts map[string]int           `json:"candle_counts"`
	OrderCount   int                      `json:"order_count"`
	PnLUSD       float64                  `json:"pnl_usd"`
}

func NewMux(state *service.State, mkt MarketSource, trd TradeSource, stale time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: был хотя бы один успешный open стрима
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		last := state.LastEvent()
		// нездоровы, когда стрим лежит и события давно не приходили
		silent := stale > 0 && !state.WSConnected() && !last.IsZero() && time.Since(last) > stale

		var lastUnix int64
		if !last.IsZero() {
			lastUnix = last.Unix()
		}
		body := map[string]any{
			"healthy":       !silent,
			"ready":         state.Ready(),
			"wsConnected":   state.WSConnected(),
			"uptimeSec":     int64(state.Uptime().Seconds()),
			"lastEventUnix": lastUnix,
		}
		if silent {
			writeJSONStatus(w, http.StatusServiceUnavailable, body)
			return
		}
		writeJSON(w, body)
	})

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			Ready:        state.Ready(),
			WSConnected:  state.WSConnected(),
			UptimeSec:    int64(state.Uptime().Seconds()),
			Tickers:      mkt.Tickers(),
			CandleCounts: mkt.CandleCounts(),
			OrderCount:   len(trd.Orders()),
			PnLUSD:       trd.PnL(),
		}
		if t := state.LastEvent(); !t.IsZero() {
			resp.LastEventSec = t.Unix()
		}
		writeJSON(w, resp)
	})

	// полная query-поверхность: история ордеров и все серии свечей
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, trd.Orders())
	})
	mux.HandleFunc("/candles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, mkt.AllCandles())
	})

	mux.Handle("/metrics", metrics.Handler())

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			log.Info("[HEALTH] admin listening", zap.String("addr", cfg.Addr))
			go func() { _ = srv.Serve(ln) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			func(state *service.State, st *marketService.Store, tr *traderService.Trader, cfg Config) *http.ServeMux {
				return NewMux(state, st, tr, cfg.Stale)
			},
		),
		fx.Invoke(RunHTTP),
	)
}
