package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Ticker updates applied"},
		[]string{"symbol"},
	)
	CandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "candles_total", Help: "Candles appended to series"},
		[]string{"symbol"},
	)
	DroppedCandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dropped_candles_total", Help: "Candle rows dropped during normalization"},
		[]string{"reason"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Paper orders placed"},
		[]string{"symbol", "side"},
	)
	WSConnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "ws_connects_total", Help: "WebSocket dial attempts"},
	)
	PnLUSD = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "pnl_usd", Help: "Mark-to-market PnL over all paper orders"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, CandlesTotal, DroppedCandlesTotal, OrdersTotal, WSConnectsTotal, PnLUSD)
}

// Handler отдаёт /metrics; монтируется на admin-муксе health-модуля.
func Handler() http.Handler { return promhttp.Handler() }
