package runner

import (
	"context"
	"time"

	"paper_bot/internal/metrics"
	"paper_bot/internal/models"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Зависимости раннера — маленькие интерфейсы по месту использования.

type MarketStore interface {
	ApplyTicker(u models.TickerUpdate)
	ApplyCandles(batch models.CandleBatch) []string
}

type Trader interface {
	Evaluate(symbol string) (models.Order, bool)
	PnL() float64
	OrderCount() int
}

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

type Health interface {
	SetReady(v bool)
	SetWSConnected(v bool)
	TouchEvent(t time.Time)
}

// Runner — единственный писатель стора: один луп читает события стрима,
// применяет их и гоняет переоценку сигналов по затронутым символам.
type Runner struct {
	events <-chan models.StreamEvent
	store  MarketStore
	trader Trader
	n      Notifier
	health Health
	tracer opentracing.Tracer
	log    *zap.Logger

	reportEvery time.Duration
}

func New(
	events <-chan models.StreamEvent,
	store MarketStore,
	trader Trader,
	n Notifier,
	health Health,
	tracer opentracing.Tracer,
	log *zap.Logger,
	reportEvery time.Duration,
) *Runner {
	return &Runner{
		events:      events,
		store:       store,
		trader:      trader,
		n:           n,
		health:      health,
		tracer:      tracer,
		log:         log,
		reportEvery: reportEvery,
	}
}

// Start блокируется до отмены ctx; модуль зовёт его в горутине.
func (r *Runner) Start(ctx context.Context) {
	go r.reportLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-r.events:
			if !ok {
				return
			}
			r.handle(ev)
		}
	}
}

func (r *Runner) handle(ev models.StreamEvent) {
	switch e := ev.(type) {
	case models.TickerUpdate:
		r.store.ApplyTicker(e)
		metrics.TicksTotal.WithLabelValues(e.Symbol).Inc()
		r.health.TouchEvent(time.Now())

	case models.CandleBatch:
		span := r.tracer.StartSpan("candle_batch")
		span.SetTag("symbol", e.Symbol)
		span.SetTag("candles", len(e.Candles))

		touched := r.store.ApplyCandles(e)
		metrics.CandlesTotal.WithLabelValues(e.Symbol).Add(float64(len(e.Candles)))
		r.health.TouchEvent(time.Now())

		// переоценка ровно один раз на символ за доставку
		for _, sym := range touched {
			if order, ok := r.trader.Evaluate(sym); ok {
				r.n.Sendf("🧾 Паперный ордер: %s %s @ %.2f × %.8f",
					order.Side, order.Symbol, order.Price, order.Amount)
			}
		}
		span.Finish()

	case models.ConnStateChange:
		r.onConnState(e)
	}
}

func (r *Runner) onConnState(e models.ConnStateChange) {
	switch e.State {
	case models.StateOpen:
		// первый successful open — сервис готов
		r.health.SetReady(true)
		r.health.SetWSConnected(true)
		r.log.Info("[RUNNER] stream open")
	case models.StateConnecting:
		r.log.Info("[RUNNER] stream connecting")
	case models.StateClosed:
		r.health.SetWSConnected(false)
		if e.Err != nil {
			r.log.Warn("[RUNNER] stream closed", zap.Error(e.Err))
		} else {
			r.log.Info("[RUNNER] stream closed")
		}
	}
}

// reportLoop — периодический отчёт: лог, гейдж PnL и сообщение в нотифайер.
func (r *Runner) reportLoop(ctx context.Context) {
	if r.reportEvery <= 0 {
		return
	}
	ticker := time.NewTicker(r.reportEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pnl := r.trader.PnL()
			orders := r.trader.OrderCount()
			metrics.PnLUSD.Set(pnl)
			r.log.Info("[RUNNER] report", zap.Float64("pnl", pnl), zap.Int("orders", orders))
			r.n.Sendf("🩺 PnL: %+.2f USD | ордеров: %d", pnl, orders)
		}
	}
}
