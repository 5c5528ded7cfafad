package service

import (
	"math/rand"
	"time"

	"paper_bot/internal/helper"
	"paper_bot/internal/metrics"
	"paper_bot/internal/models"

	"go.uber.org/zap"
)

// MarketStore — что трейдеру нужно от стора.
type MarketStore interface {
	Candles(symbol string) []models.Candle
	Ticker(symbol string) (models.Ticker, bool)
	LastClose(symbol string) (float64, bool)
}

// SignalEngine — двойное подтверждение по серии закрытий.
type SignalEngine interface {
	Combined(closes []float64) models.Signal
}

// Trader превращает сигналы в паперные ордера и считает mark-to-market.
// Evaluate зовёт только горутина раннера, поэтому rnd без локов.
type Trader struct {
	spendCap float64
	store    MarketStore
	engine   SignalEngine
	ledger   *Ledger
	rnd      *rand.Rand
	log      *zap.Logger
}

func NewTrader(spendCapUSD float64, store MarketStore, engine SignalEngine, ledger *Ledger, rnd *rand.Rand, log *zap.Logger) *Trader {
	return &Trader{
		spendCap: spendCapUSD,
		store:    store,
		engine:   engine,
		ledger:   ledger,
		rnd:      rnd,
		log:      log,
	}
}

// Evaluate пересчитывает сигнал по символу и при BUY/SELL кладёт ордер
// в журнал. Символ без свечей или без тикера ещё не готов — тихий no-op.
func (t *Trader) Evaluate(symbol string) (models.Order, bool) {
	candles := t.store.Candles(symbol)
	if len(candles) == 0 {
		return models.Order{}, false
	}
	if _, ok := t.store.Ticker(symbol); !ok {
		return models.Order{}, false
	}

	closes := models.Closes(candles)
	sig := t.engine.Combined(closes)
	if sig != models.SignalBuy && sig != models.SignalSell {
		return models.Order{}, false
	}

	return t.place(symbol, sig, closes[len(closes)-1])
}

func (t *Trader) place(symbol string, sig models.Signal, price float64) (models.Order, bool) {
	if price <= 0 {
		t.log.Warn("[TRADER] non-positive close, skip order", zap.String("symbol", symbol), zap.Float64("price", price))
		return models.Order{}, false
	}

	side := models.SideBuy
	if sig == models.SignalSell {
		side = models.SideSell
	}

	// объём: случайная доля бюджета по цене последнего close
	amount := helper.Round8(t.rnd.Float64() * t.spendCap / price)
	order := models.Order{
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	t.ledger.Append(order)

	metrics.OrdersTotal.WithLabelValues(symbol, string(side)).Inc()
	t.log.Info("[TRADER] paper order",
		zap.String("symbol", symbol),
		zap.String("side", string(side)),
		zap.Float64("price", price),
		zap.Float64("amount", amount),
	)
	return order, true
}

// PnL — mark-to-market всех ордеров к последнему close их символов.
// Символ, у которого прямо сейчас нет свечей, даёт нулевой вклад.
func (t *Trader) PnL() float64 {
	var pnl float64
	for _, o := range t.ledger.Orders() {
		last, ok := t.store.LastClose(o.Symbol)
		if !ok {
			continue
		}
		pnl += o.Side.Direction() * (last - o.Price) * o.Amount
	}
	return pnl
}

func (t *Trader) Orders() []models.Order { return t.ledger.Orders() }

func (t *Trader) OrderCount() int { return t.ledger.Len() }
