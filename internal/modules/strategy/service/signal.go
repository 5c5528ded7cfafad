package service

import (
	"paper_bot/internal/models"

	"github.com/thrasher-corp/gct-ta/indicators"
)

// maFunc — сигнатура индикатора из gct-ta: серия закрытий -> серия средних.
// Поле, а не прямой вызов, чтобы в тестах подсовывать управляемые средние.
type maFunc func([]float64, int) []float64

type MAKind string

const (
	KindSMA MAKind = "sma"
	KindEMA MAKind = "ema"
)

// Engine голосует скользящими средними по нескольким периодам.
// Состояния нет: чистые вычисления над серией закрытий.
type Engine struct {
	periods []int
	sma     maFunc
	ema     maFunc
}

func NewEngine(periods []int) *Engine {
	if len(periods) == 0 {
		periods = []int{5, 10, 20}
	}
	return &Engine{
		periods: periods,
		sma:     indicators.SMA,
		ema:     indicators.EMA,
	}
}

// Vote — консенсус по одному виду средней. Средняя выше последнего close —
// голос SELL (ждём возврата к средней), ниже — BUY, равенство — воздержался.
// Период, на который не хватает данных, тоже воздерживается и тем самым
// ломает консенсус.
func (e *Engine) Vote(closes []float64, kind MAKind) models.Signal {
	if len(closes) == 0 {
		return models.SignalUnknown
	}

	ma := e.sma
	if kind == KindEMA {
		ma = e.ema
	}

	last := closes[len(closes)-1]
	var buy, sell int
	for _, p := range e.periods {
		vals := ma(closes, p)
		if len(vals) == 0 {
			continue // мало данных для этого периода
		}
		avg := vals[len(vals)-1]
		switch {
		case avg > last:
			sell++
		case avg < last:
			buy++
		}
	}

	switch {
	case buy == len(e.periods):
		return models.SignalBuy
	case sell == len(e.periods):
		return models.SignalSell
	default:
		return models.SignalNeutral
	}
}

// Combined — двойное подтверждение: ордер только когда EMA и SMA
// голосуют одинаково в сторону BUY или SELL.
func (e *Engine) Combined(closes []float64) models.Signal {
	emaSig := e.Vote(closes, KindEMA)
	smaSig := e.Vote(closes, KindSMA)

	if emaSig == models.SignalUnknown || smaSig == models.SignalUnknown {
		return models.SignalUnknown
	}
	if emaSig == smaSig && (emaSig == models.SignalBuy || emaSig == models.SignalSell) {
		return emaSig
	}
	return models.SignalNeutral
}
