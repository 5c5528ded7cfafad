package service

import (
	"context"
	"time"

	"paper_bot/internal/models"

	"go.uber.org/zap"
)

// CandleSource — REST-источник истории (клиент Bitfinex).
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error)
}

// Warmuper прогревает стор историей до старта стрима, чтобы сигналам
// не ждать двадцать живых минуток. Батчи идут в общий канал событий:
// для стора и движка прогрев неотличим от снапшота с wire.
type Warmuper struct {
	src CandleSource
	out chan<- models.StreamEvent
	log *zap.Logger
}

func NewWarmuper(src CandleSource, out chan models.StreamEvent, log *zap.Logger) *Warmuper {
	return &Warmuper{src: src, out: out, log: log}
}

// Warmup тянет по limit свечей на символ, последовательно: лимитер REST
// всё равно держит 1 rps. Ошибки не фатальны — стрим стартует в любом случае.
func (w *Warmuper) Warmup(ctx context.Context, symbols []string, limit int) {
	if limit <= 0 || len(symbols) == 0 {
		return
	}

	started := time.Now()
	total := 0
	for _, sym := range symbols {
		candles, err := w.src.GetCandles(ctx, sym, limit)
		if err != nil {
			w.log.Warn("[WARMUP] backfill failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		if len(candles) == 0 {
			w.log.Info("[WARMUP] no history", zap.String("symbol", sym))
			continue
		}

		select {
		case w.out <- models.CandleBatch{Symbol: sym, Candles: candles}:
			total += len(candles)
		case <-ctx.Done():
			return
		}
	}

	w.log.Info("[WARMUP] done",
		zap.Int("symbols", len(symbols)),
		zap.Int("candles", total),
		zap.Duration("took", time.Since(started)),
	)
}
