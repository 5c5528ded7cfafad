package service

import (
	"sync"

	"paper_bot/internal/models"
)

// Store — состояние рынка по каноническим символам: последний тикер
// и append-only серия свечей. Пишет только раннер, admin-ручки и
// отчёты читают конкурентно.
type Store struct {
	mu      sync.RWMutex
	tickers map[string]models.Ticker
	candles map[string][]models.Candle

	// 0 — историю не ограничиваем. Иначе окно уже прижато конфигом
	// к самому длинному периоду средней, так что сигналы не меняются.
	limit int
}

func NewStore(limit int) *Store {
	return &Store{
		tickers: make(map[string]models.Ticker),
		candles: make(map[string][]models.Candle),
		limit:   limit,
	}
}

// ApplyTicker — last write wins.
func (s *Store) ApplyTicker(u models.TickerUpdate) {
	if u.Symbol == "" {
		return
	}
	s.mu.Lock()
	s.tickers[u.Symbol] = u.Ticker
	s.mu.Unlock()
}

// ApplyCandles дописывает батч в серию символа в порядке доставки.
// Возвращает символы, которых коснулась доставка: по ним раннер гоняет
// переоценку сигнала ровно один раз, а не на каждую свечу.
func (s *Store) ApplyCandles(batch models.CandleBatch) []string {
	if batch.Symbol == "" || len(batch.Candles) == 0 {
		return nil
	}

	s.mu.Lock()
	series := append(s.candles[batch.Symbol], batch.Candles...)
	if s.limit > 0 && len(series) > s.limit {
		series = series[len(series)-s.limit:]
	}
	s.candles[batch.Symbol] = series
	s.mu.Unlock()

	return []string{batch.Symbol}
}

func (s *Store) Ticker(symbol string) (models.Ticker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tickers[symbol]
	return t, ok
}

// Candles — копия серии; пустой срез, если символа ещё нет.
func (s *Store) Candles(symbol string) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.candles[symbol]
	out := make([]models.Candle, len(src))
	copy(out, src)
	return out
}

func (s *Store) LastClose(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.candles[symbol]
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Close, true
}

func (s *Store) Tickers() map[string]models.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Ticker, len(s.tickers))
	for k, v := range s.tickers {
		out[k] = v
	}
	return out
}

// AllCandles — глубокая копия всех серий для query-поверхности.
func (s *Store) AllCandles() map[string][]models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.Candle, len(s.candles))
	for sym, series := range s.candles {
		cp := make([]models.Candle, len(series))
		copy(cp, series)
		out[sym] = cp
	}
	return out
}

func (s *Store) CandleCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.candles))
	for sym, series := range s.candles {
		out[sym] = len(series)
	}
	return out
}
