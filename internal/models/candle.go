package models

import "time"

// Candle — закрытая минутная свеча в каноническом виде.
// Timestamp обязателен: строки без метки времени отсеиваются адаптером
// и в стор не попадают.
type Candle struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Closes — цены закрытия в порядке следования свечей.
func Closes(candles []Candle) []float64 {
	out := make([]float64, 0, len(candles))
	for _, c := range candles {
		out = append(out, c.Close)
	}
	return out
}
