package helper

import (
	"math"
	"strings"
)

// Round8 округляет объём до 8 знаков после запятой — шаг паперного ордера.
// Эпсилон прикрывает двоичные хвосты вида 0.29999999999.
func Round8(v float64) float64 {
	return math.Round(v*1e8+math.Copysign(1e-9, v)) / 1e8
}

// SplitList — "btcusd, ethusd" -> ["BTCUSD","ETHUSD"]. Пустые куски пропускаем.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MaxPeriod — самый длинный период из списка, 0 для пустого.
func MaxPeriod(periods []int) int {
	max := 0
	for _, p := range periods {
		if p > max {
			max = p
		}
	}
	return max
}
