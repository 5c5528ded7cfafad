package models

// Signal — итог голосования движка по символу.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	// SignalNeutral — голоса разошлись, ничего не делаем.
	SignalNeutral Signal = "NEUTRAL"
	// SignalUnknown — серия пуста, считать не по чему.
	SignalUnknown Signal = "UNKNOWN"
)

// Side как в ордерах: "BUY"/"SELL" или пустая строка.
type Side string

const (
	SideNone Side = ""
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Direction — знак позиции для mark-to-market: BUY=+1, SELL=-1.
func (s Side) Direction() float64 {
	switch s {
	case SideBuy:
		return 1
	case SideSell:
		return -1
	default:
		return 0
	}
}
