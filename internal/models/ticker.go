package models

// Ticker — последний bid/ask по символу. Хранится как пришёл,
// перезаписывается каждым новым апдейтом (last write wins).
type Ticker struct {
	Bid float64
	Ask float64
}
