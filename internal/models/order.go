package models

import "time"

// Order — паперный ордер. После записи в журнал не меняется.
type Order struct {
	Symbol    string
	Side      Side    // BUY/SELL
	Price     float64 // последний close на момент сигнала
	Amount    float64 // объём в базовой валюте, округлён до 8 знаков
	CreatedAt time.Time
}
