package service

import (
	"sync"

	"paper_bot/internal/models"
)

// Ledger — append-only журнал паперных ордеров в хронологическом порядке.
// Ордер после записи не меняется.
type Ledger struct {
	mu     sync.RWMutex
	orders []models.Order
}

func NewLedger() *Ledger { return &Ledger{} }

func (l *Ledger) Append(o models.Order) {
	l.mu.Lock()
	l.orders = append(l.orders, o)
	l.mu.Unlock()
}

// Orders — копия всей истории.
func (l *Ledger) Orders() []models.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Order, len(l.orders))
	copy(out, l.orders)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}
