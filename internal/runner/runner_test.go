package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"paper_bot/internal/models"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recStore struct {
	mu      sync.Mutex
	ticks   []models.TickerUpdate
	batches []models.CandleBatch
}

func (s *recStore) ApplyTicker(u models.TickerUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, u)
}

func (s *recStore) ApplyCandles(b models.CandleBatch) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, b)
	return []string{b.Symbol}
}

func (s *recStore) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks), len(s.batches)
}

type recTrader struct {
	mu    sync.Mutex
	evals []string
	order models.Order
	place bool
	pnl   float64
	count int
}

func (t *recTrader) Evaluate(symbol string) (models.Order, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evals = append(t.evals, symbol)
	return t.order, t.place
}

func (t *recTrader) PnL() float64    { return t.pnl }
func (t *recTrader) OrderCount() int { return t.count }

func (t *recTrader) evaluated() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.evals...)
}

type recNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recNotifier) Send(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recNotifier) Sendf(format string, args ...any) {
	n.Send(fmt.Sprintf(format, args...))
}

func (n *recNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

type recHealth struct {
	mu      sync.Mutex
	ready   []bool
	ws      []bool
	touches int
}

func (h *recHealth) SetReady(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = append(h.ready, v)
}

func (h *recHealth) SetWSConnected(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ws = append(h.ws, v)
}

func (h *recHealth) TouchEvent(time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.touches++
}

func (h *recHealth) snapshot() ([]bool, []bool, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bool(nil), h.ready...), append([]bool(nil), h.ws...), h.touches
}

func startRunner(t *testing.T, tr *recTrader, reportEvery time.Duration) (chan models.StreamEvent, *recStore, *recNotifier, *recHealth) {
	t.Helper()
	ch := make(chan models.StreamEvent, 16)
	store := &recStore{}
	n := &recNotifier{}
	h := &recHealth{}

	r := New(ch, store, tr, n, h, opentracing.NoopTracer{}, zap.NewNop(), reportEvery)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ch, store, n, h
}

func TestRunnerAppliesEventsAndEvaluatesOnce(t *testing.T) {
	tr := &recTrader{
		order: models.Order{Symbol: "BTCUSD", Side: models.SideBuy, Price: 110, Amount: 0.5},
		place: true,
	}
	ch, store, n, h := startRunner(t, tr, 0)

	ch <- models.TickerUpdate{Symbol: "BTCUSD", Ticker: models.Ticker{Bid: 109, Ask: 111}}
	ch <- models.CandleBatch{Symbol: "BTCUSD", Candles: []models.Candle{
		{Close: 109, Timestamp: time.UnixMilli(60000)},
		{Close: 110, Timestamp: time.UnixMilli(120000)},
	}}

	require.Eventually(t, func() bool {
		ticks, batches := store.counts()
		return ticks == 1 && batches == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(tr.evaluated()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	// одна доставка — одна переоценка символа
	require.Equal(t, []string{"BTCUSD"}, tr.evaluated())

	require.Eventually(t, func() bool {
		return len(n.sent()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Contains(t, n.sent()[0], "BUY BTCUSD")

	_, _, touches := h.snapshot()
	require.Equal(t, 2, touches)
}

func TestRunnerNoNotifyWithoutOrder(t *testing.T) {
	tr := &recTrader{place: false}
	ch, store, n, _ := startRunner(t, tr, 0)

	ch <- models.CandleBatch{Symbol: "ETHUSD", Candles: []models.Candle{{Close: 10, Timestamp: time.UnixMilli(60000)}}}

	require.Eventually(t, func() bool {
		_, batches := store.counts()
		return batches == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(tr.evaluated()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.Empty(t, n.sent())
}

func TestRunnerConnStateDrivesHealth(t *testing.T) {
	tr := &recTrader{}
	ch, _, _, h := startRunner(t, tr, 0)

	ch <- models.ConnStateChange{State: models.StateConnecting}
	ch <- models.ConnStateChange{State: models.StateOpen}
	ch <- models.ConnStateChange{State: models.StateClosed, Err: fmt.Errorf("read: reset")}

	require.Eventually(t, func() bool {
		_, ws, _ := h.snapshot()
		return len(ws) == 2
	}, 2*time.Second, 5*time.Millisecond)

	ready, ws, _ := h.snapshot()
	// готовность выставляется на первом Open и при обрыве не снимается
	require.Equal(t, []bool{true}, ready)
	require.Equal(t, []bool{true, false}, ws)
}

func TestRunnerPeriodicReport(t *testing.T) {
	tr := &recTrader{pnl: 4.2, count: 3}
	_, _, n, _ := startRunner(t, tr, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		for _, msg := range n.sent() {
			if strings.Contains(msg, "PnL") && strings.Contains(msg, "+4.20") {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestRunnerStopsWhenEventsChannelCloses(t *testing.T) {
	ch := make(chan models.StreamEvent)
	r := New(ch, &recStore{}, &recTrader{}, &recNotifier{}, &recHealth{}, opentracing.NoopTracer{}, zap.NewNop(), 0)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Start(context.Background())
	}()
	close(ch)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on closed events channel")
	}
}
