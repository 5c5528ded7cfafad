package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"paper_bot/internal/metrics"
	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// wsConn — срез методов *websocket.Conn, нужный клиенту.
// В тестах подменяется скриптованным соединением.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v any) error
	Close() error
}

type dialFunc func(ctx context.Context, url string) (wsConn, error)

func gorillaDial(ctx context.Context, url string) (wsConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type chanKind int

const (
	chanTicker chanKind = iota
	chanCandles
)

// subscription — куда роутить кадры данных по chanId текущей сессии.
type subscription struct {
	kind   chanKind
	symbol string
}

// Client держит одну WS-сессию паблик-стрима Bitfinex v2 и конвертирует
// кадры в канонические события. Авторизация не нужна.
type Client struct {
	cfg  *config.Config
	log  *zap.Logger
	out  chan<- models.StreamEvent
	dial dialFunc

	// минимальная пауза между попытками коннекта
	limiter *rate.Limiter

	http        *http.Client
	restLimiter *rate.Limiter

	mu    sync.Mutex
	chans map[int64]subscription
}

func NewClient(cfg *config.Config, log *zap.Logger, out chan models.StreamEvent) *Client {
	minDelay := cfg.ReconnectMinDelay
	if minDelay <= 0 {
		minDelay = 2 * time.Second
	}
	return &Client{
		cfg:         cfg,
		log:         log,
		out:         out,
		dial:        gorillaDial,
		limiter:     rate.NewLimiter(rate.Every(minDelay), 1),
		http:        &http.Client{Timeout: 10 * time.Second},
		restLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
		chans:       make(map[int64]subscription),
	}
}

// Run крутит вечный цикл: connect -> subscribe всех символов -> read до
// ошибки -> снова. Сам не завершается никогда, только по ctx.
func (c *Client) Run(ctx context.Context) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		c.emit(ctx, models.ConnStateChange{State: models.StateConnecting})
		metrics.WSConnectsTotal.Inc()

		conn, err := c.dial(ctx, c.cfg.WSURL)
		if err != nil {
			c.log.Warn("[WS] dial failed", zap.String("url", c.cfg.WSURL), zap.Error(err))
			c.emit(ctx, models.ConnStateChange{State: models.StateClosed, Err: err})
			continue
		}

		c.emit(ctx, models.ConnStateChange{State: models.StateOpen})

		// подписки заново на каждую сессию: у биржи про старые chanId
		// после реконнекта памяти нет
		if err := c.subscribeAll(conn); err != nil {
			c.log.Warn("[WS] subscribe failed", zap.Error(err))
			_ = conn.Close()
			c.emit(ctx, models.ConnStateChange{State: models.StateClosed, Err: err})
			continue
		}

		// будим ReadMessage при отмене ctx
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		err = c.readLoop(ctx, conn)
		close(done)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		c.log.Warn("[WS] session ended", zap.Error(err))
		c.emit(ctx, models.ConnStateChange{State: models.StateClosed, Err: err})
	}
}

type subscribeMsg struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Symbol  string `json:"symbol,omitempty"`
	Key     string `json:"key,omitempty"`
}

func (c *Client) subscribeAll(conn wsConn) error {
	c.mu.Lock()
	c.chans = make(map[int64]subscription)
	c.mu.Unlock()

	for _, sym := range c.cfg.Symbols {
		pair := "t" + sym
		if err := conn.WriteJSON(subscribeMsg{Event: "subscribe", Channel: "ticker", Symbol: pair}); err != nil {
			return errors.Wrapf(err, "subscribe ticker %s", sym)
		}
		if err := conn.WriteJSON(subscribeMsg{Event: "subscribe", Channel: "candles", Key: "trade:1m:" + pair}); err != nil {
			return errors.Wrapf(err, "subscribe candles %s", sym)
		}
	}
	c.log.Info("[WS] subscriptions sent", zap.Int("symbols", len(c.cfg.Symbols)))
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn wsConn) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.handleFrame(ctx, msg)
	}
}

func (c *Client) handleFrame(ctx context.Context, msg []byte) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return
	}
	// объекты — служебные события, массивы — данные
	if trimmed[0] == '{' {
		c.handleEvent(trimmed)
		return
	}
	c.handleData(ctx, trimmed)
}

type wireEvent struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	ChanID  int64  `json:"chanId"`
	Symbol  string `json:"symbol"`
	Pair    string `json:"pair"`
	Key     string `json:"key"`
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Version int    `json:"version"`
}

func (c *Client) handleEvent(msg []byte) {
	var ev wireEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		c.log.Warn("[WS] bad event frame", zap.ByteString("frame", msg), zap.Error(err))
		return
	}

	switch ev.Event {
	case "info":
		c.log.Info("[WS] info", zap.Int("version", ev.Version))
	case "subscribed":
		sub, ok := subscriptionFor(ev)
		if !ok {
			c.log.Warn("[WS] subscribed to unexpected channel", zap.String("channel", ev.Channel), zap.String("key", ev.Key))
			return
		}
		c.mu.Lock()
		c.chans[ev.ChanID] = sub
		c.mu.Unlock()
		c.log.Info("[WS] subscribed",
			zap.String("channel", ev.Channel),
			zap.String("symbol", sub.symbol),
			zap.Int64("chanId", ev.ChanID),
		)
	case "unsubscribed":
		c.mu.Lock()
		delete(c.chans, ev.ChanID)
		c.mu.Unlock()
	case "error":
		// не фатально: живём дальше, биржа часто ругается на лету
		c.log.Warn("[WS] error event", zap.Int("code", ev.Code), zap.String("msg", ev.Msg))
	}
}

func subscriptionFor(ev wireEvent) (subscription, bool) {
	switch ev.Channel {
	case "ticker":
		pair := ev.Pair
		if pair == "" {
			pair = ev.Symbol
		}
		if pair == "" {
			return subscription{}, false
		}
		return subscription{kind: chanTicker, symbol: CanonicalSymbol(pair)}, true
	case "candles":
		sym, ok := SymbolFromKey(ev.Key)
		if !ok {
			return subscription{}, false
		}
		return subscription{kind: chanCandles, symbol: sym}, true
	}
	return subscription{}, false
}

// handleData разбирает кадр [chanId, payload].
func (c *Client) handleData(ctx context.Context, msg []byte) {
	var parts []json.RawMessage
	if err := json.Unmarshal(msg, &parts); err != nil || len(parts) < 2 {
		c.log.Warn("[WS] bad data frame", zap.ByteString("frame", msg))
		return
	}

	var chanID int64
	if err := json.Unmarshal(parts[0], &chanID); err != nil {
		c.log.Warn("[WS] bad chanId", zap.ByteString("frame", msg))
		return
	}

	// heartbeat: [chanId,"hb"]
	var hb string
	if json.Unmarshal(parts[1], &hb) == nil && hb == "hb" {
		return
	}

	c.mu.Lock()
	sub, ok := c.chans[chanID]
	c.mu.Unlock()
	if !ok {
		c.log.Debug("[WS] frame for unknown chanId", zap.Int64("chanId", chanID))
		return
	}

	switch sub.kind {
	case chanTicker:
		c.handleTicker(ctx, sub.symbol, parts[1])
	case chanCandles:
		c.handleCandles(ctx, sub.symbol, parts[1])
	}
}

func (c *Client) handleTicker(ctx context.Context, symbol string, payload json.RawMessage) {
	var vals []float64
	if err := json.Unmarshal(payload, &vals); err != nil {
		c.log.Warn("[WS] bad ticker payload", zap.String("symbol", symbol), zap.Error(err))
		return
	}
	t, ok := tickerFromPayload(vals)
	if !ok {
		c.log.Warn("[WS] short ticker payload", zap.String("symbol", symbol), zap.Int("len", len(vals)))
		return
	}
	c.emit(ctx, models.TickerUpdate{Symbol: symbol, Ticker: t})
}

func (c *Client) handleCandles(ctx context.Context, symbol string, payload json.RawMessage) {
	rows, snapshot, err := candleRows(payload)
	if err != nil {
		c.log.Warn("[WS] bad candle payload", zap.String("symbol", symbol), zap.Error(err))
		return
	}

	candles, dropped := NormalizeCandles(rows, snapshot)
	if dropped > 0 {
		metrics.DroppedCandlesTotal.WithLabelValues("no_timestamp").Add(float64(dropped))
		c.log.Warn("[WS] dropped candles without timestamp", zap.String("symbol", symbol), zap.Int("dropped", dropped))
	}
	if len(candles) == 0 {
		// валидный, но пустой батч: логируем и не трогаем стор
		c.log.Info("[WS] empty candle batch discarded", zap.String("symbol", symbol))
		return
	}

	c.emit(ctx, models.CandleBatch{Symbol: symbol, Candles: candles})
}

// candleRows различает снапшот [[...],[...]] и одиночный апдейт [...].
func candleRows(payload json.RawMessage) ([][]float64, bool, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false, errors.Errorf("unexpected candle payload: %s", string(trimmed))
	}

	var probe []json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, false, err
	}
	if len(probe) == 0 {
		return nil, true, nil // пустой снапшот
	}

	if first := bytes.TrimSpace(probe[0]); len(first) > 0 && first[0] == '[' {
		var rows [][]float64
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, false, err
		}
		return rows, true, nil
	}

	var row []float64
	if err := json.Unmarshal(trimmed, &row); err != nil {
		return nil, false, err
	}
	return [][]float64{row}, false, nil
}

func (c *Client) emit(ctx context.Context, ev models.StreamEvent) {
	select {
	case c.out <- ev:
	case <-ctx.Done():
	}
}
