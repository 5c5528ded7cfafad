package models

// События стрима. Адаптер шлёт их в один канал, чтобы раннер видел
// кадры в том же порядке, в каком они пришли с биржи.
type StreamEvent interface{ streamEvent() }

// TickerUpdate — нормализованный тикер: символ канонический,
// bid/ask как пришли с wire.
type TickerUpdate struct {
	Symbol string
	Ticker Ticker
}

// CandleBatch — свечи одного символа, oldest-first.
type CandleBatch struct {
	Symbol  string
	Candles []Candle
}

// ConnState — состояние WS-сессии.
type ConnState int

const (
	StateClosed ConnState = iota
	StateConnecting
	StateOpen
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// ConnStateChange — смена состояния соединения. Переподключается адаптер
// сам, раннеру событие нужно только для health и логов.
type ConnStateChange struct {
	State ConnState
	Err   error // причина обрыва, если была
}

func (TickerUpdate) streamEvent()    {}
func (CandleBatch) streamEvent()     {}
func (ConnStateChange) streamEvent() {}
