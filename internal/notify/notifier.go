package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"paper_bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
}

// Reporter — что Telegram показывает по командам /pnl и /orders.
type Reporter interface {
	PnL() float64
	Orders() []models.Order
}

// Telegram — пассивный нотифайер + две команды отчёта.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	rep    Reporter
	log    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewTelegram(token string, chatID int64, rep Reporter, log *zap.Logger) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID, rep: rep, log: log}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		t.log.Warn("[NOTIFY] telegram send failed", zap.Error(err))
	}
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

// Start поднимает long-polling команд. Реагируем только на свой чат.
func (t *Telegram) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(upd)
			}
		}
	}()
	return nil
}

func (t *Telegram) Stop() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()
}

func (t *Telegram) handleUpdate(upd tgbot.Update) {
	if upd.Message == nil || upd.Message.Chat == nil || upd.Message.Chat.ID != t.chatID {
		return
	}

	switch strings.TrimSpace(upd.Message.Text) {
	case "/pnl":
		t.Sendf("💰 PnL: %+.2f USD | ордеров: %d", t.rep.PnL(), len(t.rep.Orders()))
	case "/orders":
		t.Send(FormatOrders(t.rep.Orders(), 10))
	}
}

// FormatOrders — хвост журнала для Telegram, не больше last штук.
func FormatOrders(orders []models.Order, last int) string {
	if len(orders) == 0 {
		return "ордеров пока нет"
	}
	if last > 0 && len(orders) > last {
		orders = orders[len(orders)-last:]
	}

	var b strings.Builder
	b.WriteString("Последние ордера:\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "%s  %s %s @ %.2f × %.8f\n",
			o.CreatedAt.Format("15:04:05"), o.Side, o.Symbol, o.Price, o.Amount)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Stdout — заглушка: всё просто пишет в лог.
type Stdout struct{ log *zap.Logger }

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) Send(msg string) { s.log.Info("[NOTIFY] " + msg) }

func (s *Stdout) Sendf(format string, args ...any) {
	s.log.Info("[NOTIFY] " + fmt.Sprintf(format, args...))
}
