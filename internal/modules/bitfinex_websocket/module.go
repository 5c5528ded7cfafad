package bitfinex_websocket

import (
	"paper_bot/internal/models"
	"paper_bot/internal/modules/bitfinex_websocket/service"

	"go.uber.org/fx"
)

// Module поднимает стример Bitfinex. Сам клиент стартует из bootstrap —
// после REST-прогрева, чтобы живые свечи ложились поверх истории.
func Module() fx.Option {
	return fx.Module("bitfinex_websocket",
		fx.Provide(
			service.NewClient,
			func() chan models.StreamEvent {
				// общий буфер событий стрима
				return make(chan models.StreamEvent, 1024)
			},
		),
	)
}
