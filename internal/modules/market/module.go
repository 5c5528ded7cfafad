package market

import (
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/market/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			func(cfg *config.Config) *service.Store {
				return service.NewStore(cfg.HistoryLimit)
			},
		),
	)
}
