package strategy

import (
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/strategy/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			func(cfg *config.Config) *service.Engine {
				return service.NewEngine(cfg.MAPeriods)
			},
		),
	)
}
