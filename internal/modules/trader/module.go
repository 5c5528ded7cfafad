package trader

import (
	"math/rand"

	"paper_bot/internal/modules/config"
	marketService "paper_bot/internal/modules/market/service"
	strategyService "paper_bot/internal/modules/strategy/service"
	"paper_bot/internal/modules/trader/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module("trader",
		fx.Provide(
			service.NewLedger,
			func(cfg *config.Config, st *marketService.Store, eng *strategyService.Engine, led *service.Ledger, rnd *rand.Rand, log *zap.Logger) *service.Trader {
				return service.NewTrader(cfg.SpendCapUSD, st, eng, led, rnd, log)
			},
		),
	)
}
