package runner

import (
	"paper_bot/internal/models"
	"paper_bot/internal/modules/config"
	healthService "paper_bot/internal/modules/health/service"
	marketService "paper_bot/internal/modules/market/service"
	traderService "paper_bot/internal/modules/trader/service"
	"paper_bot/internal/notify"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module собирает раннер. Запуск — из bootstrap, вместе со стримом.
func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(
				events chan models.StreamEvent,
				st *marketService.Store,
				tr *traderService.Trader,
				n notify.Notifier,
				hs *healthService.State,
				tracer opentracing.Tracer,
				cfg *config.Config,
				log *zap.Logger,
			) *Runner {
				return New(events, st, tr, n, hs, tracer, log, cfg.ReportEvery)
			},
		),
	)
}
