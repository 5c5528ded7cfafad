package bootstrap

import (
	"context"

	"paper_bot/internal/models"
	bitfinexService "paper_bot/internal/modules/bitfinex_websocket/service"
	"paper_bot/internal/modules/bootstrap/service"
	"paper_bot/internal/modules/config"
	"paper_bot/internal/notify"
	"paper_bot/internal/runner"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module поднимает всё в правильном порядке: раннер первым, потом
// REST-прогрев, и только после него — живой стрим.
func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			func(c *bitfinexService.Client, out chan models.StreamEvent, log *zap.Logger) *service.Warmuper {
				return service.NewWarmuper(c, out, log)
			},
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			appCtx context.Context,
			cfg *config.Config,
			r *runner.Runner,
			w *service.Warmuper,
			c *bitfinexService.Client,
			n notify.Notifier,
			log *zap.Logger,
		) {
			runCtx, cancel := context.WithCancel(appCtx)

			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go r.Start(runCtx)
					go func() {
						w.Warmup(runCtx, cfg.Symbols, cfg.WarmupCandles)
						c.Run(runCtx)
					}()
					log.Info("[BOOT] paper engine started", zap.Strings("symbols", cfg.Symbols))
					n.Sendf("🚀 Паперный движок запущен: %d символов", len(cfg.Symbols))
					return nil
				},
				OnStop: func(context.Context) error {
					log.Info("[BOOT] stopping")
					cancel()
					return nil
				},
			})
		}),
	)
}
