package main

import (
	"context"
	"math/rand"
	"time"

	"paper_bot/internal/modules/bitfinex_websocket"
	"paper_bot/internal/modules/bootstrap"
	"paper_bot/internal/modules/config"
	"paper_bot/internal/modules/health"
	"paper_bot/internal/modules/market"
	"paper_bot/internal/modules/strategy"
	"paper_bot/internal/modules/trader"
	traderService "paper_bot/internal/modules/trader/service"
	"paper_bot/internal/notify"
	"paper_bot/internal/runner"
	"paper_bot/pkg/logger"
	"paper_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "paper_bot"

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			func(cfg *config.Config) (*zap.Logger, error) {
				return logger.New(serviceName, cfg.LogLevel)
			},
			// сид из часов; в тестах подставляется фиксированный
			func() *rand.Rand {
				return rand.New(rand.NewSource(time.Now().UnixNano()))
			},
			// Notifier: если TELEGRAM_* нет — используем stdout
			func(cfg *config.Config, tr *traderService.Trader, log *zap.Logger) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, tr, log)
					if err == nil {
						return tg
					}
					log.Warn("[BOOT] telegram init failed, falling back to stdout", zap.Error(err))
				}
				return notify.NewStdout(log)
			},
			func(cfg *config.Config, lc fx.Lifecycle) (opentracing.Tracer, error) {
				tracer, closeTracer, err := tracing.InitTracer(tracing.Config{
					Enabled: cfg.Jaeger.Enabled,
					Host:    cfg.Jaeger.Host,
					Port:    cfg.Jaeger.Port,
				}, serviceName)
				if err != nil {
					return nil, err
				}
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error { return closeTracer() },
				})
				return tracer, nil
			},
		),
		config.Module(),
		market.Module(),
		strategy.Module(),
		bitfinex_websocket.Module(),
		trader.Module(),
		runner.Module(),
		bootstrap.Module(),
		health.Module(),
		fx.Invoke(func(lc fx.Lifecycle, appCtx context.Context, n notify.Notifier, log *zap.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					if tg, ok := n.(*notify.Telegram); ok {
						return tg.Start(appCtx)
					}
					return nil
				},
				OnStop: func(context.Context) error {
					if tg, ok := n.(*notify.Telegram); ok {
						tg.Stop()
					}
					_ = log.Sync()
					return nil
				},
			})
		}),
	)
	app.Run()
}
