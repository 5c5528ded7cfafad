package tracing

import (
	"fmt"

	"github.com/opentracing/opentracing-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

type Config struct {
	Enabled bool
	Host    string
	Port    int
}

// InitTracer поднимает Jaeger-трейсер. Имя сервиса приходит аргументом
// при инстанцировании, а не через пакетную переменную. При выключенном
// конфиге возвращаем noop, чтобы раннер не проверял трейсер на каждом батче.
func InitTracer(conf Config, serviceName string) (opentracing.Tracer, func() error, error) {
	if !conf.Enabled {
		return opentracing.NoopTracer{}, func() error { return nil }, nil
	}

	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	jMetricsFactory := metrics.NullFactory
	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, closer.Close, nil
}
