package metrics

import (
	"github.com/smallbiznis/voltway/internal/config"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(func(cfg config.Config) Config {
		return Config{ServiceName: cfg.AppName, Environment: cfg.Environment}
	}),
	fx.Provide(EngineWithConfig),
	fx.Provide(func(cfg Config) (*HTTPMetrics, error) {
		return NewHTTPMetrics(cfg, otel.GetMeterProvider())
	}),
)
