package observability

import (
	"github.com/smallbiznis/voltway/internal/observability/logger"
	"github.com/smallbiznis/voltway/internal/observability/metrics"
	"github.com/smallbiznis/voltway/internal/observability/tracing"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	tracing.Module,
	metrics.Module,
)
