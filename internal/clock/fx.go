package clock

import (
	"github.com/smallbiznis/voltway/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("clock",
	fx.Provide(func(cfg config.Config) Clock {
		return SystemClock{Loc: cfg.DayBoundaryLocation()}
	}),
)
