package contribution

import (
	"github.com/smallbiznis/voltway/internal/contribution/repository"
	"github.com/smallbiznis/voltway/internal/contribution/service"
	"go.uber.org/fx"
)

var Module = fx.Module("contribution.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
