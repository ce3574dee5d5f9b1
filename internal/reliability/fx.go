package reliability

import (
	"github.com/smallbiznis/voltway/internal/reliability/job"
	"github.com/smallbiznis/voltway/internal/reliability/repository"
	"github.com/smallbiznis/voltway/internal/reliability/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reliability.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	job.Module,
)
