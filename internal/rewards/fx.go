package rewards

import (
	"github.com/smallbiznis/voltway/internal/rewards/job"
	"github.com/smallbiznis/voltway/internal/rewards/repository"
	"github.com/smallbiznis/voltway/internal/rewards/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rewards.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	job.Module,
)
