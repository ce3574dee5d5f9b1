package leaderboard

import (
	leaderboarddomain "github.com/smallbiznis/voltway/internal/leaderboard/domain"
	"github.com/smallbiznis/voltway/internal/leaderboard/service"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("leaderboard.service",
	fx.Provide(service.NewService),
	fx.Provide(func(s *service.Service) leaderboarddomain.Service { return s }),
	fx.Provide(func(s *service.Service) rewardsdomain.Listener { return s }),
)
