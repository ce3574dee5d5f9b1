package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/voltway/internal/cache"
	"github.com/smallbiznis/voltway/internal/config"
	leaderboarddomain "github.com/smallbiznis/voltway/internal/leaderboard/domain"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service serves rankings from a sorted snapshot cached per period. Any
// committed ledger change purges the cache.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	repo  rewardsdomain.Repository
	cache cache.Cache[leaderboarddomain.Period, []rewardsdomain.UserRewards]
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Config config.Config
	Repo   rewardsdomain.Repository
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("leaderboard.service"),
		repo:  p.Repo,
		cache: cache.New[leaderboarddomain.Period, []rewardsdomain.UserRewards](p.Config.LeaderboardCacheTTL),
	}
}

func (s *Service) Top(ctx context.Context, period leaderboarddomain.Period, limit int) ([]leaderboarddomain.Entry, error) {
	sorted, err := s.snapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	return leaderboarddomain.Top(sorted, limit), nil
}

func (s *Service) RankOf(ctx context.Context, period leaderboarddomain.Period, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, leaderboarddomain.ErrInvalidUser
	}
	sorted, err := s.snapshot(ctx, period)
	if err != nil {
		return 0, err
	}
	position, ok := leaderboarddomain.RankOf(sorted, userID)
	if !ok {
		return 0, leaderboarddomain.ErrNotRanked
	}
	return position, nil
}

// RewardsChanged drops cached rankings.
func (s *Service) RewardsChanged(userIDs ...string) {
	s.cache.Purge()
	s.log.Debug("leaderboard cache purged", zap.Int("users", len(userIDs)))
}

func (s *Service) snapshot(ctx context.Context, period leaderboarddomain.Period) ([]rewardsdomain.UserRewards, error) {
	if period == "" {
		period = leaderboarddomain.PeriodAllTime
	}
	return s.cache.GetOrLoad(period, func() ([]rewardsdomain.UserRewards, error) {
		all, err := s.repo.ListAll(ctx, s.db)
		if err != nil {
			return nil, err
		}
		return leaderboarddomain.Sort(all, period), nil
	})
}
