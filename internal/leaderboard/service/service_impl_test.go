package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/voltway/internal/config"
	leaderboarddomain "github.com/smallbiznis/voltway/internal/leaderboard/domain"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	rewardsrepository "github.com/smallbiznis/voltway/internal/rewards/repository"
	"github.com/smallbiznis/voltway/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB, repo rewardsdomain.Repository, userID string, total, month int64) {
	t.Helper()
	r := rewardsdomain.NewUserRewards(userID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	r.TotalCoins = total
	r.CoinsThisMonth = month
	r.Rank = rewardsdomain.RankFromCoins(total)
	require.NoError(t, repo.Save(context.Background(), db, r))
}

func TestTopAndRankByPeriod(t *testing.T) {
	db := dbtest.Open(t)
	repo := rewardsrepository.Provide()
	svc := NewService(ServiceParam{DB: db, Log: zap.NewNop(), Repo: repo})

	seed(t, db, repo, "alice", 900, 10)
	seed(t, db, repo, "bob", 300, 200)
	seed(t, db, repo, "carol", 600, 50)

	top, err := svc.Top(context.Background(), leaderboarddomain.PeriodAllTime, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "alice", top[0].UserID)
	require.Equal(t, "carol", top[1].UserID)

	pos, err := svc.RankOf(context.Background(), leaderboarddomain.PeriodMonthly, "bob")
	require.NoError(t, err)
	require.Equal(t, 1, pos)

	_, err = svc.RankOf(context.Background(), leaderboarddomain.PeriodAllTime, "dave")
	require.ErrorIs(t, err, leaderboarddomain.ErrNotRanked)

	_, err = svc.RankOf(context.Background(), leaderboarddomain.PeriodAllTime, " ")
	require.ErrorIs(t, err, leaderboarddomain.ErrInvalidUser)
}

func TestRewardsChangedPurgesCachedSnapshot(t *testing.T) {
	db := dbtest.Open(t)
	repo := rewardsrepository.Provide()
	svc := NewService(ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		Config: config.Config{LeaderboardCacheTTL: time.Hour},
		Repo:   repo,
	})

	seed(t, db, repo, "alice", 100, 100)
	top, err := svc.Top(context.Background(), leaderboarddomain.PeriodAllTime, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)

	seed(t, db, repo, "bob", 500, 500)
	top, err = svc.Top(context.Background(), leaderboarddomain.PeriodAllTime, 10)
	require.NoError(t, err)
	require.Len(t, top, 1, "snapshot should be served from cache")

	svc.RewardsChanged("bob")
	top, err = svc.Top(context.Background(), leaderboarddomain.PeriodAllTime, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "bob", top[0].UserID)
}
