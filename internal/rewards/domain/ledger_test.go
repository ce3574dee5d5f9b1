package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRankFromCoinsThresholds(t *testing.T) {
	cases := map[int64]Rank{
		0:     RankNewcomer,
		99:    RankNewcomer,
		100:   RankExplorer,
		499:   RankExplorer,
		500:   RankContributor,
		1500:  RankExpert,
		4999:  RankExpert,
		5000:  RankChampion,
		15000: RankLegend,
		99999: RankLegend,
	}
	for coins, rank := range cases {
		if got := RankFromCoins(coins); got != rank {
			t.Fatalf("coins %d: expected %s, got %s", coins, rank, got)
		}
	}
}

func TestRankThresholdsStrictlyIncrease(t *testing.T) {
	ranks := Ranks()
	for i := 1; i < len(ranks); i++ {
		require.Greater(t, ranks[i].MinCoins(), ranks[i-1].MinCoins())
		next, ok := ranks[i-1].Next()
		require.True(t, ok)
		require.Equal(t, ranks[i], next)
	}
	_, ok := RankLegend.Next()
	require.False(t, ok)
}

func TestProgressToNext(t *testing.T) {
	require.Equal(t, 0.0, ProgressToNext(0))
	require.InDelta(t, 0.5, ProgressToNext(50), 1e-9)
	require.InDelta(t, 0.5, ProgressToNext(300), 1e-9)
	require.Equal(t, 1.0, ProgressToNext(20000))
}

func TestApplyKeepsRankDerivedFromCoins(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	for _, amount := range []int64{5, 30, 80, 400, -200, 1000, 9000, -9500} {
		previous, _ := r.Apply(amount)
		require.Equal(t, RankFromCoins(r.TotalCoins), r.Rank)
		require.NotEmpty(t, previous)
	}
}

func TestApplyMonthlyIgnoresSpend(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	r.Apply(120)
	r.Apply(-20)
	require.EqualValues(t, 100, r.TotalCoins)
	require.EqualValues(t, 120, r.CoinsThisMonth)
}

func TestApplyReportsRankChange(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	r.Apply(95)
	previous, _ := r.Apply(5)
	require.Equal(t, RankNewcomer, previous)
	require.Equal(t, RankExplorer, r.Rank)
}

func TestBadgesAreAppendOnly(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	_, badges := r.Apply(1000)
	require.Equal(t, []Badge{BadgeCoinCollector}, badges)

	_, badges = r.Apply(-900)
	require.Empty(t, badges)
	require.True(t, r.HasBadge(BadgeCoinCollector))

	_, badges = r.Apply(900)
	require.Empty(t, badges)
	require.Len(t, r.Badges, 1)
}

func TestEvaluateBadgesUsesDedicatedCounters(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	r.ContributionCount = 25
	require.Equal(t, []Badge{BadgeFirstSteps}, EvaluateBadges(r))

	r.PhotoCount = 10
	r.ReviewCount = 10
	r.FirstToChargerCount = 1
	r.ValidationCount = 250
	for i := 0; i < 5; i++ {
		r.AddCity(fmt.Sprintf("city-%d", i))
	}
	require.Equal(t, []Badge{
		BadgeFirstSteps,
		BadgePioneer,
		BadgeShutterbug,
		BadgeCritic,
		BadgeValidator,
		BadgeTrustedValidator,
		BadgeRoadTripper,
	}, EvaluateBadges(r))
}

func TestCheckInOncePerDay(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	require.NoError(t, r.CheckIn("2026-03-10"))
	require.ErrorIs(t, r.CheckIn("2026-03-10"), ErrAlreadyCheckedIn)
	require.NoError(t, r.CheckIn("2026-03-11"))
}

func TestRecordValidationDailyCap(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	for i := 0; i < DailyValidationLimit; i++ {
		require.NoError(t, r.RecordValidation("2026-03-10"))
	}
	require.ErrorIs(t, r.RecordValidation("2026-03-10"), ErrDailyLimitReached)
	require.True(t, IsRateLimited(ErrDailyLimitReached))
	require.Equal(t, DailyValidationLimit, r.DailyValidationCount)
	require.Equal(t, DailyValidationLimit, r.ValidationCount)

	require.NoError(t, r.RecordValidation("2026-03-11"))
	require.Equal(t, 1, r.DailyValidationCount)
	require.Equal(t, DailyValidationLimit+1, r.ValidationCount)
}

func TestRecordContributionSets(t *testing.T) {
	r := NewUserRewards("u1", testNow)
	award := ContributionAward{Kind: ContributionKindPhoto, ChargerID: "c1", CityName: "Pune", IsFirstToCharger: true}
	r.RecordContribution(award)
	r.RecordContribution(ContributionAward{Kind: ContributionKindReview, ChargerID: "c1", CityName: "Pune"})

	require.Equal(t, 2, r.ContributionCount)
	require.Equal(t, 1, r.PhotoCount)
	require.Equal(t, 1, r.ReviewCount)
	require.Equal(t, 1, r.FirstToChargerCount)
	require.Equal(t, []string{"c1"}, []string(r.ChargersContributed))
	require.Equal(t, []string{"Pune"}, []string(r.CitiesContributed))
}

func TestContributionAwardCoins(t *testing.T) {
	require.EqualValues(t, 80, ContributionAward{BaseCoins: 30, IsFirstToCharger: true}.Coins())
	require.EqualValues(t, 30, ContributionAward{BaseCoins: 30}.Coins())
}
