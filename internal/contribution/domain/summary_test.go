package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
)

func at(id int64, typ ContributionType, age time.Duration) Contribution {
	c := newContribution(typ, age)
	c.ID = snowflake.ID(id)
	return *c
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := BuildSummary("c1", nil, testNow)
	require.Equal(t, 0, summary.TotalContributions)
	require.Nil(t, summary.AverageRating)
	require.Nil(t, summary.LatestWaitTime)
	require.Nil(t, summary.CurrentStatus)
	require.Empty(t, summary.PlugStatuses)
	require.Empty(t, summary.RecentContributions)
}

func TestBuildSummaryAggregates(t *testing.T) {
	review1 := at(1, ContributionTypeReview, 5*time.Hour)
	review1.Rating = intPtr(4)
	review2 := at(2, ContributionTypeReview, 4*time.Hour)
	review2.Rating = intPtr(5)

	oldWait := at(3, ContributionTypeWaitTime, 3*time.Hour)
	oldWait.WaitMinutes = intPtr(40)
	newWait := at(4, ContributionTypeWaitTime, 30*time.Minute)
	newWait.WaitMinutes = intPtr(5)

	offline := ChargerStatusOffline
	status := at(5, ContributionTypeStatusUpdate, 3*time.Hour)
	status.Status = &offline

	validatedAt := testNow.Add(-time.Hour)
	plugOld := at(6, ContributionTypePlugCheck, 48*time.Hour)
	plugOld.PlugType = strPtr("CCS2")
	plugOld.PlugWorking = boolPtr(true)
	plugOld.ValidatedBy = []string{"u7", "u8"}
	plugNew := at(7, ContributionTypePlugCheck, 24*time.Hour)
	plugNew.PlugType = strPtr("CCS2")
	plugNew.PlugWorking = boolPtr(false)
	plugNew.LastValidatedAt = &validatedAt
	plugNew.ValidatedBy = []string{"u9"}

	photo := at(8, ContributionTypePhoto, 10*time.Hour)

	summary := BuildSummary("c1", []Contribution{review1, oldWait, plugOld, review2, status, newWait, plugNew, photo}, testNow)

	require.Equal(t, 8, summary.TotalContributions)
	require.Equal(t, 1, summary.TotalPhotos)
	require.NotNil(t, summary.AverageRating)
	require.InDelta(t, 4.5, *summary.AverageRating, 1e-9)

	require.NotNil(t, summary.LatestWaitTime)
	require.Equal(t, 5, summary.LatestWaitTime.Minutes)
	require.False(t, summary.LatestWaitTime.IsStale)

	require.NotNil(t, summary.CurrentStatus)
	require.Equal(t, ChargerStatusOffline, summary.CurrentStatus.Status)
	require.True(t, summary.CurrentStatus.IsStale)

	require.Len(t, summary.PlugStatuses, 1)
	plug := summary.PlugStatuses[0]
	require.Equal(t, "CCS2", plug.PlugType)
	require.False(t, plug.IsWorking)
	require.True(t, plug.LastVerifiedAt.Equal(validatedAt))
	require.Equal(t, 5, plug.VerificationCount)

	require.Len(t, summary.RecentContributions, 8)
	require.EqualValues(t, 4, summary.RecentContributions[0].ID)
	require.EqualValues(t, 6, summary.RecentContributions[7].ID)
}

func TestBuildSummaryCapsRecent(t *testing.T) {
	var all []Contribution
	for i := 1; i <= 15; i++ {
		all = append(all, at(int64(i), ContributionTypePhoto, time.Duration(i)*time.Minute))
	}
	summary := BuildSummary("c1", all, testNow)
	require.Equal(t, 15, summary.TotalContributions)
	require.Equal(t, 15, summary.TotalPhotos)
	require.Len(t, summary.RecentContributions, RecentContributionsLimit)
	require.EqualValues(t, 1, summary.RecentContributions[0].ID)
}
