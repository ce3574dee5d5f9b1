package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltway/internal/clock"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	contributionrepository "github.com/smallbiznis/voltway/internal/contribution/repository"
	"github.com/smallbiznis/voltway/internal/events"
	"github.com/smallbiznis/voltway/internal/keylock"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	"github.com/smallbiznis/voltway/internal/reliability/repository"
	"github.com/smallbiznis/voltway/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *clock.Fixed, reliabilitydomain.Service) {
	t.Helper()
	db := dbtest.Open(t)
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	clk := clock.NewFixed(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := NewService(ServiceParam{
		DB:               db,
		Log:              zap.NewNop(),
		Clock:            clk,
		Locks:            keylock.New(),
		Repo:             repository.Provide(),
		ContributionRepo: contributionrepository.Provide(),
		Outbox:           events.NewOutbox(db, node),
	})
	return db, clk, svc
}

func insertPhoto(t *testing.T, db *gorm.DB, id int64, chargerID string, ts time.Time) {
	t.Helper()
	url := "https://cdn.example/p.jpg"
	c := contributiondomain.Contribution{
		ID:        snowflake.ID(id),
		ChargerID: chargerID,
		UserID:    fmt.Sprintf("u%d", id),
		Type:      contributiondomain.ContributionTypePhoto,
		PhotoURL:  &url,
		Timestamp: ts,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("insert contribution: %v", err)
	}
}

func TestGetStationWithoutReportsIsZero(t *testing.T) {
	db, _, svc := setup(t)
	score, err := svc.Get(context.Background(), "nowhere")
	require.NoError(t, err)
	require.Equal(t, "nowhere", score.ChargerID)
	require.Zero(t, score.TotalScore)
	require.Zero(t, score.StarRating)
	require.Equal(t, reliabilitydomain.TrustBadgeNeedsData, score.TrustBadge)

	var stored int64
	require.NoError(t, db.Model(&reliabilitydomain.ReliabilityScore{}).Count(&stored).Error)
	require.Zero(t, stored)

	_, err = svc.Get(context.Background(), " ")
	require.ErrorIs(t, err, reliabilitydomain.ErrInvalidCharger)
}

func TestRecomputePublishesUnroundedTotal(t *testing.T) {
	db, clk, svc := setup(t)
	url := "https://cdn.example/p.jpg"
	now := clk.Now()
	require.NoError(t, db.Create(&contributiondomain.Contribution{
		ID:              snowflake.ID(77),
		ChargerID:       "c9",
		UserID:          "u77",
		Type:            contributiondomain.ContributionTypePhoto,
		PhotoURL:        &url,
		ConfidenceScore: 0.4567,
		Timestamp:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}).Error)

	score, err := svc.Recompute(context.Background(), "c9", reliabilitydomain.TriggerBatch)
	require.NoError(t, err)
	require.InDelta(t, 17.134, score.TotalScore, 1e-9)

	var row events.RewardEvent
	require.NoError(t, db.Where("event_type = ?", events.EventReliabilityUpdated).First(&row).Error)
	require.InDelta(t, score.TotalScore, row.Payload["total_score"], 1e-9)
}

func TestGetComputesOnFirstRead(t *testing.T) {
	db, clk, svc := setup(t)
	insertPhoto(t, db, 1, "c1", clk.Now())

	score, err := svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.InDelta(t, 4.0, score.PhotoScore, 1e-9)
	require.InDelta(t, 4.0, score.FreshnessScore, 1e-9)
	require.InDelta(t, 8.0, score.TotalScore, 1e-9)
	require.Equal(t, reliabilitydomain.TrustBadgeNeedsData, score.TrustBadge)
}

func TestRecomputeAllRefreshesEveryStation(t *testing.T) {
	db, clk, svc := setup(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		insertPhoto(t, db, int64(10+i), "c1", clk.Now())
	}
	insertPhoto(t, db, 20, "c2", clk.Now())

	result, err := svc.RecomputeAll(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 2, result.Stations)
	require.Equal(t, 0, result.Failed)

	first, err := svc.Get(ctx, "c1")
	require.NoError(t, err)
	require.InDelta(t, 40.0, first.TotalScore, 1e-9)

	// freshness lapses after a week; the batch picks it up
	clk.Advance(8 * 24 * time.Hour)
	_, err = svc.RecomputeAll(ctx, 2)
	require.NoError(t, err)

	first, err = svc.Get(ctx, "c1")
	require.NoError(t, err)
	require.InDelta(t, 20.0, first.TotalScore, 1e-9)
	require.Equal(t, 1, first.StarRating)
}

func TestRecomputeAllStopsOnCancel(t *testing.T) {
	db, clk, svc := setup(t)
	insertPhoto(t, db, 1, "c1", clk.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.RecomputeAll(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}
