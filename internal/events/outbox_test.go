package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltway/internal/events"
	"github.com/smallbiznis/voltway/pkg/db/dbtest"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPublishDedupes(t *testing.T) {
	db := dbtest.Open(t)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	outbox := events.NewOutbox(db, node)
	ctx := context.Background()

	event := events.Event{
		Type:      events.EventBadgeEarned,
		Subject:   "u1",
		Payload:   events.ProgressPayload{UserID: "u1", Badge: "PIONEER"}.ToMap(),
		DedupeKey: "badge:u1:PIONEER",
	}
	require.NoError(t, outbox.Publish(ctx, event))
	require.NoError(t, outbox.Publish(ctx, event))

	// events without a dedupe key are always stored
	event.DedupeKey = ""
	require.NoError(t, outbox.Publish(ctx, event))
	require.NoError(t, outbox.Publish(ctx, event))

	var rows []events.RewardEvent
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 3)
	require.Equal(t, "PIONEER", rows[0].Payload["badge"])
	require.False(t, rows[0].Published)
}

func TestClaimTxAndLatestSubject(t *testing.T) {
	db := dbtest.Open(t)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	outbox := events.NewOutbox(db, node)
	ctx := context.Background()

	_, found, err := outbox.LatestSubject(ctx, events.EventMonthlyReset)
	require.NoError(t, err)
	require.False(t, found)

	claim := func(month string) bool {
		var ok bool
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			var err error
			ok, err = outbox.ClaimTx(ctx, tx, events.Event{
				Type:      events.EventMonthlyReset,
				Subject:   month,
				DedupeKey: events.MonthlyResetKey(month),
			})
			return err
		}))
		return ok
	}
	require.True(t, claim("2026-02"))
	require.False(t, claim("2026-02"))
	require.True(t, claim("2026-10"))

	last, found, err := outbox.LatestSubject(ctx, events.EventMonthlyReset)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2026-10", last)

	// a claim rolled back with its transaction is not kept
	rollback := errors.New("rollback")
	err = db.Transaction(func(tx *gorm.DB) error {
		ok, err := outbox.ClaimTx(ctx, tx, events.Event{
			Type:      events.EventMonthlyReset,
			Subject:   "2026-11",
			DedupeKey: events.MonthlyResetKey("2026-11"),
		})
		require.NoError(t, err)
		require.True(t, ok)
		return rollback
	})
	require.ErrorIs(t, err, rollback)
	require.True(t, claim("2026-11"))

	_, err = outbox.ClaimTx(ctx, db, events.Event{Type: "x", Subject: "u1"})
	require.ErrorIs(t, err, events.ErrMissingDedupeKey)
}

func TestPublishValidates(t *testing.T) {
	db := dbtest.Open(t)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	outbox := events.NewOutbox(db, node)

	require.ErrorIs(t, outbox.Publish(context.Background(), events.Event{Type: "x"}), events.ErrMissingSubject)
	require.ErrorIs(t, outbox.Publish(context.Background(), events.Event{Subject: "u1"}), events.ErrMissingType)
	require.ErrorIs(t, outbox.PublishTx(context.Background(), nil, events.Event{Type: "x", Subject: "u1"}), events.ErrMissingTx)
}

func TestPendingAndMarkPublished(t *testing.T) {
	db := dbtest.Open(t)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	outbox := events.NewOutbox(db, node)
	ctx := context.Background()

	for _, subject := range []string{"u1", "u2", "u3"} {
		require.NoError(t, outbox.Publish(ctx, events.Event{Type: events.EventCoinsAwarded, Subject: subject}))
	}

	pending, err := outbox.Pending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "u1", pending[0].Subject)

	n, err := outbox.MarkPublished(ctx, pending[0].ID, pending[1].ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	n, err = outbox.MarkPublished(ctx, pending[0].ID)
	require.NoError(t, err)
	require.Zero(t, n)

	pending, err = outbox.Pending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "u3", pending[0].Subject)
}
