package job

import (
	"context"
	"time"

	"github.com/smallbiznis/voltway/internal/clock"
	"github.com/smallbiznis/voltway/internal/config"
	"github.com/smallbiznis/voltway/internal/events"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultInterval = time.Minute

// Config controls the monthly reset loop.
type Config struct {
	Enabled  bool
	Interval time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		Enabled:  cfg.MonthlyResetJob.Enabled,
		Interval: cfg.MonthlyResetJob.Interval,
	}
}

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Service rewardsdomain.Service
	Outbox  *events.Outbox
	Config  Config `optional:"true"`
}

// Worker resets monthly balances once per calendar month. The per-month
// dedupe key is inserted in the reset's own transaction, so restarts and
// multiple replicas do not reset twice.
type Worker struct {
	log     *zap.Logger
	clock   clock.Clock
	service rewardsdomain.Service
	outbox  *events.Outbox
	cfg     Config
}

func NewWorker(p Params) *Worker {
	cfg := p.Config
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &Worker{
		log:     p.Log.Named("rewards.monthly_reset"),
		clock:   p.Clock,
		service: p.Service,
		outbox:  p.Outbox,
		cfg:     cfg,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn("monthly reset failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce resets balances when the calendar month has moved past the last
// recorded reset and reports whether it did. The first run on an empty outbox
// only records the current month, so balances earned before the worker was
// enabled survive.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	month := clock.MonthOf(w.clock.Now(), w.clock.Location())

	last, found, err := w.outbox.LatestSubject(ctx, events.EventMonthlyReset)
	if err != nil {
		return false, err
	}
	if !found {
		w.log.Info("monthly reset baseline recorded", zap.String("month", month))
		return false, w.outbox.Publish(ctx, events.Event{
			Type:      events.EventMonthlyReset,
			Subject:   month,
			Payload:   map[string]any{"month": month, "baseline": true},
			DedupeKey: events.MonthlyResetKey(month),
		})
	}
	if month <= last {
		return false, nil
	}

	reset, ran, err := w.service.ResetMonth(ctx, month)
	if err != nil || !ran {
		return false, err
	}
	w.log.Info("monthly coins reset",
		zap.String("month", month),
		zap.String("previous", last),
		zap.Int64("users_reset", reset),
	)
	return true, nil
}
