package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/smallbiznis/voltway/internal/clock"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	"github.com/smallbiznis/voltway/internal/events"
	"github.com/smallbiznis/voltway/internal/keylock"
	"github.com/smallbiznis/voltway/internal/observability/logger"
	"github.com/smallbiznis/voltway/internal/observability/metrics"
	"github.com/smallbiznis/voltway/internal/observability/tracing"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultConcurrency = 4

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	clock            clock.Clock
	locks            *keylock.Locker
	repo             reliabilitydomain.Repository
	contributionRepo contributiondomain.Repository
	outbox           *events.Outbox
	metrics          *metrics.EngineMetrics
}

type ServiceParam struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	Clock            clock.Clock
	Locks            *keylock.Locker
	Repo             reliabilitydomain.Repository
	ContributionRepo contributiondomain.Repository
	Outbox           *events.Outbox
	Metrics          *metrics.EngineMetrics `optional:"true"`
}

func NewService(p ServiceParam) reliabilitydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("reliability.service"),

		clock:            p.Clock,
		locks:            p.Locks,
		repo:             p.Repo,
		contributionRepo: p.ContributionRepo,
		outbox:           p.Outbox,
		metrics:          p.Metrics,
	}
}

func (s *Service) Get(ctx context.Context, chargerID string) (*reliabilitydomain.ReliabilityScore, error) {
	chargerID = strings.TrimSpace(chargerID)
	if chargerID == "" {
		return nil, reliabilitydomain.ErrInvalidCharger
	}
	score, err := s.repo.FindByChargerID(ctx, s.db, chargerID)
	if err != nil {
		return nil, err
	}
	if score != nil {
		return score, nil
	}

	count, err := s.contributionRepo.CountByCharger(ctx, s.db, chargerID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		// nothing reported yet; the zero vector is not stored
		score := reliabilitydomain.Aggregate(chargerID, nil, s.clock.Now().UTC())
		return &score, nil
	}
	return s.Recompute(ctx, chargerID, reliabilitydomain.TriggerRead)
}

func (s *Service) Recompute(ctx context.Context, chargerID, trigger string) (*reliabilitydomain.ReliabilityScore, error) {
	chargerID = strings.TrimSpace(chargerID)
	if chargerID == "" {
		return nil, reliabilitydomain.ErrInvalidCharger
	}
	release, err := s.locks.Lock(ctx, keylock.ChargerKey(chargerID))
	if err != nil {
		return nil, err
	}
	defer release()

	var score *reliabilitydomain.ReliabilityScore
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		score, txErr = s.RecomputeTx(ctx, tx, chargerID, trigger)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return score, nil
}

func (s *Service) RecomputeTx(ctx context.Context, tx *gorm.DB, chargerID, trigger string) (*reliabilitydomain.ReliabilityScore, error) {
	ctx, span := tracing.Start(ctx, "reliability.recompute",
		tracing.ChargerID(chargerID),
		tracing.Trigger(trigger),
	)
	score, err := s.recompute(ctx, tx, chargerID, trigger)
	s.metrics.IncReliability(trigger, err)
	tracing.End(span, err)
	return score, err
}

func (s *Service) recompute(ctx context.Context, tx *gorm.DB, chargerID, trigger string) (*reliabilitydomain.ReliabilityScore, error) {
	contributions, err := s.contributionRepo.ListByCharger(ctx, tx, chargerID)
	if err != nil {
		return nil, err
	}
	score := reliabilitydomain.Aggregate(chargerID, contributions, s.clock.Now().UTC())
	if err := s.repo.Upsert(ctx, tx, &score); err != nil {
		return nil, err
	}
	if err := s.outbox.PublishTx(ctx, tx, events.Event{
		Type:    events.EventReliabilityUpdated,
		Subject: chargerID,
		Payload: events.ReliabilityPayload{
			ChargerID:  chargerID,
			TotalScore: score.TotalScore,
			TrustBadge: string(score.TrustBadge),
			Trigger:    trigger,
		}.ToMap(),
	}); err != nil {
		return nil, err
	}
	return &score, nil
}

// RecomputeAll refreshes every station with at most concurrency stations in
// flight. A failing station is logged and counted; only cancellation aborts
// the batch.
func (s *Service) RecomputeAll(ctx context.Context, concurrency int) (reliabilitydomain.BatchResult, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	started := time.Now()
	log := logger.With(ctx, s.log)

	chargerIDs, err := s.contributionRepo.ListChargerIDs(ctx, s.db)
	if err != nil {
		return reliabilitydomain.BatchResult{}, err
	}

	var failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for _, chargerID := range chargerIDs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if _, err := s.Recompute(groupCtx, chargerID, reliabilitydomain.TriggerBatch); err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				failed.Add(1)
				log.Warn("reliability recompute failed", zap.String("charger_id", chargerID), zap.Error(err))
			}
			return nil
		})
	}
	err = group.Wait()

	result := reliabilitydomain.BatchResult{
		Stations: len(chargerIDs),
		Failed:   int(failed.Load()),
	}
	s.metrics.ObserveBatch(time.Since(started), result.Stations)
	log.Info("reliability batch finished",
		zap.Int("stations", result.Stations),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(started)),
	)
	return result, err
}
