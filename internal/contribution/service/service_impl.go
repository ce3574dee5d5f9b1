package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltway/internal/clock"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	"github.com/smallbiznis/voltway/internal/events"
	"github.com/smallbiznis/voltway/internal/keylock"
	"github.com/smallbiznis/voltway/internal/observability/logger"
	"github.com/smallbiznis/voltway/internal/observability/metrics"
	"github.com/smallbiznis/voltway/internal/observability/tracing"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	locks       *keylock.Locker
	repo        contributiondomain.Repository
	rewards     rewardsdomain.Service
	reliability reliabilitydomain.Service
	outbox      *events.Outbox
	metrics     *metrics.EngineMetrics
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Locks       *keylock.Locker
	Repo        contributiondomain.Repository
	Rewards     rewardsdomain.Service
	Reliability reliabilitydomain.Service
	Outbox      *events.Outbox
	Metrics     *metrics.EngineMetrics `optional:"true"`
}

func NewService(p ServiceParam) contributiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("contribution.service"),

		genID:       p.GenID,
		clock:       p.Clock,
		locks:       p.Locks,
		repo:        p.Repo,
		rewards:     p.Rewards,
		reliability: p.Reliability,
		outbox:      p.Outbox,
		metrics:     p.Metrics,
	}
}

// Create stores a contribution, credits its author and refreshes the
// station's reliability in one transaction.
func (s *Service) Create(ctx context.Context, req contributiondomain.CreateRequest) (*contributiondomain.CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx, span := tracing.Start(ctx, "contribution.create",
		tracing.ChargerID(req.ChargerID),
		tracing.KeyContributionType.String(string(req.Type)),
	)

	release, err := s.locks.LockAll(ctx, keylock.ChargerKey(req.ChargerID), keylock.UserKey(req.UserID))
	if err != nil {
		tracing.End(span, err)
		return nil, err
	}
	defer release()

	result := &contributiondomain.CreateResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.CountByCharger(ctx, tx, req.ChargerID)
		if err != nil {
			return err
		}
		result.FirstToCharger = existing == 0

		c := req.ToContribution(s.genID.Generate(), s.clock.Now().UTC())
		if err := s.repo.Insert(ctx, tx, c); err != nil {
			return err
		}
		result.Contribution = c

		city := ""
		if c.CityName != nil {
			city = *c.CityName
		}
		result.Reward, err = s.rewards.AwardForContributionTx(ctx, tx, rewardsdomain.ContributionAward{
			UserID:           c.UserID,
			ContributionID:   c.ID,
			Kind:             string(c.Type),
			BaseCoins:        c.Type.EVCoinsReward(),
			ChargerID:        c.ChargerID,
			ChargerName:      c.ChargerName,
			CityName:         city,
			IsFirstToCharger: result.FirstToCharger,
		})
		if err != nil {
			return err
		}

		if _, err := s.reliability.RecomputeTx(ctx, tx, c.ChargerID, reliabilitydomain.TriggerContribution); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:    events.EventContributionCreated,
			Subject: c.ChargerID,
			Payload: events.ContributionPayload{
				ContributionID: c.ID.String(),
				ChargerID:      c.ChargerID,
				UserID:         c.UserID,
				Type:           string(c.Type),
			}.ToMap(),
			DedupeKey: "contribution:" + c.ID.String(),
		})
	})
	if err != nil {
		logger.With(ctx, s.log).Warn("create contribution failed",
			zap.String("charger_id", req.ChargerID),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		tracing.End(span, err)
		return nil, err
	}

	s.rewards.Committed(result.Reward)
	s.metrics.IncContribution(string(result.Contribution.Type))
	tracing.End(span, nil)
	return result, nil
}

// Vote applies a validate or invalidate vote. Coins go to the voter on their
// first vote on a contribution only, so flipping a vote never pays twice. A
// first vote over the daily cap fails with ErrDailyLimitReached and leaves
// the contribution untouched.
func (s *Service) Vote(ctx context.Context, req contributiondomain.VoteRequest) (*contributiondomain.VoteResult, error) {
	id, err := contributiondomain.ParseID(req.ContributionID)
	if err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, contributiondomain.ErrInvalidUser
	}
	if !req.Direction.Valid() {
		return nil, contributiondomain.ErrInvalidVoteDirection
	}

	ctx, span := tracing.Start(ctx, "contribution.vote",
		tracing.ContributionID(id.String()),
		tracing.KeyVoteDirection.String(string(req.Direction)),
	)

	// the charger id never changes, so it is safe to read before locking
	current, err := s.repo.FindByID(ctx, s.db, id, false)
	if err != nil {
		tracing.End(span, err)
		return nil, err
	}
	if current == nil {
		tracing.End(span, contributiondomain.ErrContributionNotFound)
		return nil, contributiondomain.ErrContributionNotFound
	}

	release, err := s.locks.LockAll(ctx, keylock.ChargerKey(current.ChargerID), keylock.UserKey(userID))
	if err != nil {
		tracing.End(span, err)
		return nil, err
	}
	defer release()

	result := &contributiondomain.VoteResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.repo.FindByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if c == nil {
			return contributiondomain.ErrContributionNotFound
		}

		now := s.clock.Now().UTC()
		previous, err := contributiondomain.CastVote(c, userID, req.Direction, now)
		if err != nil {
			return err
		}
		if err := s.repo.UpsertVote(ctx, tx, &contributiondomain.ContributionVote{
			ID:             s.genID.Generate(),
			ContributionID: c.ID,
			UserID:         userID,
			Direction:      req.Direction,
			CreatedAt:      now,
			UpdatedAt:      now,
		}); err != nil {
			return err
		}
		if err := s.repo.UpdateConfidence(ctx, tx, c.ID, c.ConfidenceScore, now); err != nil {
			return err
		}
		result.Contribution = c

		if previous == "" {
			reward, err := s.rewards.AwardValidationCoinsTx(ctx, tx, rewardsdomain.ValidationAward{
				UserID:         userID,
				ContributionID: c.ID,
				ChargerID:      c.ChargerID,
				ChargerName:    c.ChargerName,
				Direction:      string(req.Direction),
			})
			if err != nil {
				return err
			}
			result.Reward = reward
		}

		if _, err := s.reliability.RecomputeTx(ctx, tx, c.ChargerID, reliabilitydomain.TriggerVote); err != nil {
			return err
		}
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:    events.EventContributionVoted,
			Subject: c.ChargerID,
			Payload: events.ContributionPayload{
				ContributionID:  c.ID.String(),
				ChargerID:       c.ChargerID,
				UserID:          userID,
				Type:            string(c.Type),
				Direction:       string(req.Direction),
				ConfidenceScore: c.ConfidenceScore,
			}.ToMap(),
		})
	})
	if err != nil {
		switch {
		case rewardsdomain.IsRateLimited(err):
			s.metrics.IncAwardRejected(err.Error())
		case !contributiondomain.IsConflict(err) && !errors.Is(err, contributiondomain.ErrContributionNotFound):
			logger.With(ctx, s.log).Warn("vote failed",
				zap.String("contribution_id", id.String()),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		tracing.End(span, err)
		return nil, err
	}

	s.rewards.Committed(result.Reward)
	s.metrics.IncVote(string(req.Direction))
	tracing.End(span, nil)
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*contributiondomain.Contribution, error) {
	contributionID, err := contributiondomain.ParseID(id)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, s.db, contributionID, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, contributiondomain.ErrContributionNotFound
	}
	return c, nil
}

func (s *Service) ListByCharger(ctx context.Context, chargerID string) ([]contributiondomain.Contribution, error) {
	chargerID = strings.TrimSpace(chargerID)
	if chargerID == "" {
		return nil, contributiondomain.ErrInvalidCharger
	}
	return s.repo.ListByCharger(ctx, s.db, chargerID)
}

func (s *Service) Summary(ctx context.Context, chargerID string) (*contributiondomain.Summary, error) {
	contributions, err := s.ListByCharger(ctx, chargerID)
	if err != nil {
		return nil, err
	}
	summary := contributiondomain.BuildSummary(strings.TrimSpace(chargerID), contributions, s.clock.Now())
	return &summary, nil
}
