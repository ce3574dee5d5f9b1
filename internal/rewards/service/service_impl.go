package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltway/internal/clock"
	"github.com/smallbiznis/voltway/internal/events"
	"github.com/smallbiznis/voltway/internal/keylock"
	"github.com/smallbiznis/voltway/internal/observability/logger"
	"github.com/smallbiznis/voltway/internal/observability/metrics"
	"github.com/smallbiznis/voltway/internal/observability/tracing"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	clock    clock.Clock
	locks    *keylock.Locker
	repo     rewardsdomain.Repository
	outbox   *events.Outbox
	metrics  *metrics.EngineMetrics
	listener rewardsdomain.Listener
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Locks    *keylock.Locker
	Repo     rewardsdomain.Repository
	Outbox   *events.Outbox
	Metrics  *metrics.EngineMetrics `optional:"true"`
	Listener rewardsdomain.Listener `optional:"true"`
}

func NewService(p ServiceParam) rewardsdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rewards.service"),

		genID:    p.GenID,
		clock:    p.Clock,
		locks:    p.Locks,
		repo:     p.Repo,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
		listener: p.Listener,
	}
}

func (s *Service) AwardCoins(ctx context.Context, req rewardsdomain.AwardRequest) (*rewardsdomain.AwardResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if err := validateAward(req); err != nil {
		return nil, err
	}
	return s.withUser(ctx, "award_coins", req.UserID, func(tx *gorm.DB) (*rewardsdomain.AwardResult, error) {
		rewards, err := s.load(ctx, tx, req.UserID)
		if err != nil {
			return nil, err
		}
		return s.apply(ctx, tx, rewards, req)
	})
}

func (s *Service) AwardForContribution(ctx context.Context, award rewardsdomain.ContributionAward) (*rewardsdomain.AwardResult, error) {
	award.UserID = strings.TrimSpace(award.UserID)
	if award.UserID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	return s.withUser(ctx, "award_contribution", award.UserID, func(tx *gorm.DB) (*rewardsdomain.AwardResult, error) {
		return s.AwardForContributionTx(ctx, tx, award)
	})
}

func (s *Service) AwardForContributionTx(ctx context.Context, tx *gorm.DB, award rewardsdomain.ContributionAward) (*rewardsdomain.AwardResult, error) {
	if award.UserID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	if award.Coins() <= 0 {
		return nil, rewardsdomain.ErrInvalidAmount
	}
	rewards, err := s.load(ctx, tx, award.UserID)
	if err != nil {
		return nil, err
	}
	rewards.RecordContribution(award)

	metadata := map[string]string{
		"contribution_type": award.Kind,
		"base_coins":        strconv.FormatInt(award.BaseCoins, 10),
	}
	if award.IsFirstToCharger {
		metadata["first_to_charger_bonus"] = strconv.FormatInt(rewardsdomain.FirstToChargerBonus, 10)
	}
	return s.apply(ctx, tx, rewards, rewardsdomain.AwardRequest{
		UserID:         award.UserID,
		Amount:         award.Coins(),
		Type:           rewardsdomain.TransactionEarned,
		Reason:         fmt.Sprintf("contribution:%s", strings.ToLower(award.Kind)),
		ChargerID:      optional(award.ChargerID),
		ChargerName:    optional(award.ChargerName),
		ContributionID: nonZeroID(award.ContributionID),
		Metadata:       metadata,
	})
}

func (s *Service) AwardDailyCheckIn(ctx context.Context, userID string) (*rewardsdomain.AwardResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	return s.withUser(ctx, "daily_check_in", userID, func(tx *gorm.DB) (*rewardsdomain.AwardResult, error) {
		rewards, err := s.load(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		today := s.clock.Today()
		if err := rewards.CheckIn(today); err != nil {
			return nil, err
		}
		return s.apply(ctx, tx, rewards, rewardsdomain.AwardRequest{
			UserID:   userID,
			Amount:   rewardsdomain.DailyCheckInCoins,
			Type:     rewardsdomain.TransactionBonus,
			Reason:   "daily_check_in",
			Metadata: map[string]string{"day": today},
		})
	})
}

func (s *Service) AwardValidationCoins(ctx context.Context, award rewardsdomain.ValidationAward) (*rewardsdomain.AwardResult, error) {
	award.UserID = strings.TrimSpace(award.UserID)
	if award.UserID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	return s.withUser(ctx, "award_validation", award.UserID, func(tx *gorm.DB) (*rewardsdomain.AwardResult, error) {
		return s.AwardValidationCoinsTx(ctx, tx, award)
	})
}

func (s *Service) AwardValidationCoinsTx(ctx context.Context, tx *gorm.DB, award rewardsdomain.ValidationAward) (*rewardsdomain.AwardResult, error) {
	if award.UserID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	rewards, err := s.load(ctx, tx, award.UserID)
	if err != nil {
		return nil, err
	}
	today := s.clock.Today()
	if err := rewards.RecordValidation(today); err != nil {
		return nil, err
	}

	metadata := map[string]string{"day": today}
	if award.Direction != "" {
		metadata["direction"] = award.Direction
	}
	return s.apply(ctx, tx, rewards, rewardsdomain.AwardRequest{
		UserID:         award.UserID,
		Amount:         rewardsdomain.ValidationCoins,
		Type:           rewardsdomain.TransactionEarned,
		Reason:         "validation",
		ChargerID:      optional(award.ChargerID),
		ChargerName:    optional(award.ChargerName),
		ContributionID: nonZeroID(award.ContributionID),
		Metadata:       metadata,
	})
}

func (s *Service) SpendCoins(ctx context.Context, req rewardsdomain.SpendRequest) (*rewardsdomain.AwardResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.UserID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	if req.Amount <= 0 {
		return nil, rewardsdomain.ErrInvalidAmount
	}
	if req.Reason == "" {
		return nil, rewardsdomain.ErrInvalidReason
	}
	return s.withUser(ctx, "spend_coins", req.UserID, func(tx *gorm.DB) (*rewardsdomain.AwardResult, error) {
		rewards, err := s.load(ctx, tx, req.UserID)
		if err != nil {
			return nil, err
		}
		if rewards.TotalCoins < req.Amount {
			return nil, rewardsdomain.ErrInsufficientCoins
		}
		return s.apply(ctx, tx, rewards, rewardsdomain.AwardRequest{
			UserID:   req.UserID,
			Amount:   -req.Amount,
			Type:     rewardsdomain.TransactionSpent,
			Reason:   req.Reason,
			Metadata: req.Metadata,
		})
	})
}

// ResetMonthlyCoins zeroes CoinsThisMonth for every user unconditionally and
// returns how many balances changed.
func (s *Service) ResetMonthlyCoins(ctx context.Context) (int64, error) {
	ctx, span := tracing.Start(ctx, "rewards.reset_monthly")
	reset, _, err := s.resetAll(ctx, nil)
	tracing.End(span, err)
	return reset, err
}

// ResetMonth claims the month's dedupe key and zeroes balances in the same
// transaction, so a month is reset at most once across restarts and replicas.
func (s *Service) ResetMonth(ctx context.Context, month string) (int64, bool, error) {
	month = strings.TrimSpace(month)
	if _, err := time.Parse(clock.MonthLayout, month); err != nil {
		return 0, false, rewardsdomain.ErrInvalidMonth
	}
	ctx, span := tracing.Start(ctx, "rewards.reset_month")
	reset, claimed, err := s.resetAll(ctx, &events.Event{
		Type:      events.EventMonthlyReset,
		Subject:   month,
		Payload:   map[string]any{"month": month},
		DedupeKey: events.MonthlyResetKey(month),
	})
	tracing.End(span, err)
	return reset, claimed, err
}

// resetAll holds every user lock for one transaction. When marker is set it
// is claimed first and a lost claim leaves balances untouched.
func (s *Service) resetAll(ctx context.Context, marker *events.Event) (int64, bool, error) {
	userIDs, err := s.repo.ListUserIDs(ctx, s.db)
	if err != nil {
		return 0, false, err
	}
	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, keylock.UserKey(userID))
	}
	release, err := s.locks.LockAll(ctx, keys...)
	if err != nil {
		return 0, false, err
	}
	defer release()

	var (
		reset   int64
		claimed = true
	)
	now := s.clock.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if marker != nil {
			ok, err := s.outbox.ClaimTx(ctx, tx, *marker)
			if err != nil || !ok {
				claimed = false
				return err
			}
		}
		for _, userID := range userIDs {
			changed, err := s.repo.ResetMonthlyCoins(ctx, tx, userID, now)
			if err != nil {
				return err
			}
			if changed {
				reset++
			}
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	if !claimed {
		return 0, false, nil
	}

	if reset > 0 && s.listener != nil {
		s.listener.RewardsChanged(userIDs...)
	}
	logger.With(ctx, s.log).Info("monthly coins reset", zap.Int64("users_reset", reset))
	return reset, true, nil
}

func (s *Service) GetRewards(ctx context.Context, userID string) (*rewardsdomain.UserRewards, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	rewards, err := s.repo.FindByUserID(ctx, s.db, userID, false)
	if err != nil {
		return nil, err
	}
	if rewards == nil {
		return nil, rewardsdomain.ErrRewardsNotFound
	}
	return rewards, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID string, limit int) ([]rewardsdomain.CoinTransaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, rewardsdomain.ErrInvalidUser
	}
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}
	return s.repo.ListTransactions(ctx, s.db, userID, limit)
}

// Committed records metrics and notifies listeners for changes whose
// transaction has committed.
func (s *Service) Committed(results ...*rewardsdomain.AwardResult) {
	userIDs := make([]string, 0, len(results))
	for _, result := range results {
		if result == nil {
			continue
		}
		userIDs = append(userIDs, result.Rewards.UserID)
		s.metrics.AddCoins(string(result.Transaction.Type), result.Transaction.Amount)
		for _, badge := range result.NewBadges {
			s.metrics.IncBadgeEarned(string(badge))
		}
		if result.RankChanged {
			s.metrics.IncRankChange(string(result.Rewards.Rank))
		}
	}
	if len(userIDs) > 0 && s.listener != nil {
		s.listener.RewardsChanged(userIDs...)
	}
}

func (s *Service) withUser(
	ctx context.Context,
	op string,
	userID string,
	fn func(tx *gorm.DB) (*rewardsdomain.AwardResult, error),
) (*rewardsdomain.AwardResult, error) {
	ctx, span := tracing.Start(ctx, "rewards."+op, tracing.UserID(userID), tracing.KeyOperation.String(op))

	release, err := s.locks.Lock(ctx, keylock.UserKey(userID))
	if err != nil {
		tracing.End(span, err)
		return nil, err
	}
	defer release()

	var result *rewardsdomain.AwardResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = fn(tx)
		return txErr
	})
	if err != nil {
		if rewardsdomain.IsRateLimited(err) {
			s.metrics.IncAwardRejected(err.Error())
		} else if !rewardsdomain.IsValidation(err) {
			logger.With(ctx, s.log).Warn("rewards mutation failed",
				zap.String("op", op),
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
		tracing.End(span, err)
		return nil, err
	}

	s.Committed(result)
	tracing.End(span, nil)
	return result, nil
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, userID string) (*rewardsdomain.UserRewards, error) {
	rewards, err := s.repo.FindByUserID(ctx, tx, userID, true)
	if err != nil {
		return nil, err
	}
	if rewards == nil {
		rewards = rewardsdomain.NewUserRewards(userID, s.clock.Now().UTC())
	}
	return rewards, nil
}

// apply credits req to rewards and persists the snapshot, the transaction
// and their outbox events on tx.
func (s *Service) apply(
	ctx context.Context,
	tx *gorm.DB,
	rewards *rewardsdomain.UserRewards,
	req rewardsdomain.AwardRequest,
) (*rewardsdomain.AwardResult, error) {
	now := s.clock.Now().UTC()
	previous, newBadges := rewards.Apply(req.Amount)
	rewards.UpdatedAt = now

	txn := rewardsdomain.CoinTransaction{
		ID:             s.genID.Generate(),
		UserID:         req.UserID,
		Amount:         req.Amount,
		Type:           req.Type,
		Reason:         req.Reason,
		ChargerID:      req.ChargerID,
		ChargerName:    req.ChargerName,
		ContributionID: req.ContributionID,
		Metadata:       toJSONMap(req.Metadata),
		Timestamp:      now,
	}

	if err := s.repo.Save(ctx, tx, rewards); err != nil {
		return nil, err
	}
	if err := s.repo.InsertTransaction(ctx, tx, &txn); err != nil {
		return nil, err
	}

	result := &rewardsdomain.AwardResult{
		Transaction:  txn,
		Rewards:      *rewards,
		PreviousRank: previous,
		RankChanged:  previous != rewards.Rank,
		NewBadges:    newBadges,
	}
	if err := s.publish(ctx, tx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, tx *gorm.DB, result *rewardsdomain.AwardResult) error {
	txn := result.Transaction
	eventType := events.EventCoinsAwarded
	if txn.Amount < 0 {
		eventType = events.EventCoinsSpent
	}
	if err := s.outbox.PublishTx(ctx, tx, events.Event{
		Type:    eventType,
		Subject: txn.UserID,
		Payload: events.CoinsPayload{
			TransactionID: txn.ID.String(),
			UserID:        txn.UserID,
			Amount:        txn.Amount,
			Type:          string(txn.Type),
			Reason:        txn.Reason,
			TotalCoins:    result.Rewards.TotalCoins,
		}.ToMap(),
		DedupeKey: "coins:" + txn.ID.String(),
	}); err != nil {
		return err
	}

	for _, badge := range result.NewBadges {
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventBadgeEarned,
			Subject:   txn.UserID,
			Payload:   events.ProgressPayload{UserID: txn.UserID, Badge: string(badge)}.ToMap(),
			DedupeKey: fmt.Sprintf("badge:%s:%s", txn.UserID, badge),
		}); err != nil {
			return err
		}
	}

	if result.RankChanged {
		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type:    events.EventRankChanged,
			Subject: txn.UserID,
			Payload: events.ProgressPayload{
				UserID:       txn.UserID,
				PreviousRank: string(result.PreviousRank),
				Rank:         string(result.Rewards.Rank),
			}.ToMap(),
			DedupeKey: "rank:" + txn.ID.String(),
		})
	}
	return nil
}

func validateAward(req rewardsdomain.AwardRequest) error {
	if req.UserID == "" {
		return rewardsdomain.ErrInvalidUser
	}
	if !req.Type.Valid() {
		return rewardsdomain.ErrInvalidType
	}
	if strings.TrimSpace(req.Reason) == "" {
		return rewardsdomain.ErrInvalidReason
	}
	// debits go through SpendCoins so the balance check cannot be skipped
	if req.Type == rewardsdomain.TransactionSpent {
		return rewardsdomain.ErrInvalidType
	}
	if req.Amount <= 0 {
		return rewardsdomain.ErrInvalidAmount
	}
	return nil
}

func toJSONMap(metadata map[string]string) datatypes.JSONMap {
	if len(metadata) == 0 {
		return nil
	}
	out := datatypes.JSONMap{}
	for key, value := range metadata {
		out[key] = value
	}
	return out
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func nonZeroID(id snowflake.ID) *snowflake.ID {
	if id == 0 {
		return nil
	}
	return &id
}
