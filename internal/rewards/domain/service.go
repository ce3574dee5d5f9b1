package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	FirstToChargerBonus  int64 = 50
	DailyCheckInCoins    int64 = 5
	ValidationCoins      int64 = 5
	DailyValidationLimit       = 10
)

// Contribution kinds that feed dedicated badge counters.
const (
	ContributionKindPhoto  = "PHOTO"
	ContributionKindReview = "REVIEW"
)

type AwardRequest struct {
	UserID         string
	Amount         int64
	Type           TransactionType
	Reason         string
	ChargerID      *string
	ChargerName    *string
	ContributionID *snowflake.ID
	Metadata       map[string]string
}

// ContributionAward credits the author of a new contribution. BaseCoins is
// the per-type reward; Kind is the contribution type name.
type ContributionAward struct {
	UserID           string
	ContributionID   snowflake.ID
	Kind             string
	BaseCoins        int64
	ChargerID        string
	ChargerName      string
	CityName         string
	IsFirstToCharger bool
}

type ValidationAward struct {
	UserID         string
	ContributionID snowflake.ID
	ChargerID      string
	ChargerName    string
	Direction      string
}

type SpendRequest struct {
	UserID   string            `json:"-"`
	Amount   int64             `json:"amount"`
	Reason   string            `json:"reason"`
	Metadata map[string]string `json:"metadata"`
}

// AwardResult is the outcome of one committed ledger change.
type AwardResult struct {
	Transaction  CoinTransaction `json:"transaction"`
	Rewards      UserRewards     `json:"rewards"`
	PreviousRank Rank            `json:"previous_rank"`
	RankChanged  bool            `json:"rank_changed"`
	NewBadges    []Badge         `json:"new_badges"`
}

type Service interface {
	AwardCoins(ctx context.Context, req AwardRequest) (*AwardResult, error)
	AwardForContribution(ctx context.Context, award ContributionAward) (*AwardResult, error)
	AwardDailyCheckIn(ctx context.Context, userID string) (*AwardResult, error)
	AwardValidationCoins(ctx context.Context, award ValidationAward) (*AwardResult, error)
	SpendCoins(ctx context.Context, req SpendRequest) (*AwardResult, error)
	ResetMonthlyCoins(ctx context.Context) (int64, error)
	// ResetMonth resets balances for month at most once. It reports false
	// when month was already marked as reset.
	ResetMonth(ctx context.Context, month string) (int64, bool, error)
	GetRewards(ctx context.Context, userID string) (*UserRewards, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]CoinTransaction, error)

	// The Tx variants join a transaction owned by the caller, who must
	// already hold the user's lock. Committed must be called once that
	// transaction commits.
	AwardForContributionTx(ctx context.Context, tx *gorm.DB, award ContributionAward) (*AwardResult, error)
	AwardValidationCoinsTx(ctx context.Context, tx *gorm.DB, award ValidationAward) (*AwardResult, error)
	Committed(results ...*AwardResult)
}

// Listener observes committed ledger changes.
type Listener interface {
	RewardsChanged(userIDs ...string)
}

// Repository persists user snapshots and the transaction log.
type Repository interface {
	// FindByUserID returns nil when the user has no ledger yet.
	FindByUserID(ctx context.Context, db *gorm.DB, userID string, forUpdate bool) (*UserRewards, error)
	Save(ctx context.Context, db *gorm.DB, rewards *UserRewards) error
	InsertTransaction(ctx context.Context, db *gorm.DB, txn *CoinTransaction) error
	ListTransactions(ctx context.Context, db *gorm.DB, userID string, limit int) ([]CoinTransaction, error)
	ListAll(ctx context.Context, db *gorm.DB) ([]UserRewards, error)
	ListUserIDs(ctx context.Context, db *gorm.DB) ([]string, error)
	// ResetMonthlyCoins zeroes one user's monthly balance and reports whether
	// it was non-zero.
	ResetMonthlyCoins(ctx context.Context, db *gorm.DB, userID string, now time.Time) (bool, error)
}

var (
	ErrInvalidUser       = errors.New("invalid_user_id")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidType       = errors.New("invalid_transaction_type")
	ErrInvalidReason     = errors.New("invalid_reason")
	ErrAlreadyCheckedIn  = errors.New("already_checked_in")
	ErrDailyLimitReached = errors.New("daily_validation_limit_reached")
	ErrInsufficientCoins = errors.New("insufficient_coins")
	ErrRewardsNotFound   = errors.New("rewards_not_found")
	ErrInvalidMonth      = errors.New("invalid_month")
)

// IsRateLimited reports daily-cap failures. No state changes accompany them.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrAlreadyCheckedIn) || errors.Is(err, ErrDailyLimitReached)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidUser) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidReason) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInsufficientCoins)
}
