// Package domain holds the per-user coin ledger: balances, ranks, badges and
// the immutable transaction log.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionEarned TransactionType = "EARNED"
	TransactionBonus  TransactionType = "BONUS"
	TransactionSpent  TransactionType = "SPENT"
	TransactionRefund TransactionType = "REFUND"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEarned, TransactionBonus, TransactionSpent, TransactionRefund:
		return true
	default:
		return false
	}
}

// UserRewards is the per-user ledger snapshot.
type UserRewards struct {
	UserID               string                      `gorm:"primaryKey;type:text" json:"user_id"`
	TotalCoins           int64                       `gorm:"not null;default:0;index" json:"total_coins"`
	CoinsThisMonth       int64                       `gorm:"not null;default:0" json:"coins_this_month"`
	Rank                 Rank                        `gorm:"type:text;not null" json:"rank"`
	Badges               datatypes.JSONSlice[Badge]  `json:"badges"`
	ContributionCount    int                         `gorm:"not null;default:0" json:"contribution_count"`
	ValidationCount      int                         `gorm:"not null;default:0" json:"validation_count"`
	DailyValidationCount int                         `gorm:"not null;default:0" json:"daily_validation_count"`
	LastValidationDate   string                      `gorm:"type:text" json:"last_validation_date,omitempty"`
	LastCheckInDate      string                      `gorm:"type:text" json:"last_check_in_date,omitempty"`
	PhotoCount           int                         `gorm:"not null;default:0" json:"photo_count"`
	ReviewCount          int                         `gorm:"not null;default:0" json:"review_count"`
	FirstToChargerCount  int                         `gorm:"not null;default:0" json:"first_to_charger_count"`
	CitiesContributed    datatypes.JSONSlice[string] `json:"cities_contributed"`
	ChargersContributed  datatypes.JSONSlice[string] `json:"chargers_contributed"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

// TableName sets the database table name.
func (UserRewards) TableName() string { return "user_rewards" }

// NewUserRewards is the zero state of a user seen for the first time.
func NewUserRewards(userID string, now time.Time) *UserRewards {
	return &UserRewards{
		UserID:              userID,
		Rank:                RankNewcomer,
		Badges:              datatypes.JSONSlice[Badge]{},
		CitiesContributed:   datatypes.JSONSlice[string]{},
		ChargersContributed: datatypes.JSONSlice[string]{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (r *UserRewards) HasBadge(b Badge) bool {
	for _, held := range r.Badges {
		if held == b {
			return true
		}
	}
	return false
}

// AddCity appends city to the set; it reports whether the set grew.
func (r *UserRewards) AddCity(city string) bool {
	if city == "" || containsString(r.CitiesContributed, city) {
		return false
	}
	r.CitiesContributed = append(r.CitiesContributed, city)
	return true
}

// AddCharger appends chargerID to the set; it reports whether the set grew.
func (r *UserRewards) AddCharger(chargerID string) bool {
	if chargerID == "" || containsString(r.ChargersContributed, chargerID) {
		return false
	}
	r.ChargersContributed = append(r.ChargersContributed, chargerID)
	return true
}

// ProgressToNextRank is derived, never stored.
func (r *UserRewards) ProgressToNextRank() float64 {
	return ProgressToNext(r.TotalCoins)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// CoinTransaction is an immutable ledger entry. Amount is negative for SPENT.
type CoinTransaction struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID         string            `gorm:"type:text;not null;index:idx_coin_transactions_user_ts,priority:1" json:"user_id"`
	Amount         int64             `gorm:"not null" json:"amount"`
	Type           TransactionType   `gorm:"type:text;not null" json:"type"`
	Reason         string            `gorm:"type:text;not null" json:"reason"`
	ChargerID      *string           `gorm:"type:text" json:"charger_id,omitempty"`
	ChargerName    *string           `gorm:"type:text" json:"charger_name,omitempty"`
	ContributionID *snowflake.ID     `json:"contribution_id,omitempty"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	Timestamp      time.Time         `gorm:"not null;index:idx_coin_transactions_user_ts,priority:2" json:"timestamp"`
}

// TableName sets the database table name.
func (CoinTransaction) TableName() string { return "coin_transactions" }
