// Package domain holds contribution records, peer votes and the confidence
// engine that scores them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ContributionType is the kind of crowdsourced report.
type ContributionType string

const (
	ContributionTypePhoto        ContributionType = "PHOTO"
	ContributionTypeReview       ContributionType = "REVIEW"
	ContributionTypeWaitTime     ContributionType = "WAIT_TIME"
	ContributionTypePlugCheck    ContributionType = "PLUG_CHECK"
	ContributionTypeStatusUpdate ContributionType = "STATUS_UPDATE"
)

// EVCoinsReward is the base coin reward for creating a contribution of this type.
func (t ContributionType) EVCoinsReward() int64 {
	switch t {
	case ContributionTypePhoto:
		return 20
	case ContributionTypeReview:
		return 30
	case ContributionTypeWaitTime:
		return 10
	case ContributionTypePlugCheck:
		return 25
	case ContributionTypeStatusUpdate:
		return 15
	default:
		return 0
	}
}

func (t ContributionType) Valid() bool {
	return t.EVCoinsReward() > 0
}

// ChargerStatus is the availability reported by a STATUS_UPDATE.
type ChargerStatus string

const (
	ChargerStatusAvailable        ChargerStatus = "AVAILABLE"
	ChargerStatusBusy             ChargerStatus = "BUSY"
	ChargerStatusOffline          ChargerStatus = "OFFLINE"
	ChargerStatusUnderMaintenance ChargerStatus = "UNDER_MAINTENANCE"
)

func (s ChargerStatus) Valid() bool {
	switch s {
	case ChargerStatusAvailable, ChargerStatusBusy, ChargerStatusOffline, ChargerStatusUnderMaintenance:
		return true
	default:
		return false
	}
}

// VoteDirection is a peer's endorsement or dispute of a contribution.
type VoteDirection string

const (
	VoteValidate   VoteDirection = "validate"
	VoteInvalidate VoteDirection = "invalidate"
)

func (d VoteDirection) Valid() bool {
	return d == VoteValidate || d == VoteInvalidate
}

// Contribution is one crowdsourced report about a charging station.
// ValidatedBy and InvalidatedBy are materialized from contribution_votes.
type Contribution struct {
	ID          snowflake.ID     `gorm:"primaryKey" json:"id"`
	ChargerID   string           `gorm:"type:text;not null;index:idx_contributions_charger_ts,priority:1" json:"charger_id"`
	ChargerName string           `gorm:"type:text" json:"charger_name,omitempty"`
	UserID      string           `gorm:"type:text;not null;index" json:"user_id"`
	Type        ContributionType `gorm:"type:text;not null" json:"type"`

	Rating      *int           `json:"rating,omitempty"`
	Comment     *string        `gorm:"type:text" json:"comment,omitempty"`
	WaitMinutes *int           `json:"wait_minutes,omitempty"`
	PlugType    *string        `gorm:"type:text" json:"plug_type,omitempty"`
	PlugWorking *bool          `json:"plug_working,omitempty"`
	Status      *ChargerStatus `gorm:"type:text" json:"status,omitempty"`
	PhotoURL    *string        `gorm:"type:text" json:"photo_url,omitempty"`
	CityName    *string        `gorm:"type:text" json:"city_name,omitempty"`

	Timestamp       time.Time  `gorm:"not null;index:idx_contributions_charger_ts,priority:2" json:"timestamp"`
	ConfidenceScore float64    `gorm:"not null;default:0" json:"confidence_score"`
	LastValidatedAt *time.Time `json:"last_validated_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`

	ValidatedBy   []string `gorm:"-" json:"validated_by"`
	InvalidatedBy []string `gorm:"-" json:"invalidated_by"`
}

// TableName sets the database table name.
func (Contribution) TableName() string { return "contributions" }

// ContributionVote is the current vote of one user on one contribution.
type ContributionVote struct {
	ID             snowflake.ID  `gorm:"primaryKey"`
	ContributionID snowflake.ID  `gorm:"not null;uniqueIndex:ux_contribution_votes_user,priority:1"`
	UserID         string        `gorm:"type:text;not null;uniqueIndex:ux_contribution_votes_user,priority:2"`
	Direction      VoteDirection `gorm:"type:text;not null"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ContributionVote) TableName() string { return "contribution_votes" }
