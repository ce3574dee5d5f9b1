// Package domain aggregates a station's contributions into a reliability score.
package domain

import "time"

// TrustBadge is a coarse label derived only from TotalScore.
type TrustBadge string

const (
	TrustBadgeExcellent TrustBadge = "EXCELLENT"
	TrustBadgeGood      TrustBadge = "GOOD"
	TrustBadgeFair      TrustBadge = "FAIR"
	TrustBadgeNeedsData TrustBadge = "NEEDS_DATA"
)

const (
	excellentThreshold = 80.0
	goodThreshold      = 60.0
	fairThreshold      = 30.0
)

// TrustBadgeFor maps a total score to its badge.
func TrustBadgeFor(total float64) TrustBadge {
	switch {
	case total >= excellentThreshold:
		return TrustBadgeExcellent
	case total >= goodThreshold:
		return TrustBadgeGood
	case total >= fairThreshold:
		return TrustBadgeFair
	default:
		return TrustBadgeNeedsData
	}
}

// ReliabilityScore is the cached per-station aggregate. Sub-scores are each in
// [0,20] and TotalScore is their sum.
type ReliabilityScore struct {
	ChargerID         string     `gorm:"primaryKey;type:text" json:"charger_id"`
	PhotoScore        float64    `gorm:"not null;default:0" json:"photo_score"`
	ReviewScore       float64    `gorm:"not null;default:0" json:"review_score"`
	RatingScore       float64    `gorm:"not null;default:0" json:"rating_score"`
	FreshnessScore    float64    `gorm:"not null;default:0" json:"freshness_score"`
	ValidationScore   float64    `gorm:"not null;default:0" json:"validation_score"`
	TotalScore        float64    `gorm:"not null;default:0;index" json:"total_score"`
	StarRating        int        `gorm:"not null;default:0" json:"star_rating"`
	TrustBadge        TrustBadge `gorm:"type:text;not null" json:"trust_badge"`
	ContributionCount int        `gorm:"not null;default:0" json:"contribution_count"`
	ComputedAt        time.Time  `gorm:"not null" json:"computed_at"`
}

// TableName sets the database table name.
func (ReliabilityScore) TableName() string { return "reliability_scores" }
