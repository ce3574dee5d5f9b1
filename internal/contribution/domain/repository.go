package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists contributions and their votes. Every method runs on the
// handle it is given so callers control transaction scope.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, c *Contribution) error
	// FindByID returns nil when the contribution does not exist. forUpdate
	// takes a row lock where the dialect supports it.
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*Contribution, error)
	ListByCharger(ctx context.Context, db *gorm.DB, chargerID string) ([]Contribution, error)
	CountByCharger(ctx context.Context, db *gorm.DB, chargerID string) (int64, error)
	UpsertVote(ctx context.Context, db *gorm.DB, vote *ContributionVote) error
	UpdateConfidence(ctx context.Context, db *gorm.DB, id snowflake.ID, score float64, validatedAt time.Time) error
	ListChargerIDs(ctx context.Context, db *gorm.DB) ([]string, error)
}
