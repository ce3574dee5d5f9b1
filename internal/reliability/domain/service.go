package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Triggers recorded with each recomputation.
const (
	TriggerContribution = "contribution"
	TriggerVote         = "vote"
	TriggerBatch        = "batch"
	TriggerRead         = "read"
)

// BatchResult summarizes one pass over every station.
type BatchResult struct {
	Stations int `json:"stations"`
	Failed   int `json:"failed"`
}

type Service interface {
	// Get returns the cached score, computing it on first read.
	Get(ctx context.Context, chargerID string) (*ReliabilityScore, error)
	Recompute(ctx context.Context, chargerID, trigger string) (*ReliabilityScore, error)
	// RecomputeTx joins the caller's transaction; the caller holds the charger lock.
	RecomputeTx(ctx context.Context, tx *gorm.DB, chargerID, trigger string) (*ReliabilityScore, error)
	RecomputeAll(ctx context.Context, concurrency int) (BatchResult, error)
}

type Repository interface {
	// FindByChargerID returns nil when no score is stored.
	FindByChargerID(ctx context.Context, db *gorm.DB, chargerID string) (*ReliabilityScore, error)
	Upsert(ctx context.Context, db *gorm.DB, score *ReliabilityScore) error
}

var ErrInvalidCharger = errors.New("invalid_charger_id")
