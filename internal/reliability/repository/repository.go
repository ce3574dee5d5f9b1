package repository

import (
	"context"
	"errors"

	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() reliabilitydomain.Repository {
	return &repo{}
}

func (r *repo) FindByChargerID(ctx context.Context, db *gorm.DB, chargerID string) (*reliabilitydomain.ReliabilityScore, error) {
	var score reliabilitydomain.ReliabilityScore
	err := db.WithContext(ctx).Where("charger_id = ?", chargerID).Take(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, score *reliabilitydomain.ReliabilityScore) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "charger_id"}},
			UpdateAll: true,
		}).
		Create(score).Error
}
