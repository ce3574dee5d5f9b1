package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() contributiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *contributiondomain.Contribution) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*contributiondomain.Contribution, error) {
	query := db.WithContext(ctx)
	if forUpdate && db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var c contributiondomain.Contribution
	err := query.Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items := []contributiondomain.Contribution{c}
	if err := r.attachVotes(ctx, db, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (r *repo) ListByCharger(ctx context.Context, db *gorm.DB, chargerID string) ([]contributiondomain.Contribution, error) {
	var items []contributiondomain.Contribution
	if err := db.WithContext(ctx).
		Where("charger_id = ?", chargerID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Find(&items).Error; err != nil {
		return nil, err
	}
	if err := r.attachVotes(ctx, db, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountByCharger(ctx context.Context, db *gorm.DB, chargerID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&contributiondomain.Contribution{}).
		Where("charger_id = ?", chargerID).
		Count(&count).Error
	return count, err
}

func (r *repo) UpsertVote(ctx context.Context, db *gorm.DB, vote *contributiondomain.ContributionVote) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contribution_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
		}).
		Create(vote).Error
}

func (r *repo) UpdateConfidence(ctx context.Context, db *gorm.DB, id snowflake.ID, score float64, validatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contributions
		 SET confidence_score = ?, last_validated_at = ?, updated_at = ?
		 WHERE id = ?`,
		score,
		validatedAt,
		validatedAt,
		id,
	).Error
}

func (r *repo) ListChargerIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	if err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT charger_id FROM contributions ORDER BY charger_id ASC`,
	).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) attachVotes(ctx context.Context, db *gorm.DB, items []contributiondomain.Contribution) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]snowflake.ID, 0, len(items))
	index := make(map[snowflake.ID]int, len(items))
	for i := range items {
		ids = append(ids, items[i].ID)
		index[items[i].ID] = i
		items[i].ValidatedBy = []string{}
		items[i].InvalidatedBy = []string{}
	}

	var votes []contributiondomain.ContributionVote
	if err := db.WithContext(ctx).
		Where("contribution_id IN ?", ids).
		Order("user_id ASC").
		Find(&votes).Error; err != nil {
		return err
	}
	for _, vote := range votes {
		i, ok := index[vote.ContributionID]
		if !ok {
			continue
		}
		switch vote.Direction {
		case contributiondomain.VoteValidate:
			items[i].ValidatedBy = append(items[i].ValidatedBy, vote.UserID)
		case contributiondomain.VoteInvalidate:
			items[i].InvalidatedBy = append(items[i].InvalidatedBy, vote.UserID)
		}
	}
	return nil
}
