package repository

import (
	"context"
	"errors"
	"time"

	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() rewardsdomain.Repository {
	return &repo{}
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string, forUpdate bool) (*rewardsdomain.UserRewards, error) {
	query := db.WithContext(ctx)
	if forUpdate && db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rewards rewardsdomain.UserRewards
	err := query.Where("user_id = ?", userID).Take(&rewards).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rewards, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, rewards *rewardsdomain.UserRewards) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(rewards).Error
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *rewardsdomain.CoinTransaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, userID string, limit int) ([]rewardsdomain.CoinTransaction, error) {
	var items []rewardsdomain.CoinTransaction
	query := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB) ([]rewardsdomain.UserRewards, error) {
	var items []rewardsdomain.UserRewards
	if err := db.WithContext(ctx).Order("user_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListUserIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	if err := db.WithContext(ctx).Raw(
		`SELECT user_id FROM user_rewards ORDER BY user_id ASC`,
	).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ResetMonthlyCoins(ctx context.Context, db *gorm.DB, userID string, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE user_rewards SET coins_this_month = 0, updated_at = ?
		 WHERE user_id = ? AND coins_this_month <> 0`,
		now.UTC(),
		userID,
	)
	return result.RowsAffected > 0, result.Error
}
