// Package migration owns the database schema.
package migration

import (
	contributiondomain "github.com/smallbiznis/voltway/internal/contribution/domain"
	"github.com/smallbiznis/voltway/internal/events"
	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	rewardsdomain "github.com/smallbiznis/voltway/internal/rewards/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(RunMigrations),
)

// Models lists every persisted table in dependency order.
func Models() []any {
	return []any{
		&contributiondomain.Contribution{},
		&contributiondomain.ContributionVote{},
		&reliabilitydomain.ReliabilityScore{},
		&rewardsdomain.UserRewards{},
		&rewardsdomain.CoinTransaction{},
		&events.RewardEvent{},
	}
}

// RunMigrations brings the schema up to date. It is safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
