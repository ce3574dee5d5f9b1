package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltway/internal/clock"
	"github.com/smallbiznis/voltway/internal/config"
	"github.com/smallbiznis/voltway/internal/contribution"
	"github.com/smallbiznis/voltway/internal/events"
	"github.com/smallbiznis/voltway/internal/keylock"
	"github.com/smallbiznis/voltway/internal/leaderboard"
	"github.com/smallbiznis/voltway/internal/migration"
	"github.com/smallbiznis/voltway/internal/observability"
	"github.com/smallbiznis/voltway/internal/reliability"
	"github.com/smallbiznis/voltway/internal/rewards"
	"github.com/smallbiznis/voltway/internal/server"
	"github.com/smallbiznis/voltway/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		keylock.Module,
		events.Module,

		rewards.Module,
		reliability.Module,
		contribution.Module,
		leaderboard.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
