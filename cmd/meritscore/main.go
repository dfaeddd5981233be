package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/config"
	"github.com/smallbiznis/meritscore/internal/migration"
	"github.com/smallbiznis/meritscore/internal/observability"
	"github.com/smallbiznis/meritscore/internal/scheduler"
	"github.com/smallbiznis/meritscore/internal/seed"
	"github.com/smallbiznis/meritscore/internal/server"
	"github.com/smallbiznis/meritscore/pkg/db"
	"go.uber.org/fx"
)

// Monolith: migrations, catalog seed, HTTP facade and scheduler in one process.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Services,
		seed.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
