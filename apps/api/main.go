package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/config"
	"github.com/smallbiznis/meritscore/internal/observability"
	"github.com/smallbiznis/meritscore/internal/server"
	"github.com/smallbiznis/meritscore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		server.Services,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
