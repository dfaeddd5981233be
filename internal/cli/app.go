package cli

import (
	"context"
	"os"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	"github.com/smallbiznis/meritscore/internal/config"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	obscontext "github.com/smallbiznis/meritscore/internal/observability/context"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/server"
	"github.com/smallbiznis/meritscore/pkg/db"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

type services struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Measures    measuredomain.Service
	Performance perfdomain.Service
	Composite   compositedomain.Service
	Gaps        gapdomain.Service
}

// withServices boots the domain services without the HTTP facade or the
// scheduler, runs fn, then shuts everything down.
func withServices(ctx context.Context, fn func(context.Context, services) error) error {
	var svc services
	app := fx.New(
		fx.NopLogger,
		config.Module,
		fx.Provide(newLogger),
		fx.Provide(func(cfg config.Config) (*snowflake.Node, error) {
			return snowflake.NewNode(cfg.NodeID)
		}),
		db.Module,
		clock.Module,
		server.Services,
		fx.Populate(&svc),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	return fn(operatorContext(ctx), svc)
}

// withDB opens only the database.
func withDB(ctx context.Context, fn func(context.Context, *gorm.DB, *zap.Logger) error) error {
	var (
		conn *gorm.DB
		log  *zap.Logger
	)
	app := fx.New(
		fx.NopLogger,
		config.Module,
		fx.Provide(newLogger),
		db.Module,
		fx.Populate(&conn, &log),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(context.Background())

	return fn(ctx, conn, log)
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// operatorContext attributes audit entries to the invoking OS user.
func operatorContext(ctx context.Context) context.Context {
	actor := os.Getenv("USER")
	if actor == "" {
		actor = "mipsctl"
	}
	return obscontext.WithActor(ctx, auditdomain.ActorUser, actor)
}
