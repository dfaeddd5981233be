package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/meritscore/internal/audit"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/composite"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	"github.com/smallbiznis/meritscore/internal/config"
	"github.com/smallbiznis/meritscore/internal/eligibility"
	eligibilitydomain "github.com/smallbiznis/meritscore/internal/eligibility/domain"
	"github.com/smallbiznis/meritscore/internal/gap"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/lock"
	"github.com/smallbiznis/meritscore/internal/measure"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	"github.com/smallbiznis/meritscore/internal/observability"
	obsmiddleware "github.com/smallbiznis/meritscore/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/meritscore/internal/observability/metrics"
	obstracing "github.com/smallbiznis/meritscore/internal/observability/tracing"
	"github.com/smallbiznis/meritscore/internal/performance"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/programconfig"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"github.com/smallbiznis/meritscore/internal/provider"
	providerdomain "github.com/smallbiznis/meritscore/internal/provider/domain"
	"github.com/smallbiznis/meritscore/internal/scoring"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Services are the domain modules behind the HTTP facade and the scheduler.
var Services = fx.Options(
	audit.Module,
	lock.Module,
	provider.Module,
	programconfig.Module,
	eligibility.Module,
	measure.Module,
	performance.Module,
	scoring.Module,
	composite.Module,
	gap.Module,
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	ObsCfg      observability.Config     `optional:"true"`
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if p.HTTPMetrics != nil {
		r.Use(obsmetrics.GinMiddleware(p.HTTPMetrics))
	}
	r.Use(ActorContext())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(p EngineParams) *gin.Engine {
	return NewEngine(p)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	clock          clock.Clock
	auditSvc       auditdomain.Service
	providerSvc    providerdomain.Service
	programSvc     programdomain.Service
	eligibilitySvc eligibilitydomain.Service
	measureSvc     measuredomain.Service
	performanceSvc perfdomain.Service
	compositeSvc   compositedomain.Service
	gapSvc         gapdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Clock          clock.Clock
	AuditSvc       auditdomain.Service
	ProviderSvc    providerdomain.Service
	ProgramSvc     programdomain.Service
	EligibilitySvc eligibilitydomain.Service
	MeasureSvc     measuredomain.Service
	PerformanceSvc perfdomain.Service
	CompositeSvc   compositedomain.Service
	GapSvc         gapdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		clock:          p.Clock,
		auditSvc:       p.AuditSvc,
		providerSvc:    p.ProviderSvc,
		programSvc:     p.ProgramSvc,
		eligibilitySvc: p.EligibilitySvc,
		measureSvc:     p.MeasureSvc,
		performanceSvc: p.PerformanceSvc,
		compositeSvc:   p.CompositeSvc,
		gapSvc:         p.GapSvc,
	}

	svc.registerAPIRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Providers --------
	api.GET("/providers", s.ListProviders)
	api.PUT("/providers/:id", s.UpsertProvider)
	api.GET("/providers/:id", s.GetProvider)

	year := api.Group("/providers/:id/years/:year")
	{
		year.POST("/eligibility", s.EvaluateEligibility)
		year.GET("/eligibility", s.GetEligibility)

		year.PUT("/measures", s.ReplaceSelections)
		year.GET("/measures", s.ListSelections)

		year.POST("/quality", s.RecordQuality)
		year.POST("/pi", s.RecordPI)
		year.POST("/ia", s.RecordIA)
		year.POST("/cost", s.RecordCost)

		year.POST("/submission", s.ComputeSubmission)
		year.GET("/submission", s.GetSubmission)

		year.POST("/gaps", s.AnalyzeGaps)
		year.GET("/gaps", s.ListGaps)
	}

	// -------- Catalog --------
	api.GET("/measures", s.ListCatalog)
	api.POST("/measures/validate", s.ValidateSelection)

	// -------- Results --------
	api.GET("/submissions", s.ListSubmissions)
	api.GET("/timeline/:year", s.GetPhase)

	// -------- Program configuration --------
	api.GET("/program-config/:year", s.GetProgramConfig)
	api.PUT("/program-config/:year", s.UpsertProgramConfig)

	api.GET("/audit-logs", s.ListAuditLogs)
}
