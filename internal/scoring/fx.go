package scoring

import (
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func asScorer(f any) any {
	return fx.Annotate(f,
		fx.As(new(domain.CategoryScorer)),
		fx.ResultTags(`group:"category_scorers"`),
	)
}

var Module = fx.Module("scoring.service",
	fx.Provide(
		asScorer(func(facts perfdomain.FactReader, log *zap.Logger) *service.QualityScorer {
			return service.NewQualityScorer(facts, log)
		}),
		asScorer(func(facts perfdomain.FactReader, log *zap.Logger) *service.PIScorer {
			return service.NewPIScorer(facts, log)
		}),
		asScorer(func(facts perfdomain.FactReader, log *zap.Logger) *service.IAScorer {
			return service.NewIAScorer(facts, log)
		}),
		asScorer(func(facts perfdomain.FactReader, log *zap.Logger) *service.CostScorer {
			return service.NewCostScorer(facts, log)
		}),
	),
)
