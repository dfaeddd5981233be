package measure

import (
	"github.com/smallbiznis/meritscore/internal/measure/domain"
	"github.com/smallbiznis/meritscore/internal/measure/repository"
	"github.com/smallbiznis/meritscore/internal/measure/service"
	pkgrepo "github.com/smallbiznis/meritscore/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("measure.service",
	fx.Provide(
		pkgrepo.ProvideStore[domain.QualityMeasure],
		pkgrepo.ProvideStore[domain.PIMeasure],
		pkgrepo.ProvideStore[domain.ImprovementActivity],
		repository.ProvideSelections,
	),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.CatalogReader { return svc }),
)
