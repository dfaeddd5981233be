package performance

import (
	"github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/performance/repository"
	"github.com/smallbiznis/meritscore/internal/performance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("performance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.FactReader { return svc }),
)
