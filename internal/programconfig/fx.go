package programconfig

import (
	"github.com/smallbiznis/meritscore/internal/config"
	"github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"github.com/smallbiznis/meritscore/internal/programconfig/repository"
	"github.com/smallbiznis/meritscore/internal/programconfig/service"
	"go.uber.org/fx"
)

var Module = fx.Module("programconfig.service",
	fx.Provide(config.NewProgramHolder),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.Resolver { return svc }),
)
