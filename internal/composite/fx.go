package composite

import (
	"github.com/smallbiznis/meritscore/internal/composite/repository"
	"github.com/smallbiznis/meritscore/internal/composite/service"
	"go.uber.org/fx"
)

var Module = fx.Module("composite.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
