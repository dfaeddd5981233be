package provider

import (
	"github.com/smallbiznis/meritscore/internal/provider/repository"
	"github.com/smallbiznis/meritscore/internal/provider/service"
	"go.uber.org/fx"
)

var Module = fx.Module("provider.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
