package gap

import (
	"github.com/smallbiznis/meritscore/internal/gap/repository"
	"github.com/smallbiznis/meritscore/internal/gap/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gap.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
