package modules

import (
	"github.com/sirupsen/logrus"

	"github.com/tablemaster/tablemaster/modules/changes"
	"github.com/tablemaster/tablemaster/modules/floor"
	"github.com/tablemaster/tablemaster/modules/menu"
	menuservices "github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/cache"
	"github.com/tablemaster/tablemaster/pkg/configuration"
)

// BuiltInModules lists the modules in registration order. Menu comes first:
// changes and floor resolve menu services while registering.
func BuiltInModules(conf *configuration.Configuration, menuCache cache.Cache, logger *logrus.Logger) []application.Module {
	return []application.Module{
		menu.NewModule(&menu.ModuleOptions{
			Cache: menuCache,
			Breaker: menuservices.BreakerOptions{
				MaxFailures: conf.Menu.BreakerMaxFailures,
				Timeout:     conf.Menu.BreakerTimeout,
			},
			Logger: logger,
		}),
		changes.NewModule(&changes.ModuleOptions{
			StorageBackend: conf.StorageBackend,
			Logger:         logger,
		}),
		floor.NewModule(),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
