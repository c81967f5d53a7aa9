package menu

import (
	"github.com/sirupsen/logrus"

	"github.com/tablemaster/tablemaster/modules/menu/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/menu/presentation/controllers"
	"github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/cache"
)

type ModuleOptions struct {
	// Cache holds the last good menu views. Defaults to an in-process cache.
	Cache   cache.Cache
	Breaker services.BreakerOptions
	Logger  *logrus.Logger
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	c := m.options.Cache
	if c == nil {
		c = cache.NewMemoryCache(0)
	}
	logger := m.options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	categoryRepo := persistence.NewCategoryRepository(app.Store())
	itemRepo := persistence.NewMenuItemRepository(app.Store(), categoryRepo)
	prefixedRepo := persistence.NewPrefixedMenuRepository(app.Store())

	categoryService := services.NewCategoryService(categoryRepo, c, services.NewReadBreaker("menu-categories", m.options.Breaker))
	itemService := services.NewMenuItemService(itemRepo, c, services.NewReadBreaker("menu-items", m.options.Breaker))
	prefixedService := services.NewPrefixedMenuService(prefixedRepo, c, services.NewReadBreaker("prefixed-menus", m.options.Breaker))

	app.RegisterServices(categoryService, itemService, prefixedService)
	app.RegisterControllers(controllers.NewMenuAPIController(app))
	services.RegisterCacheInvalidation(app.EventPublisher(), itemService, prefixedService, logger)
	return nil
}

func (m *Module) Name() string {
	return "menu"
}
