package floor

import (
	"github.com/tablemaster/tablemaster/modules/floor/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/floor/presentation/controllers"
	"github.com/tablemaster/tablemaster/modules/floor/services"
	menuservices "github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/application"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

// Register expects the menu module to be registered first; order lines
// resolve menu items through it.
func (m *Module) Register(app application.Application) error {
	tableRepo := persistence.NewTableRepository(app.Store())
	guestRepo := persistence.NewGuestRepository(app.Store())
	orderRepo := persistence.NewOrderRepository(app.Store())
	menuItems := app.Service(menuservices.MenuItemService{}).(*menuservices.MenuItemService)

	app.RegisterServices(
		services.NewTableService(tableRepo, app.EventPublisher()),
		services.NewGuestService(guestRepo, tableRepo),
		services.NewOrderService(orderRepo, tableRepo, guestRepo, menuItems),
	)
	app.RegisterControllers(controllers.NewFloorAPIController(app))
	return nil
}

func (m *Module) Name() string {
	return "floor"
}
