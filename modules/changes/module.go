package changes

import (
	"github.com/sirupsen/logrus"

	"github.com/tablemaster/tablemaster/modules/changes/domain/accessrequest"
	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/changes/presentation/controllers"
	"github.com/tablemaster/tablemaster/modules/changes/services"
	menuservices "github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/configuration"
)

type ModuleOptions struct {
	// StorageBackend selects where requests are kept: postgres or memory.
	StorageBackend string
	Logger         *logrus.Logger
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

// Register expects the menu module to be registered first; its category
// service resolves categories when menu edits are applied.
func (m *Module) Register(app application.Application) error {
	logger := m.options.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	var (
		changeRepo changerequest.Repository
		accessRepo accessrequest.Repository
		transactor composables.Transactor
	)
	if m.options.StorageBackend == configuration.StorageBackendMemory {
		changeRepo = persistence.NewMemoryChangeRequestRepository(nil)
		accessRepo = persistence.NewMemoryAccessRequestRepository(nil)
		transactor = composables.NoopTransactor{}
	} else {
		changeRepo = persistence.NewChangeRequestRepository()
		accessRepo = persistence.NewAccessRequestRepository()
		transactor = composables.PoolTransactor{}
	}

	categories := app.Service(menuservices.CategoryService{}).(*menuservices.CategoryService)
	committer := services.NewCommitter(app.Store(), categories)
	bus := app.EventPublisher()

	changeService := services.NewChangeRequestService(changeRepo, committer, transactor, bus)
	app.RegisterServices(
		changeService,
		services.NewAccessRequestService(accessRepo, bus),
		services.NewEditService(changeService, committer, transactor, bus),
	)
	app.RegisterControllers(controllers.NewChangesAPIController(app))
	services.RegisterSubscribers(bus, logger)
	return nil
}

func (m *Module) Name() string {
	return "changes"
}
