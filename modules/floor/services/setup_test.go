package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	changeservices "github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/modules/floor/infrastructure/persistence"
	"github.com/tablemaster/tablemaster/modules/floor/services"
	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
)

var server = composables.Actor{ID: "user-1", Email: "server@example.com", FullName: "Sam Server"}

type menuFake map[string]menuitem.MenuItem

func (m menuFake) GetByID(_ context.Context, id string) (*menuitem.MenuItem, error) {
	item, ok := m[id]
	if !ok {
		return nil, menuitem.ErrNotFound
	}
	return &item, nil
}

type fixture struct {
	tables *services.TableService
	guests *services.GuestService
	orders *services.OrderService
	events []changeservices.EntityChangedEvent
}

const (
	ribeyeID = "2f1c7a52-55a4-4d8e-9a8e-8a1f3c2d4e51"
	wagyuID  = "9b7d1e33-0c1e-4a52-8f5e-6c2b1a0d9f72"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(logger)
	store := recordstore.NewMemoryStore(nil)

	tables := persistence.NewTableRepository(store)
	guests := persistence.NewGuestRepository(store)
	menu := menuFake{
		ribeyeID: {ID: ribeyeID, Name: "Ribeye", Price: decimal.NewFromInt(54)},
		wagyuID:  {ID: wagyuID, Name: "Wagyu Striploin", IsUnavailable: true},
	}
	f := &fixture{
		tables: services.NewTableService(tables, bus),
		guests: services.NewGuestService(guests, tables),
		orders: services.NewOrderService(persistence.NewOrderRepository(store), tables, guests, menu),
	}
	bus.Subscribe(func(e changeservices.EntityChangedEvent) {
		f.events = append(f.events, e)
	})
	return f
}

func signedIn() context.Context {
	return composables.WithActor(context.Background(), server)
}

func ptr[T any](v T) *T {
	return &v
}
