package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	changeservices "github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/pkg/eventbus"
)

// RegisterCacheInvalidation drops cached menu views whenever an approved or
// direct edit touches a menu entity.
func RegisterCacheInvalidation(
	bus eventbus.EventBus,
	items *MenuItemService,
	prefixed *PrefixedMenuService,
	logger *logrus.Logger,
) {
	bus.Subscribe(func(e changeservices.EntityChangedEvent) {
		ctx := context.Background()
		var err error
		switch e.EntityType {
		case changerequest.EntityMenuItem:
			err = items.Invalidate(ctx)
		case changerequest.EntityPrefixedMenu:
			err = prefixed.Invalidate(ctx)
		default:
			return
		}
		if err != nil {
			logger.WithError(err).WithField("entity_type", e.EntityType).Warn("menu cache invalidation failed")
		}
	})
}
