package controllers

import (
	"time"

	"github.com/tablemaster/tablemaster/modules/floor/domain/guest"
	"github.com/tablemaster/tablemaster/modules/floor/domain/order"
	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
	"github.com/tablemaster/tablemaster/modules/floor/presentation/controllers/dtos"
	"github.com/tablemaster/tablemaster/modules/floor/services"
)

func toTableResponse(t table.Table) dtos.TableResponse {
	return dtos.TableResponse{
		ID:          t.ID,
		TableNumber: t.TableNumber,
		Section:     t.Section,
		GuestCount:  t.GuestCount,
		Status:      t.Status,
		Notes:       t.Notes,
		UserID:      t.UserID,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func toGuestResponse(g guest.Guest) dtos.GuestResponse {
	allergies := g.Allergies
	if allergies == nil {
		allergies = []string{}
	}
	return dtos.GuestResponse{
		ID:          g.ID,
		TableID:     g.TableID,
		GuestNumber: g.GuestNumber,
		Name:        g.Name,
		Notes:       g.Notes,
		Allergies:   allergies,
		CreatedAt:   formatTime(g.CreatedAt),
	}
}

func toOrderResponse(o order.Order) dtos.OrderResponse {
	return dtos.OrderResponse{
		ID:        o.ID,
		TableID:   o.TableID,
		GuestID:   o.GuestID,
		Status:    o.Status,
		Notes:     o.Notes,
		CreatedAt: formatTime(o.CreatedAt),
	}
}

func toOrderItemResponse(item order.Item) dtos.OrderItemResponse {
	modifiers := item.Modifiers
	if modifiers == nil {
		modifiers = []string{}
	}
	return dtos.OrderItemResponse{
		ID:         item.ID,
		OrderID:    item.OrderID,
		TableID:    item.TableID,
		GuestID:    item.GuestID,
		MenuItemID: item.MenuItemID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		Modifiers:  modifiers,
		Notes:      item.Notes,
		Course:     item.Course,
		Status:     item.Status,
		CreatedAt:  formatTime(item.CreatedAt),
	}
}

func toTableOrdersResponse(ticket services.TableOrders) dtos.TableOrdersResponse {
	resp := dtos.TableOrdersResponse{
		Orders: make([]dtos.OrderResponse, 0, len(ticket.Orders)),
		Items:  make([]dtos.OrderItemResponse, 0, len(ticket.Items)),
	}
	for _, o := range ticket.Orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	for _, item := range ticket.Items {
		resp.Items = append(resp.Items, toOrderItemResponse(item))
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
