package controllers

import (
	"time"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/modules/menu/domain/prefixedmenu"
	"github.com/tablemaster/tablemaster/modules/menu/presentation/controllers/dtos"
)

func toCategoryResponses(cats []category.Category) []dtos.CategoryResponse {
	out := make([]dtos.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, dtos.CategoryResponse{ID: c.ID, Slug: c.Slug, Name: c.Name, SortOrder: c.SortOrder})
	}
	return out
}

func toMenuItemResponse(item menuitem.MenuItem) dtos.MenuItemResponse {
	return dtos.MenuItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		CategoryID:    item.CategoryID,
		Category:      item.Category,
		CategorySlug:  item.CategorySlug,
		CategoryName:  item.CategoryName,
		Price:         item.Price.StringFixed(2),
		Currency:      item.Currency,
		Allergens:     nonNil(item.Allergens),
		CommonMods:    nonNil(item.CommonMods),
		IsUnavailable: item.IsUnavailable,
		Country:       item.Country,
		Origin:        item.Origin,
		Cut:           item.Cut,
		WeightOz:      item.WeightOz,
		AgingDays:     item.AgingDays,
		Notes:         item.Notes,
		CreatedAt:     formatTime(item.CreatedAt),
	}
}

func toMenuItemResponses(items []menuitem.MenuItem) []dtos.MenuItemResponse {
	out := make([]dtos.MenuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toMenuItemResponse(item))
	}
	return out
}

func toPrefixedMenuResponses(menus []prefixedmenu.PrefixedMenu) []dtos.PrefixedMenuResponse {
	out := make([]dtos.PrefixedMenuResponse, 0, len(menus))
	for _, m := range menus {
		resp := dtos.PrefixedMenuResponse{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Courses:     m.Courses,
			IsActive:    m.IsActive,
			CreatedAt:   formatTime(m.CreatedAt),
		}
		if resp.Courses == nil {
			resp.Courses = []any{}
		}
		if m.Price.Valid {
			p := m.Price.Decimal.StringFixed(2)
			resp.Price = &p
		}
		out = append(out, resp)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
