package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sony/gobreaker"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/pkg/cache"
)

var ErrMenuItemNotFound = errors.New("menu item not found")

type MenuItemService struct {
	repo    menuitem.Repository
	cache   cache.Cache
	breaker *gobreaker.CircuitBreaker
}

func NewMenuItemService(repo menuitem.Repository, c cache.Cache, breaker *gobreaker.CircuitBreaker) *MenuItemService {
	return &MenuItemService{repo: repo, cache: c, breaker: breaker}
}

// List returns the menu, newest first, narrowed by params.
func (s *MenuItemService) List(ctx context.Context, params menuitem.FindParams) ([]menuitem.MenuItem, error) {
	items, err := readThrough(ctx, s.cache, s.breaker, itemsCacheKey, s.repo.List)
	if err != nil {
		return nil, err
	}
	slug := category.NormalizeSlug(params.CategorySlug)
	if slug == "" && !params.Available {
		return items, nil
	}
	out := make([]menuitem.MenuItem, 0, len(items))
	for _, item := range items {
		if slug != "" && category.NormalizeSlug(item.CategorySlug) != slug && category.NormalizeSlug(item.Category) != slug {
			continue
		}
		if params.Available && item.IsUnavailable {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *MenuItemService) GetByID(ctx context.Context, id string) (*menuitem.MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, menuitem.ErrNotFound) {
		return nil, ErrMenuItemNotFound
	}
	return item, err
}

// Search ranks items whose name contains the letters of query in order,
// closest matches first.
func (s *MenuItemService) Search(ctx context.Context, query string, params menuitem.FindParams) ([]menuitem.MenuItem, error) {
	items, err := s.List(ctx, params)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return items, nil
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)
	out := make([]menuitem.MenuItem, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, items[r.OriginalIndex])
	}
	return out, nil
}

// Invalidate drops the cached menu so the next read goes to the store.
func (s *MenuItemService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, itemsCacheKey)
}
