package services

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"

	"github.com/tablemaster/tablemaster/modules/menu/domain/prefixedmenu"
	"github.com/tablemaster/tablemaster/pkg/cache"
)

var ErrPrefixedMenuNotFound = errors.New("prefixed menu not found")

type PrefixedMenuService struct {
	repo    prefixedmenu.Repository
	cache   cache.Cache
	breaker *gobreaker.CircuitBreaker
}

func NewPrefixedMenuService(repo prefixedmenu.Repository, c cache.Cache, breaker *gobreaker.CircuitBreaker) *PrefixedMenuService {
	return &PrefixedMenuService{repo: repo, cache: c, breaker: breaker}
}

func (s *PrefixedMenuService) List(ctx context.Context, activeOnly bool) ([]prefixedmenu.PrefixedMenu, error) {
	menus, err := readThrough(ctx, s.cache, s.breaker, prefixedCacheKey, s.repo.List)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return menus, nil
	}
	out := make([]prefixedmenu.PrefixedMenu, 0, len(menus))
	for _, m := range menus {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *PrefixedMenuService) GetByID(ctx context.Context, id string) (*prefixedmenu.PrefixedMenu, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, prefixedmenu.ErrNotFound) {
		return nil, ErrPrefixedMenuNotFound
	}
	return m, err
}

func (s *PrefixedMenuService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, prefixedCacheKey)
}
