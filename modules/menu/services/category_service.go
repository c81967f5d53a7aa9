package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
	"github.com/tablemaster/tablemaster/pkg/cache"
)

type CategoryService struct {
	repo    category.Repository
	cache   cache.Cache
	breaker *gobreaker.CircuitBreaker
}

func NewCategoryService(repo category.Repository, c cache.Cache, breaker *gobreaker.CircuitBreaker) *CategoryService {
	return &CategoryService{repo: repo, cache: c, breaker: breaker}
}

// List returns categories by sort order.
func (s *CategoryService) List(ctx context.Context) ([]category.Category, error) {
	return readThrough(ctx, s.cache, s.breaker, categoriesCacheKey, s.repo.List)
}

// CategoryIDBySlug resolves ref against slugs first and display names second,
// ignoring case.
func (s *CategoryService) CategoryIDBySlug(ctx context.Context, ref string) (string, bool, error) {
	ref = category.NormalizeSlug(ref)
	if ref == "" {
		return "", false, nil
	}
	cats, err := s.repo.List(ctx)
	if err != nil {
		return "", false, err
	}
	for _, c := range cats {
		if category.NormalizeSlug(c.Slug) == ref {
			return c.ID, true, nil
		}
	}
	for _, c := range cats {
		if strings.EqualFold(strings.TrimSpace(c.Name), ref) {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}

func (s *CategoryService) CategorySlugByID(ctx context.Context, id string) (string, bool, error) {
	if strings.TrimSpace(id) == "" {
		return "", false, nil
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return c.Slug, true, nil
}

// EnsureCategory returns the id of the category for slug, creating it with a
// title-cased name when missing.
func (s *CategoryService) EnsureCategory(ctx context.Context, slug string) (string, bool, error) {
	slug = category.NormalizeSlug(slug)
	if slug == "" {
		return "", false, category.ErrNotFound
	}
	if id, ok, err := s.CategoryIDBySlug(ctx, slug); err != nil || ok {
		return id, false, err
	}
	c := &category.Category{Slug: slug, Name: category.DisplayName(slug)}
	if err := s.repo.Create(ctx, c); err != nil {
		return "", false, err
	}
	if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
		return c.ID, true, err
	}
	return c.ID, true, nil
}
