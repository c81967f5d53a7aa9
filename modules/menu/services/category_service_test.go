package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
)

func TestCategoryService_ListOrdersBySortOrder(t *testing.T) {
	f := newFixture(t)
	f.category(t, "steaks", "Steaks", 2)
	f.category(t, "desserts", "Desserts", 3)
	f.category(t, "appetizers", "Appetizers", 1)

	cats, err := f.categories.List(context.Background())
	require.NoError(t, err)
	slugs := make([]string, len(cats))
	for i, c := range cats {
		slugs[i] = c.Slug
	}
	assert.Equal(t, []string{"appetizers", "steaks", "desserts"}, slugs)
}

func TestCategoryService_Lookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	steaks := f.category(t, "steaks", "Steaks", 1)
	raw := f.category(t, "raw_bar", "Oysters & Crudo", 2)

	id, ok, err := f.categories.CategoryIDBySlug(ctx, " STEAKS ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, steaks, id)

	id, ok, err = f.categories.CategoryIDBySlug(ctx, "oysters & crudo")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, raw, id)

	_, ok, err = f.categories.CategoryIDBySlug(ctx, "sides")
	require.NoError(t, err)
	assert.False(t, ok)

	slug, ok, err := f.categories.CategorySlugByID(ctx, raw)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "raw_bar", slug)

	_, ok, err = f.categories.CategorySlugByID(ctx, "1e4bb1a4-6f5c-4c0e-b65f-2d1c6f7f5c3a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = f.categories.CategorySlugByID(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCategoryService_EnsureCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	existing := f.category(t, "steaks", "Steaks", 1)

	// Warm the cache so creation has something to invalidate.
	_, err := f.categories.List(ctx)
	require.NoError(t, err)

	id, created, err := f.categories.EnsureCategory(ctx, "steaks")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, id)

	id, created, err = f.categories.EnsureCategory(ctx, " raw_bar ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, id)

	cats, err := f.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	var rawBar category.Category
	for _, c := range cats {
		if c.ID == id {
			rawBar = c
		}
	}
	assert.Equal(t, "raw_bar", rawBar.Slug)
	assert.Equal(t, "Raw Bar", rawBar.Name)

	_, _, err = f.categories.EnsureCategory(ctx, "   ")
	require.ErrorIs(t, err, category.ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Raw Bar", category.DisplayName("raw_bar"))
	assert.Equal(t, "Steaks", category.DisplayName("steaks"))
	assert.Equal(t, "Prix Fixe Menu", category.DisplayName("prix fixe_menu"))
}
