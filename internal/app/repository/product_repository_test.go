package repository

import (
	"testing"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProductRepository_Search(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProductRepository(gdb)
	createTestProduct(t, gdb, "Portland Cement", "Cement", "12.99")
	createTestProduct(t, gdb, "White Cement", "Cement", "18.99")
	createTestProduct(t, gdb, "River Sand", "Sand", "45.00")

	t.Run("case insensitive substring", func(t *testing.T) {
		results, err := repo.Search("cement", SearchLimit)
		require.NoError(t, err)
		require.Len(t, results, 2)
		names := []string{results[0].Name, results[1].Name}
		assert.ElementsMatch(t, []string{"Portland Cement", "White Cement"}, names)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		results, err := repo.Search("granite", SearchLimit)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		results, err := repo.Search("%", SearchLimit)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("matches description", func(t *testing.T) {
		results, err := repo.Search("CONSTRUCTION", SearchLimit)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})
}

func TestProductRepository_SearchLimit(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProductRepository(gdb)
	for i := 0; i < 12; i++ {
		createTestProduct(t, gdb, "Block "+string(rune('A'+i)), "Blocks", "2.50")
	}

	results, err := repo.Search("block", SearchLimit)
	require.NoError(t, err)
	assert.Len(t, results, SearchLimit)
}

func TestProductRepository_UpdateFields(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProductRepository(gdb)
	p := createTestProduct(t, gdb, "Portland Cement", "Cement", "12.99")

	require.NoError(t, repo.UpdateFields(p.ID, map[string]interface{}{"in_stock": false}))

	updated, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.False(t, updated.InStock)
	assert.Equal(t, "Portland Cement", updated.Name)
	assert.Equal(t, "12.99", updated.Price.StringFixed(2))
}

func TestProductRepository_Delete(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewProductRepository(gdb)
	p := createTestProduct(t, gdb, "River Sand", "Sand", "45.00")

	require.NoError(t, repo.Delete(p.ID))
	_, err := repo.FindByID(p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(p.ID), gorm.ErrRecordNotFound)
}

func TestCategoryRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewCategoryRepository(gdb)

	c := &model.Category{Name: "Cement", Icon: "Package"}
	require.NoError(t, repo.Create(c))
	assert.ErrorIs(t, repo.Create(&model.Category{Name: "Cement"}), gorm.ErrDuplicatedKey)

	require.NoError(t, repo.UpdateFields(c.ID, map[string]interface{}{"icon": "Box"}))
	found, err := repo.FindByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cement", found.Name)
	assert.Equal(t, "Box", found.Icon)

	require.NoError(t, repo.Delete(c.ID))
	assert.ErrorIs(t, repo.Delete(c.ID), gorm.ErrRecordNotFound)
}
