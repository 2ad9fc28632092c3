package service

import (
	"testing"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistService(t *testing.T) {
	testDB := setupTestDB(t)
	wishlist := NewWishlistService(repository.NewWishlistRepository(testDB), repository.NewProductRepository(testDB))
	user := createTestUser(t, testDB, "wish@example.com", "pw", model.RoleUser)
	tiles := createTestProduct(t, testDB, "Floor Tiles", "Finishes", "1200")

	empty, err := wishlist.List(user.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, wishlist.Add(user.ID, tiles.ID))
	require.NoError(t, wishlist.Add(user.ID, tiles.ID))

	products, err := wishlist.List(user.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, tiles.ID, products[0].ID)

	in, err := wishlist.Contains(user.ID, tiles.ID)
	require.NoError(t, err)
	assert.True(t, in)

	assert.ErrorIs(t, wishlist.Add(user.ID, "missing"), ErrProductNotFound)

	require.NoError(t, wishlist.Remove(user.ID, tiles.ID))
	require.NoError(t, wishlist.Remove(user.ID, tiles.ID))

	in, err = wishlist.Contains(user.ID, tiles.ID)
	require.NoError(t, err)
	assert.False(t, in)
}
