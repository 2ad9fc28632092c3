package repository

import (
	"testing"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestProduct(t *testing.T, gdb *gorm.DB, name, category, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:         name,
		CategoryName: category,
		Price:        decimal.RequireFromString(price),
		Unit:         "per bag",
		Description:  name + " for construction",
		InStock:      true,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func createTestUser(t *testing.T, gdb *gorm.DB, email string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		PasswordHash: "hashed",
		FullName:     "Test " + string(role),
		Role:         role,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}
