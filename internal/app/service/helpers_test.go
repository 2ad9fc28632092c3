package service

import (
	"context"
	"sync"
	"testing"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/db"
	"github.com/frahspaces/storefront-backend/internal/queue"
	"github.com/frahspaces/storefront-backend/pkg/util"
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
		Unit:         "per piece",
		Description:  name + " for site works",
		InStock:      true,
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func createTestUser(t *testing.T, gdb *gorm.DB, email, password string, role model.UserRole) *model.User {
	t.Helper()
	hash, err := util.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test " + string(role),
		Role:         role,
	}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e queue.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
