package repository

import (
	"time"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderTotals is a revenue sum with the number of orders it covers.
type OrderTotals struct {
	Revenue decimal.Decimal
	Orders  int64
}

// DatedAmount is one order's total and creation time.
type DatedAmount struct {
	CreatedAt time.Time
	Total     decimal.Decimal
}

// ProductSales is the number of units sold under a product name.
type ProductSales struct {
	Name  string `json:"name"`
	Sales int64  `json:"sales"`
}

// CategorySales is the line item revenue of one category.
type CategorySales struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// StatsRepository runs the read-only aggregate queries behind the back
// office dashboards.
type StatsRepository interface {
	Totals(excludeStatus ...model.OrderStatus) (OrderTotals, error)
	TotalsWithStatus(status model.OrderStatus) (OrderTotals, error)
	CountByStatus(status model.OrderStatus) (int64, error)
	OrderAmountsSince(since time.Time, excludeStatus ...model.OrderStatus) ([]DatedAmount, error)
	TopProducts(limit int) ([]ProductSales, error)
	SalesByCategory() ([]CategorySales, error)
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

type totalsRow struct {
	Revenue decimal.Decimal
	Orders  int64
}

func (r *statsRepository) Totals(excludeStatus ...model.OrderStatus) (OrderTotals, error) {
	q := r.db.Model(&model.Order{}).Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS orders")
	if len(excludeStatus) > 0 {
		q = q.Where("status NOT IN ?", excludeStatus)
	}

	var row totalsRow
	if err := q.Scan(&row).Error; err != nil {
		logger.Error("Failed to compute order totals", err)
		return OrderTotals{}, err
	}
	return OrderTotals(row), nil
}

func (r *statsRepository) TotalsWithStatus(status model.OrderStatus) (OrderTotals, error) {
	var row totalsRow
	err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS orders").
		Where("status = ?", status).
		Scan(&row).Error
	if err != nil {
		logger.Error("Failed to compute order totals by status", err, map[string]interface{}{
			"status": status,
		})
		return OrderTotals{}, err
	}
	return OrderTotals(row), nil
}

func (r *statsRepository) CountByStatus(status model.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Order{}).Where("status = ?", status).Count(&count).Error; err != nil {
		logger.Error("Failed to count orders by status", err, map[string]interface{}{
			"status": status,
		})
		return 0, err
	}
	return count, nil
}

// OrderAmountsSince returns raw (created_at, total) pairs so that day
// bucketing happens in Go, independent of the SQL dialect.
func (r *statsRepository) OrderAmountsSince(since time.Time, excludeStatus ...model.OrderStatus) ([]DatedAmount, error) {
	q := r.db.Model(&model.Order{}).Select("created_at, total").Where("created_at >= ?", since.UTC())
	if len(excludeStatus) > 0 {
		q = q.Where("status NOT IN ?", excludeStatus)
	}

	var rows []DatedAmount
	if err := q.Order("created_at ASC").Scan(&rows).Error; err != nil {
		logger.Error("Failed to fetch order amounts", err, map[string]interface{}{
			"since": since,
		})
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) TopProducts(limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.db.Model(&model.OrderItem{}).
		Select("product_name AS name, SUM(quantity) AS sales").
		Group("product_name").
		Order("sales DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to compute product sales", err)
		return nil, err
	}
	return rows, nil
}

// SalesByCategory groups line item revenue by the current category of the
// product. Items whose product no longer exists are not counted.
func (r *statsRepository) SalesByCategory() ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.Model(&model.OrderItem{}).
		Select("products.category_name AS name, SUM(order_items.price * order_items.quantity) AS value").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("products.category_name").
		Order("value DESC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to compute category sales", err)
		return nil, err
	}
	return rows, nil
}
