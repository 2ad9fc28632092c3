package db

import (
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Migrate runs migrations and seeds the starter catalog on the global DB.
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := AutoMigrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedCatalog(DB); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(model.AllModels()),
	})
	return nil
}

// AutoMigrate creates or updates every table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(model.AllModels()...)
}

// SeedCatalog inserts the starter categories and products. Each table is
// only seeded while it is empty.
func SeedCatalog(db *gorm.DB) error {
	if err := seedCategories(db); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}
	if err := seedProducts(db); err != nil {
		logger.Error("Failed to seed products", err)
		return err
	}
	return nil
}

func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{Name: "Cement", Icon: "Package"},
		{Name: "Sand", Icon: "Mountain"},
		{Name: "Bricks", Icon: "Grid3x3"},
		{Name: "Aggregates", Icon: "Circle"},
		{Name: "Blocks", Icon: "Box"},
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_records": len(categories),
	})
	return nil
}

func seedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products := []model.Product{
		{
			Name:         "Portland Cement",
			CategoryName: "Cement",
			Price:        decimal.RequireFromString("12.99"),
			Unit:         "per bag (50kg)",
			Description:  "High-quality Portland cement ideal for all construction projects",
			Image:        "https://images.unsplash.com/photo-1581092160607-ee67e4e6a4c5?w=800&q=80",
			InStock:      true,
			Featured:     true,
		},
		{
			Name:         "River Sand",
			CategoryName: "Sand",
			Price:        decimal.RequireFromString("45.00"),
			Unit:         "per ton",
			Description:  "Premium washed river sand for concrete and masonry work",
			Image:        "https://images.unsplash.com/photo-1541888946425-d81bb19240f5?w=800&q=80",
			InStock:      true,
			Featured:     true,
		},
		{
			Name:         "Red Clay Bricks",
			CategoryName: "Bricks",
			Price:        decimal.RequireFromString("0.65"),
			Unit:         "per piece",
			Description:  "Durable red clay bricks for construction and landscaping",
			Image:        "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=800&q=80",
			InStock:      true,
			Featured:     true,
		},
		{
			Name:         "Ballast (20mm)",
			CategoryName: "Aggregates",
			Price:        decimal.RequireFromString("38.00"),
			Unit:         "per ton",
			Description:  "20mm ballast ideal for concrete mixing and foundation work",
			Image:        "https://images.unsplash.com/photo-1615485290382-441e4d049cb5?w=800&q=80",
			InStock:      true,
			Featured:     true,
		},
		{
			Name:         "Concrete Blocks",
			CategoryName: "Blocks",
			Price:        decimal.RequireFromString("2.50"),
			Unit:         "per piece",
			Description:  "Standard concrete blocks for walls and partitions",
			Image:        "https://images.unsplash.com/photo-1600585152220-90363fe7e115?w=800&q=80",
			InStock:      true,
		},
		{
			Name:         "White Cement",
			CategoryName: "Cement",
			Price:        decimal.RequireFromString("18.99"),
			Unit:         "per bag (25kg)",
			Description:  "Premium white cement for finishing and decorative work",
			Image:        "https://images.unsplash.com/photo-1572981779307-38b8cabb2407?w=800&q=80",
			InStock:      true,
		},
		{
			Name:         "Plastering Sand",
			CategoryName: "Sand",
			Price:        decimal.RequireFromString("42.00"),
			Unit:         "per ton",
			Description:  "Fine sand perfect for plastering and rendering",
			Image:        "https://images.unsplash.com/photo-1541888946425-d81bb19240f5?w=800&q=80",
			InStock:      true,
		},
		{
			Name:         "Paving Bricks",
			CategoryName: "Bricks",
			Price:        decimal.RequireFromString("0.85"),
			Unit:         "per piece",
			Description:  "Interlocking paving bricks for driveways and walkways",
			Image:        "https://images.unsplash.com/photo-1600011689032-8b628b8a8747?w=800&q=80",
		},
	}
	if err := db.Create(&products).Error; err != nil {
		return err
	}

	logger.Info("Products seeded successfully", map[string]interface{}{
		"total_records": len(products),
	})
	return nil
}
