package model

import "github.com/shopspring/decimal"

func init() {
	// Money is sent to the SPA as a JSON number, not a string.
	decimal.MarshalJSONWithoutQuotes = true
}

// AllModels lists every table managed by AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Review{},
		&WishlistItem{},
		&SiteVisit{},
	}
}
