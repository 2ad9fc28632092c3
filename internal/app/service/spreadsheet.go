package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/pkg/optional"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const ordersSheet = "Orders"

var orderColumns = []interface{}{
	"Order ID", "Created", "Status", "Customer", "Email", "Delivery Address",
	"Total", "Client Account", "Assigned Staff", "Tracking Number", "Notes",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// WriteOrdersXLSX writes one row per order, in the given order.
func WriteOrdersXLSX(w io.Writer, orders []model.OrderWithClient) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ordersSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ordersSheet, "A1", &orderColumns); err != nil {
		return err
	}

	for i, o := range orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		total, _ := o.Total.Float64()
		row := []interface{}{
			o.ID,
			o.CreatedAt.UTC().Format("2006-01-02 15:04"),
			string(o.Status),
			o.CustomerName,
			o.CustomerEmail,
			o.DeliveryAddress,
			total,
			deref(o.ClientEmail),
			deref(o.AssignedStaffID),
			deref(o.TrackingNumber),
			deref(o.InternalNotes),
		}
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// ImportRowError describes a spreadsheet row that was skipped.
type ImportRowError struct {
	Row    int
	Reason string
}

func (e ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ReadProductsXLSX reads products from the first sheet. The first row is a
// header naming the columns name, category, price, unit, description,
// image, in_stock and featured in any order; only name and price are
// required. Invalid rows are skipped and reported.
func ReadProductsXLSX(r io.Reader) ([]ProductInput, []ImportRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("missing %q column", required)
		}
	}

	var (
		products []ProductInput
		skipped  []ImportRowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		get := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := get("name")
		if name == "" {
			skipped = append(skipped, ImportRowError{Row: rowNum, Reason: "name is empty"})
			continue
		}
		price, err := decimal.NewFromString(get("price"))
		if err != nil || price.IsNegative() {
			skipped = append(skipped, ImportRowError{Row: rowNum, Reason: "invalid price"})
			continue
		}

		products = append(products, ProductInput{
			Name:         name,
			CategoryName: get("category"),
			Price:        price,
			Unit:         get("unit"),
			Description:  get("description"),
			Image:        get("image"),
			InStock:      optional.Bool(parseSheetBool(get("in_stock"), true)),
			Featured:     optional.Bool(parseSheetBool(get("featured"), false)),
		})
	}
	return products, skipped, nil
}

func parseSheetBool(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "":
		return fallback
	case "yes", "y":
		return true
	case "no", "n":
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}
