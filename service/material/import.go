// Package material implements bulk operations on the raw-material catalog.
package material

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/model/entity"
	materialRepo "github.com/nunomansilhas/ProduFlow/model/repository/material"
	stockService "github.com/nunomansilhas/ProduFlow/service/stock"
)

// ImportOptions configures a material import run.
type ImportOptions struct {
	BatchSize int
	DryRun    bool
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows    int
	Created      int
	Updated      int
	Skipped      int
	StockEntries int
	Warnings     []string
	ProcessTime  time.Duration
	DBTime       time.Duration
	TotalTime    time.Duration
}

var importColumns = map[string]bool{
	"code": true, "name": true, "unit": true, "category": true,
	"supplier": true, "min_stock": true, "unit_price": true,
	"location": true, "initial_qty": true,
}

type importRow struct {
	code       string
	name       string
	unit       string
	category   string
	supplier   string
	minStock   float64
	unitPrice  float64
	location   string
	initialQty float64
}

// ImportMaterials reads CSV data from r and upserts materials keyed by code.
// Unknown category and supplier names are created on the fly; a positive
// initial_qty is posted as a stock entry through the ledger.
func ImportMaterials(ctx context.Context, db *gorm.DB, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	startTotal := time.Now()

	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}

	reader := csv.NewReader(r)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}

	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		colIndex[h] = i
	}
	if _, ok := colIndex["code"]; !ok {
		return nil, fmt.Errorf("CSV must contain a 'code' column")
	}
	if _, ok := colIndex["name"]; !ok {
		return nil, fmt.Errorf("CSV must contain a 'name' column")
	}

	result := &ImportResult{}
	for _, h := range headers {
		if !importColumns[h] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(raw)

	startProcess := time.Now()
	rows := make([]importRow, 0, len(raw))
	for i, rec := range raw {
		row, warnings := parseRow(rec, colIndex)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %s", i+2, w))
		}
		if row.code == "" || row.name == "" {
			result.Skipped++
			continue
		}
		rows = append(rows, row)
	}
	result.ProcessTime = time.Since(startProcess)

	if opts.DryRun {
		result.TotalTime = time.Since(startTotal)
		return result, nil
	}

	startDB := time.Now()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return flush(ctx, tx, rows, result)
	})
	if err != nil {
		return nil, err
	}
	result.DBTime = time.Since(startDB)
	result.TotalTime = time.Since(startTotal)
	return result, nil
}

func parseRow(rec []string, colIndex map[string]int) (importRow, []string) {
	var warnings []string
	field := func(name string) string {
		if idx, ok := colIndex[name]; ok && idx < len(rec) {
			return strings.TrimSpace(rec[idx])
		}
		return ""
	}
	number := func(name string) float64 {
		raw := field(name)
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s %q is not a number, using 0", name, raw))
			return 0
		}
		return v
	}

	row := importRow{
		code:       strings.ToUpper(field("code")),
		name:       field("name"),
		unit:       field("unit"),
		category:   field("category"),
		supplier:   field("supplier"),
		minStock:   number("min_stock"),
		unitPrice:  number("unit_price"),
		location:   field("location"),
		initialQty: number("initial_qty"),
	}
	if row.unit == "" {
		row.unit = "un"
	}
	return row, warnings
}

// flush upserts all rows inside one transaction. Codes are matched in bulk
// first so each row costs one write, not one read plus one write.
func flush(ctx context.Context, tx *gorm.DB, rows []importRow, result *ImportResult) error {
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, row.code)
	}
	var existing []entity.Material
	if len(codes) > 0 {
		if err := tx.Where("code IN ?", codes).Find(&existing).Error; err != nil {
			return fmt.Errorf("lookup existing codes: %w", err)
		}
	}
	byCode := make(map[string]*entity.Material, len(existing))
	for i := range existing {
		if existing[i].Code != nil {
			byCode[*existing[i].Code] = &existing[i]
		}
	}

	categories, err := resolveCategories(tx, rows)
	if err != nil {
		return err
	}
	suppliers, err := resolveSuppliers(tx, rows)
	if err != nil {
		return err
	}

	repo := materialRepo.NewMaterialRepository(tx)
	ledger := stockService.NewLedger(tx)

	for _, row := range rows {
		var categoryID, supplierID *uint
		if row.category != "" {
			id := categories[strings.ToLower(row.category)]
			categoryID = &id
		}
		if row.supplier != "" {
			id := suppliers[strings.ToLower(row.supplier)]
			supplierID = &id
		}

		if m, ok := byCode[row.code]; ok {
			m.Name = row.name
			m.Unit = row.unit
			m.CategoryID = categoryID
			m.SupplierID = supplierID
			m.MinStock = row.minStock
			m.UnitPrice = row.unitPrice
			m.Location = row.location
			if err := repo.Update(ctx, m); err != nil {
				return err
			}
			result.Updated++
			continue
		}

		m := entity.Material{
			Name:       row.name,
			Code:       materialRepo.NormalizeCode(row.code),
			CategoryID: categoryID,
			Unit:       row.unit,
			SupplierID: supplierID,
			MinStock:   row.minStock,
			Location:   row.location,
			UnitPrice:  row.unitPrice,
			Active:     true,
		}
		if err := repo.Create(ctx, &m); err != nil {
			return err
		}
		result.Created++

		if row.initialQty > 0 {
			err := ledger.Apply(ctx, stockService.Movement{
				MaterialID: m.MaterialID,
				Kind:       entity.MovementEntry,
				Quantity:   row.initialQty,
				Reason:     "initial import",
			})
			if err != nil {
				return err
			}
			result.StockEntries++
		}
	}
	return nil
}

// resolveCategories maps the distinct category names to IDs, creating missing
// ones with the material kind.
func resolveCategories(tx *gorm.DB, rows []importRow) (map[string]uint, error) {
	out := make(map[string]uint)
	for _, row := range rows {
		if row.category == "" {
			continue
		}
		key := strings.ToLower(row.category)
		if _, ok := out[key]; ok {
			continue
		}
		var c entity.Category
		err := tx.Where("LOWER(name) = ?", key).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c = entity.Category{Name: row.category, Kind: "material"}
			err = tx.Create(&c).Error
		}
		if err != nil {
			return nil, fmt.Errorf("resolve category %q: %w", row.category, err)
		}
		out[key] = c.CategoryID
	}
	return out, nil
}

func resolveSuppliers(tx *gorm.DB, rows []importRow) (map[string]uint, error) {
	out := make(map[string]uint)
	for _, row := range rows {
		if row.supplier == "" {
			continue
		}
		key := strings.ToLower(row.supplier)
		if _, ok := out[key]; ok {
			continue
		}
		var s entity.Supplier
		err := tx.Where("LOWER(name) = ?", key).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s = entity.Supplier{Name: row.supplier, Active: true}
			err = tx.Create(&s).Error
		}
		if err != nil {
			return nil, fmt.Errorf("resolve supplier %q: %w", row.supplier, err)
		}
		out[key] = s.SupplierID
	}
	return out, nil
}
