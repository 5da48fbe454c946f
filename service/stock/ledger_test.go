package stock

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("ledger_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
	t.Cleanup(func() { os.Remove(tmpFile) })
	db, err := gorm.Open(sqlite.Open(tmpFile), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(entity.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func makeMaterial(t *testing.T, db *gorm.DB, name string, minStock, stockQty float64) *entity.Material {
	t.Helper()
	m := &entity.Material{Name: name, Unit: "kg", MinStock: minStock, Active: true}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}
	if err := db.Create(&entity.Stock{MaterialID: m.MaterialID, Quantity: stockQty}).Error; err != nil {
		t.Fatalf("create stock: %v", err)
	}
	return m
}

func stockQty(t *testing.T, db *gorm.DB, materialID uint) float64 {
	t.Helper()
	var s entity.Stock
	if err := db.Where("material_id = ?", materialID).First(&s).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return s.Quantity
}

func alertsFor(t *testing.T, db *gorm.DB, materialID uint, kind string) []entity.Alert {
	t.Helper()
	var alerts []entity.Alert
	if err := db.Where("material_id = ? AND kind = ?", materialID, kind).Find(&alerts).Error; err != nil {
		t.Fatalf("load alerts: %v", err)
	}
	return alerts
}

func TestApplyEntryAndExit(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	m := makeMaterial(t, db, "Steel", 0, 10)

	if err := ledger.Apply(ctx, Movement{MaterialID: m.MaterialID, Kind: entity.MovementEntry, Quantity: 5}); err != nil {
		t.Fatalf("entry: %v", err)
	}
	if got := stockQty(t, db, m.MaterialID); got != 15 {
		t.Errorf("after entry: expected 15, got %v", got)
	}

	if err := ledger.Apply(ctx, Movement{MaterialID: m.MaterialID, Kind: entity.MovementExit, Quantity: 7}); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if got := stockQty(t, db, m.MaterialID); got != 8 {
		t.Errorf("after exit: expected 8, got %v", got)
	}

	var movements []entity.StockMovement
	if err := db.Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 2 {
		t.Errorf("expected 2 movement records, got %d", len(movements))
	}
}

func TestAdjustmentSetsAbsoluteQuantity(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	m := makeMaterial(t, db, "Paint", 0, 42)

	if err := ledger.Adjust(ctx, m.MaterialID, 3.5, "stocktake", nil); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if got := stockQty(t, db, m.MaterialID); got != 3.5 {
		t.Errorf("expected 3.5, got %v", got)
	}

	// Adjustments may set any finite value, including negative.
	if err := ledger.Adjust(ctx, m.MaterialID, -2, "", nil); err != nil {
		t.Fatalf("negative adjust: %v", err)
	}
	if got := stockQty(t, db, m.MaterialID); got != -2 {
		t.Errorf("expected -2, got %v", got)
	}
}

func TestApplyValidation(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	m := makeMaterial(t, db, "Glue", 0, 10)

	cases := []Movement{
		{MaterialID: m.MaterialID, Kind: entity.MovementEntry, Quantity: 0},
		{MaterialID: m.MaterialID, Kind: entity.MovementExit, Quantity: -3},
		{MaterialID: m.MaterialID, Kind: entity.MovementEntry, Quantity: math.NaN()},
		{MaterialID: m.MaterialID, Kind: entity.MovementAdjustment, Quantity: math.Inf(1)},
		{MaterialID: m.MaterialID, Kind: "transfer", Quantity: 1},
	}
	for _, mv := range cases {
		if err := ledger.Apply(ctx, mv); !apperr.IsValidation(err) {
			t.Errorf("%s %v: expected validation error, got %v", mv.Kind, mv.Quantity, err)
		}
	}

	err := ledger.Apply(ctx, Movement{MaterialID: 999, Kind: entity.MovementEntry, Quantity: 1})
	if !apperr.IsNotFound(err) {
		t.Errorf("unknown material: expected not found, got %v", err)
	}
}

func TestExitBelowZeroRaisesOneNegativeAlert(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	m := makeMaterial(t, db, "Washer", 10, 4)

	err := ledger.Apply(ctx, Movement{MaterialID: m.MaterialID, Kind: entity.MovementExit, Quantity: 5})
	if err != nil {
		t.Fatalf("exit: %v", err)
	}
	if got := stockQty(t, db, m.MaterialID); got != -1 {
		t.Fatalf("expected -1, got %v", got)
	}

	negative := alertsFor(t, db, m.MaterialID, entity.AlertNegativeStock)
	if len(negative) != 1 {
		t.Errorf("expected exactly one negative stock alert, got %d", len(negative))
	}
	// Negative wins; below the minimum does not also raise a low alert.
	low := alertsFor(t, db, m.MaterialID, entity.AlertLowStock)
	if len(low) != 0 {
		t.Errorf("expected no low stock alert, got %d", len(low))
	}
}

func TestAlertsAreIdempotentAcrossMovements(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	m := makeMaterial(t, db, "Screw", 100, 50)

	// Already below minimum; repeated exits keep exactly one low alert.
	for i := 0; i < 3; i++ {
		if err := ledger.Apply(ctx, Movement{MaterialID: m.MaterialID, Kind: entity.MovementExit, Quantity: 1}); err != nil {
			t.Fatalf("exit %d: %v", i, err)
		}
	}
	low := alertsFor(t, db, m.MaterialID, entity.AlertLowStock)
	if len(low) != 1 {
		t.Errorf("expected exactly one low stock alert, got %d", len(low))
	}

	// Restocking clears it.
	if err := ledger.Apply(ctx, Movement{MaterialID: m.MaterialID, Kind: entity.MovementEntry, Quantity: 200}); err != nil {
		t.Fatalf("entry: %v", err)
	}
	low = alertsFor(t, db, m.MaterialID, entity.AlertLowStock)
	if len(low) != 0 {
		t.Errorf("expected alert cleared after restock, got %d", len(low))
	}
}

func TestRecheckAllRepairsState(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	a := makeMaterial(t, db, "A", 10, 3)
	b := makeMaterial(t, db, "B", 0, 5)

	count, err := ledger.RecheckAll(ctx)
	if err != nil {
		t.Fatalf("recheck all: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 materials checked, got %d", count)
	}
	if got := len(alertsFor(t, db, a.MaterialID, entity.AlertLowStock)); got != 1 {
		t.Errorf("material A: expected 1 low alert, got %d", got)
	}
	if got := len(alertsFor(t, db, b.MaterialID, entity.AlertLowStock)); got != 0 {
		t.Errorf("material B: expected no alerts, got %d", got)
	}
}
