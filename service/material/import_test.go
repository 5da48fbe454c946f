package material

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("import_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
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

const sampleCSV = `code,name,unit,category,supplier,min_stock,unit_price,location,initial_qty
al-20,Aluminium Profile 20mm,m,Metals,MetalCo,50,3.25,A1,120
scr-m6,Screw M6,un,Fasteners,MetalCo,500,0.04,B2,0
oak-18,Oak Board 18mm,m2,Wood,WoodWorks,10,22.50,C3,35.5
`

func TestImportMaterials_CreatesEverything(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	res, err := ImportMaterials(ctx, db, strings.NewReader(sampleCSV), ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Created != 3 || res.Updated != 0 || res.Skipped != 0 {
		t.Fatalf("created/updated/skipped = %d/%d/%d, want 3/0/0", res.Created, res.Updated, res.Skipped)
	}
	if res.StockEntries != 2 {
		t.Errorf("stock entries = %d, want 2", res.StockEntries)
	}

	var m entity.Material
	if err := db.Preload("Category").Preload("Supplier").Preload("Stock").
		Where("code = ?", "AL-20").First(&m).Error; err != nil {
		t.Fatalf("load AL-20: %v", err)
	}
	if m.Name != "Aluminium Profile 20mm" || m.Unit != "m" || m.MinStock != 50 {
		t.Errorf("unexpected material: %+v", m)
	}
	if m.Category == nil || m.Category.Name != "Metals" || m.Category.Kind != "material" {
		t.Errorf("category not resolved: %+v", m.Category)
	}
	if m.Supplier == nil || m.Supplier.Name != "MetalCo" {
		t.Errorf("supplier not resolved: %+v", m.Supplier)
	}
	if m.Stock == nil || m.Stock.Quantity != 120 {
		t.Errorf("initial stock not posted: %+v", m.Stock)
	}

	// Shared supplier resolved once, not duplicated
	var supplierCount int64
	db.Model(&entity.Supplier{}).Count(&supplierCount)
	if supplierCount != 2 {
		t.Errorf("suppliers = %d, want 2", supplierCount)
	}

	// Initial entry goes through the ledger, so a movement exists
	var movements int64
	db.Model(&entity.StockMovement{}).Count(&movements)
	if movements != 2 {
		t.Errorf("movements = %d, want 2", movements)
	}
}

func TestImportMaterials_UpsertsByCode(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := ImportMaterials(ctx, db, strings.NewReader(sampleCSV), ImportOptions{}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	second := `code,name,unit,min_stock,unit_price,initial_qty
AL-20,Aluminium Profile 20x20,m,60,3.40,999
new-1,Brand New Material,un,5,1.00,0
`
	res, err := ImportMaterials(ctx, db, strings.NewReader(second), ImportOptions{})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if res.Created != 1 || res.Updated != 1 {
		t.Fatalf("created/updated = %d/%d, want 1/1", res.Created, res.Updated)
	}

	var m entity.Material
	if err := db.Preload("Stock").Where("code = ?", "AL-20").First(&m).Error; err != nil {
		t.Fatalf("load AL-20: %v", err)
	}
	if m.Name != "Aluminium Profile 20x20" || m.MinStock != 60 {
		t.Errorf("update not applied: %+v", m)
	}
	// initial_qty only posts for new materials
	if m.Stock == nil || m.Stock.Quantity != 120 {
		t.Errorf("stock changed on update: %+v", m.Stock)
	}
}

func TestImportMaterials_ValidationAndDryRun(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := ImportMaterials(ctx, db, strings.NewReader("name\nNo Codes Here\n"), ImportOptions{}); err == nil {
		t.Error("expected error for missing code column")
	}

	csv := `code,name,unit_price,bogus
ok-1,Valid Row,1.50,x
,Missing Code,2.00,y
ok-2,Bad Price,abc,z
`
	res, err := ImportMaterials(ctx, db, strings.NewReader(csv), ImportOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
	var warnUnknown, warnNumber bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "bogus") {
			warnUnknown = true
		}
		if strings.Contains(w, "unit_price") {
			warnNumber = true
		}
	}
	if !warnUnknown || !warnNumber {
		t.Errorf("missing warnings: %v", res.Warnings)
	}

	var count int64
	db.Model(&entity.Material{}).Count(&count)
	if count != 0 {
		t.Errorf("dry run wrote %d materials", count)
	}
}
