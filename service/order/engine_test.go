package order

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

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("engine_test_%s_%d.db", t.Name(), time.Now().UnixNano()))
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

// fixture is a two-station shop with one product consuming one material.
type fixture struct {
	db       *gorm.DB
	engine   *Engine
	product  *entity.Product
	material *entity.Material
	cutting  *entity.Station
	assembly *entity.Station
}

func newFixture(t *testing.T, materialQty, tolerance, stockQty float64) *fixture {
	t.Helper()
	db := testDB(t)
	f := &fixture{db: db, engine: NewEngine(db)}

	f.cutting = &entity.Station{Name: "Cutting", DefaultSeq: 1, Active: true}
	f.assembly = &entity.Station{Name: "Assembly", DefaultSeq: 2, Active: true}
	for _, st := range []*entity.Station{f.cutting, f.assembly} {
		if err := db.Create(st).Error; err != nil {
			t.Fatalf("create station: %v", err)
		}
	}

	f.product = &entity.Product{Name: "Widget", Active: true}
	if err := db.Create(f.product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	f.material = &entity.Material{Name: "Sheet", Unit: "pcs", MinStock: 0, Active: true}
	if err := db.Create(f.material).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}
	if err := db.Create(&entity.Stock{MaterialID: f.material.MaterialID, Quantity: stockQty}).Error; err != nil {
		t.Fatalf("create stock: %v", err)
	}

	line := &entity.BOMLine{
		ProductID:    f.product.ProductID,
		Kind:         entity.BOMKindMaterial,
		MaterialID:   &f.material.MaterialID,
		Quantity:     materialQty,
		TolerancePct: tolerance,
	}
	if err := db.Create(line).Error; err != nil {
		t.Fatalf("create BOM line: %v", err)
	}
	return f
}

func (f *fixture) addService(t *testing.T, price float64) *entity.ExternalService {
	t.Helper()
	svc := &entity.ExternalService{Name: "Coating", EstimatedPrice: price, Active: true}
	if err := f.db.Create(svc).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}
	line := &entity.BOMLine{
		ProductID: f.product.ProductID,
		Kind:      entity.BOMKindService,
		ServiceID: &svc.ServiceID,
		Quantity:  1,
	}
	if err := f.db.Create(line).Error; err != nil {
		t.Fatalf("create service line: %v", err)
	}
	return svc
}

func (f *fixture) create(t *testing.T, qty float64) *entity.Order {
	t.Helper()
	res, err := f.engine.Create(context.Background(), CreateRequest{
		ProductID: f.product.ProductID,
		Quantity:  qty,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return res.Order
}

func (f *fixture) orderState(t *testing.T, id uint) string {
	t.Helper()
	var o entity.Order
	if err := f.db.First(&o, id).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	return o.State
}

func (f *fixture) stockQty(t *testing.T) float64 {
	t.Helper()
	var s entity.Stock
	if err := f.db.Where("material_id = ?", f.material.MaterialID).First(&s).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return s.Quantity
}

func TestCreateSnapshotsOrder(t *testing.T) {
	f := newFixture(t, 4, 0, 10)
	ctx := context.Background()

	res, err := f.engine.Create(ctx, CreateRequest{ProductID: f.product.ProductID, Quantity: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o := res.Order

	year := time.Now().Year()
	if want := fmt.Sprintf("ORD-%d-0001", year); o.Number != want {
		t.Errorf("expected number %s, got %s", want, o.Number)
	}
	if o.State != entity.OrderStatePending {
		t.Errorf("expected pending, got %s", o.State)
	}
	if o.Priority != 2 {
		t.Errorf("expected default priority 2, got %d", o.Priority)
	}

	var stations []entity.OrderStation
	if err := f.db.Where("order_id = ?", o.OrderID).Order("seq").Find(&stations).Error; err != nil {
		t.Fatalf("load stations: %v", err)
	}
	if len(stations) != 2 || stations[0].StationID != f.cutting.StationID {
		t.Fatalf("expected default station sequence, got %+v", stations)
	}

	var materials []entity.OrderMaterial
	if err := f.db.Where("order_id = ?", o.OrderID).Find(&materials).Error; err != nil {
		t.Fatalf("load materials: %v", err)
	}
	if len(materials) != 1 || materials[0].RequiredQty != 8 {
		t.Fatalf("expected one material needing 8, got %+v", materials)
	}
	if materials[0].UsedQty != 0 {
		t.Errorf("expected used 0 before completion, got %v", materials[0].UsedQty)
	}
	if res.Shortages != 0 {
		t.Errorf("expected no shortages with stock 10, got %d", res.Shortages)
	}

	// Numbers are monotonic within the year.
	second := f.create(t, 1)
	if want := fmt.Sprintf("ORD-%d-0002", year); second.Number != want {
		t.Errorf("expected number %s, got %s", want, second.Number)
	}
}

func TestCreateUsesProductStationConfig(t *testing.T) {
	f := newFixture(t, 1, 0, 10)

	// Configure only assembly for this product, overriding the global list.
	cfg := &entity.ProductStation{
		ProductID: f.product.ProductID,
		StationID: f.assembly.StationID,
		Seq:       1,
		Required:  true,
	}
	if err := f.db.Create(cfg).Error; err != nil {
		t.Fatalf("create product station: %v", err)
	}

	o := f.create(t, 1)
	var stations []entity.OrderStation
	if err := f.db.Where("order_id = ?", o.OrderID).Find(&stations).Error; err != nil {
		t.Fatalf("load stations: %v", err)
	}
	if len(stations) != 1 || stations[0].StationID != f.assembly.StationID {
		t.Fatalf("expected the configured station only, got %+v", stations)
	}
}

func TestCreateFlagsShortages(t *testing.T) {
	f := newFixture(t, 4, 0, 3)
	ctx := context.Background()

	res, err := f.engine.Create(ctx, CreateRequest{ProductID: f.product.ProductID, Quantity: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Shortages != 1 {
		t.Fatalf("expected 1 shortage, got %d", res.Shortages)
	}

	var alerts []entity.Alert
	err = f.db.Where("order_id = ? AND kind = ?", res.Order.OrderID, entity.AlertMaterialShortage).
		Find(&alerts).Error
	if err != nil {
		t.Fatalf("load alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected one shortage alert, got %d", len(alerts))
	}
	if !strings.Contains(alerts[0].Message, res.Order.Number) {
		t.Errorf("alert should name the order: %s", alerts[0].Message)
	}

	// Shortage is advisory: the order still exists and is pending.
	if got := f.orderState(t, res.Order.OrderID); got != entity.OrderStatePending {
		t.Errorf("expected pending, got %s", got)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, 1, 0, 10)
	ctx := context.Background()

	if _, err := f.engine.Create(ctx, CreateRequest{ProductID: f.product.ProductID, Quantity: 0}); !apperr.IsValidation(err) {
		t.Errorf("zero quantity: expected validation error, got %v", err)
	}
	if _, err := f.engine.Create(ctx, CreateRequest{ProductID: f.product.ProductID, Quantity: 1, Priority: 9}); !apperr.IsValidation(err) {
		t.Errorf("bad priority: expected validation error, got %v", err)
	}
	if _, err := f.engine.Create(ctx, CreateRequest{ProductID: 999, Quantity: 1}); !apperr.IsNotFound(err) {
		t.Errorf("unknown product: expected not found, got %v", err)
	}
}

func TestFullLifecycleConsumesStock(t *testing.T) {
	f := newFixture(t, 4, 0, 10)
	ctx := context.Background()
	o := f.create(t, 2) // needs 8 of the material

	if err := f.engine.Start(ctx, o.OrderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := f.orderState(t, o.OrderID); got != entity.OrderStateInProd {
		t.Fatalf("expected in_production, got %s", got)
	}

	var first entity.OrderStation
	err := f.db.Where("order_id = ? AND state = ?", o.OrderID, entity.StationStateInProgress).First(&first).Error
	if err != nil {
		t.Fatalf("expected first station in progress: %v", err)
	}
	if first.StationID != f.cutting.StationID || first.StartedAt == nil {
		t.Fatalf("unexpected first station: %+v", first)
	}

	state, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, "done")
	if err != nil {
		t.Fatalf("advance cutting: %v", err)
	}
	if state != entity.OrderStateInProd {
		t.Fatalf("expected in_production after first advance, got %s", state)
	}

	state, err = f.engine.Advance(ctx, o.OrderID, f.assembly.StationID, "")
	if err != nil {
		t.Fatalf("advance assembly: %v", err)
	}
	if state != entity.OrderStateCompleted {
		t.Fatalf("expected completed, got %s", state)
	}
	if got := f.stockQty(t); got != 2 {
		t.Errorf("expected stock 2 after consuming 8, got %v", got)
	}

	var mat entity.OrderMaterial
	if err := f.db.Where("order_id = ?", o.OrderID).First(&mat).Error; err != nil {
		t.Fatalf("load order material: %v", err)
	}
	if mat.UsedQty != 8 {
		t.Errorf("expected used 8, got %v", mat.UsedQty)
	}

	var movements []entity.StockMovement
	if err := f.db.Where("order_id = ?", o.OrderID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 || movements[0].Kind != entity.MovementExit || movements[0].Quantity != 8 {
		t.Fatalf("expected one exit of 8, got %+v", movements)
	}

	var cut entity.OrderStation
	if err := f.db.Where("order_id = ? AND station_id = ?", o.OrderID, f.cutting.StationID).First(&cut).Error; err != nil {
		t.Fatalf("load station: %v", err)
	}
	if cut.State != entity.StationStateCompleted || cut.FinishedAt == nil || cut.ElapsedMin == nil {
		t.Errorf("expected completed station with timing, got %+v", cut)
	}
	if cut.Notes != "done" {
		t.Errorf("expected notes recorded, got %q", cut.Notes)
	}
}

func TestAdvanceBlocksOnOutstandingServices(t *testing.T) {
	f := newFixture(t, 1, 0, 100)
	svc := f.addService(t, 10)
	ctx := context.Background()
	o := f.create(t, 1)

	if err := f.engine.Start(ctx, o.OrderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, ""); err != nil {
		t.Fatalf("advance cutting: %v", err)
	}
	state, err := f.engine.Advance(ctx, o.OrderID, f.assembly.StationID, "")
	if err != nil {
		t.Fatalf("advance assembly: %v", err)
	}
	if state != entity.OrderStateAwaitingExt {
		t.Fatalf("expected awaiting_external, got %s", state)
	}
	if got := f.stockQty(t); got != 100 {
		t.Errorf("stock must not move before completion, got %v", got)
	}

	if err := f.engine.MarkServiceSent(ctx, o.OrderID, svc.ServiceID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	state, err = f.engine.MarkServiceReceived(ctx, o.OrderID, svc.ServiceID)
	if err != nil {
		t.Fatalf("mark received: %v", err)
	}
	if state != entity.OrderStateCompleted {
		t.Fatalf("expected completed after last service, got %s", state)
	}
	if got := f.stockQty(t); got != 99 {
		t.Errorf("expected stock 99, got %v", got)
	}

	// Receiving twice is rejected.
	if _, err := f.engine.MarkServiceReceived(ctx, o.OrderID, svc.ServiceID); !apperr.IsNotFound(err) {
		t.Errorf("expected not found on double receive, got %v", err)
	}
}

func TestServiceReceivedBeforeStationsDoesNotComplete(t *testing.T) {
	f := newFixture(t, 1, 0, 100)
	svc := f.addService(t, 10)
	ctx := context.Background()
	o := f.create(t, 1)

	if err := f.engine.Start(ctx, o.OrderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	state, err := f.engine.MarkServiceReceived(ctx, o.OrderID, svc.ServiceID)
	if err != nil {
		t.Fatalf("mark received: %v", err)
	}
	if state != entity.OrderStateInProd {
		t.Fatalf("expected order still in production, got %s", state)
	}

	// With services already back, finishing the stations completes directly.
	if _, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, ""); err != nil {
		t.Fatalf("advance cutting: %v", err)
	}
	state, err = f.engine.Advance(ctx, o.OrderID, f.assembly.StationID, "")
	if err != nil {
		t.Fatalf("advance assembly: %v", err)
	}
	if state != entity.OrderStateCompleted {
		t.Fatalf("expected completed, got %s", state)
	}
}

func TestSkipDoesNotComplete(t *testing.T) {
	f := newFixture(t, 1, 0, 100)
	ctx := context.Background()
	o := f.create(t, 1)

	if err := f.engine.Start(ctx, o.OrderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, ""); err != nil {
		t.Fatalf("advance cutting: %v", err)
	}
	if err := f.engine.Skip(ctx, o.OrderID, f.assembly.StationID, "machine down"); err != nil {
		t.Fatalf("skip: %v", err)
	}

	// Skipping the last station leaves the order in production; no stock
	// moves and nothing completes.
	if got := f.orderState(t, o.OrderID); got != entity.OrderStateInProd {
		t.Errorf("expected in_production, got %s", got)
	}
	if got := f.stockQty(t); got != 100 {
		t.Errorf("expected untouched stock, got %v", got)
	}

	var st entity.OrderStation
	if err := f.db.Where("order_id = ? AND station_id = ?", o.OrderID, f.assembly.StationID).First(&st).Error; err != nil {
		t.Fatalf("load station: %v", err)
	}
	if st.State != entity.StationStateSkipped || st.Notes != "machine down" {
		t.Errorf("unexpected skipped station: %+v", st)
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t, 1, 0, 100)
	ctx := context.Background()
	o := f.create(t, 1)

	// Advance before start.
	if _, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, ""); !apperr.IsConflict(err) {
		t.Errorf("advance pending order: expected conflict, got %v", err)
	}

	if err := f.engine.Start(ctx, o.OrderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Double start.
	if err := f.engine.Start(ctx, o.OrderID); !apperr.IsConflict(err) {
		t.Errorf("double start: expected conflict, got %v", err)
	}
	// Unknown order.
	if err := f.engine.Start(ctx, 999); !apperr.IsNotFound(err) {
		t.Errorf("unknown order: expected not found, got %v", err)
	}
	// Station not in the order.
	if _, err := f.engine.Advance(ctx, o.OrderID, 999, ""); !apperr.IsNotFound(err) {
		t.Errorf("unknown station: expected not found, got %v", err)
	}

	// Advancing an already-completed station.
	if _, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, ""); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := f.engine.Advance(ctx, o.OrderID, f.cutting.StationID, ""); !apperr.IsConflict(err) {
		t.Errorf("re-advance: expected conflict, got %v", err)
	}
}

func TestCancelOnlyPending(t *testing.T) {
	f := newFixture(t, 4, 0, 3) // shortage -> alert rows exist
	ctx := context.Background()
	o := f.create(t, 2)

	if err := f.engine.Cancel(ctx, o.OrderID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	for name, model := range map[string]interface{}{
		"stations":  &entity.OrderStation{},
		"materials": &entity.OrderMaterial{},
		"services":  &entity.OrderService{},
		"alerts":    &entity.Alert{},
	} {
		var count int64
		if err := f.db.Model(model).Where("order_id = ?", o.OrderID).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("expected %s cascade-deleted, got %d rows", name, count)
		}
	}

	// Started orders cannot be cancelled.
	o2 := f.create(t, 1)
	if err := f.engine.Start(ctx, o2.OrderID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.Cancel(ctx, o2.OrderID); !apperr.IsConflict(err) {
		t.Errorf("cancel started order: expected conflict, got %v", err)
	}
	if err := f.engine.Cancel(ctx, 999); !apperr.IsNotFound(err) {
		t.Errorf("cancel unknown order: expected not found, got %v", err)
	}
}

func TestCheckStockStatuses(t *testing.T) {
	f := newFixture(t, 4, 0, 3)
	ctx := context.Background()

	checks, err := f.engine.CheckStock(ctx, f.product.ProductID, 2)
	if err != nil {
		t.Fatalf("check stock: %v", err)
	}
	if len(checks) != 1 || checks[0].Status != "low" {
		t.Fatalf("expected low status with partial stock, got %+v", checks)
	}

	if err := f.db.Model(&entity.Stock{}).Where("material_id = ?", f.material.MaterialID).
		Update("quantity", 0).Error; err != nil {
		t.Fatalf("zero stock: %v", err)
	}
	checks, err = f.engine.CheckStock(ctx, f.product.ProductID, 2)
	if err != nil {
		t.Fatalf("check stock: %v", err)
	}
	if checks[0].Status != "insufficient" {
		t.Errorf("expected insufficient with zero stock, got %s", checks[0].Status)
	}
}
