package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
	"github.com/nunomansilhas/ProduFlow/model/repository/alert"
	orderRepo "github.com/nunomansilhas/ProduFlow/model/repository/order"
	"github.com/nunomansilhas/ProduFlow/service/bom"
	"github.com/nunomansilhas/ProduFlow/service/stock"
)

// Engine owns the production order lifecycle:
//
//	pending -> in_production -> (awaiting_external ->) completed
//
// State only moves forward. Station, material and service snapshots are
// taken at creation and never re-derived from the live BOM.
type Engine struct {
	db     *gorm.DB
	orders *orderRepo.OrderRepository
	bom    *bom.Service
	ledger *stock.Ledger
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:     db,
		orders: orderRepo.NewOrderRepository(db),
		bom:    bom.NewService(db),
		ledger: stock.NewLedger(db),
	}
}

// CreateRequest carries the order creation input.
type CreateRequest struct {
	ProductID    uint            `json:"product_id"`
	Quantity     float64         `json:"quantity"`
	CustomerName string          `json:"customer_name"`
	DueDate      *datatypes.Date `json:"due_date"`
	Priority     int             `json:"priority"`
	Notes        string          `json:"notes"`
}

// CreateResult reports the created order and how many material shortages were
// flagged. Shortages never block creation; they surface as alerts.
type CreateResult struct {
	Order     *entity.Order `json:"order"`
	Shortages int           `json:"shortages"`
}

// Create allocates an order number, inserts the order and snapshots its
// stations (product configuration, else the global active sequence), its
// flattened material demand and its distinct outsourced services. Material
// shortages raise advisory alerts.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Quantity <= 0 || math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
		return nil, apperr.Validation("quantity must be a positive number")
	}
	if req.Priority == 0 {
		req.Priority = 2
	}
	if req.Priority < 1 || req.Priority > 4 {
		return nil, apperr.Validation("priority must be between 1 and 4")
	}

	result := &CreateResult{}
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product entity.Product
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			return repository.Translate(err, "product")
		}

		number, err := orderRepo.NextNumber(tx, time.Now())
		if err != nil {
			return err
		}

		o := entity.Order{
			Number:       number,
			ProductID:    req.ProductID,
			Quantity:     req.Quantity,
			CustomerName: req.CustomerName,
			DueDate:      req.DueDate,
			Priority:     req.Priority,
			State:        entity.OrderStatePending,
			Notes:        req.Notes,
		}
		if err := tx.Create(&o).Error; err != nil {
			return apperr.Integrity(err, "creating order")
		}

		if err := snapshotStations(tx, &o); err != nil {
			return err
		}

		shortages, err := e.snapshotMaterials(ctx, tx, &o)
		if err != nil {
			return err
		}
		result.Shortages = shortages

		if err := snapshotServices(tx, &o); err != nil {
			return err
		}

		result.Order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func snapshotStations(tx *gorm.DB, o *entity.Order) error {
	var configured []entity.ProductStation
	err := tx.Where("product_id = ?", o.ProductID).Order("seq").Find(&configured).Error
	if err != nil {
		return apperr.Integrity(err, "loading product stations")
	}

	if len(configured) > 0 {
		for _, ps := range configured {
			row := entity.OrderStation{
				OrderID:   o.OrderID,
				StationID: ps.StationID,
				Seq:       ps.Seq,
				State:     entity.StationStatePending,
			}
			if err := tx.Create(&row).Error; err != nil {
				return apperr.Integrity(err, "creating order station")
			}
		}
		return nil
	}

	// No per-product configuration: fall back to the global active sequence.
	var stations []entity.Station
	err = tx.Where("active = ?", true).Order("default_seq").Find(&stations).Error
	if err != nil {
		return apperr.Integrity(err, "loading default stations")
	}
	for _, st := range stations {
		row := entity.OrderStation{
			OrderID:   o.OrderID,
			StationID: st.StationID,
			Seq:       st.DefaultSeq,
			State:     entity.StationStatePending,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.Integrity(err, "creating order station")
		}
	}
	return nil
}

func (e *Engine) snapshotMaterials(ctx context.Context, tx *gorm.DB, o *entity.Order) (int, error) {
	requirements, err := e.bom.WithTx(tx).Resolve(ctx, o.ProductID, o.Quantity)
	if err != nil {
		return 0, err
	}

	shortages := 0
	for _, req := range requirements {
		row := entity.OrderMaterial{
			OrderID:     o.OrderID,
			MaterialID:  req.MaterialID,
			RequiredQty: req.RequiredQty,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, apperr.Integrity(err, "creating order material")
		}

		if req.Available < req.RequiredQty {
			shortages++
			materialID := req.MaterialID
			a := entity.Alert{
				Kind: entity.AlertMaterialShortage,
				Message: fmt.Sprintf("Insufficient material for %s: %s (required: %g, available: %g)",
					o.Number, req.Name, req.RequiredQty, req.Available),
				MaterialID: &materialID,
				OrderID:    &o.OrderID,
			}
			if err := alert.Raise(tx, &a); err != nil {
				return 0, err
			}
		}
	}
	return shortages, nil
}

func snapshotServices(tx *gorm.DB, o *entity.Order) error {
	var serviceIDs []uint
	err := tx.Model(&entity.BOMLine{}).
		Distinct("service_id").
		Where("product_id = ? AND kind = ?", o.ProductID, entity.BOMKindService).
		Pluck("service_id", &serviceIDs).Error
	if err != nil {
		return apperr.Integrity(err, "loading BOM services")
	}
	for _, id := range serviceIDs {
		row := entity.OrderService{
			OrderID:   o.OrderID,
			ServiceID: id,
			State:     entity.OrderServicePending,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.Integrity(err, "creating order service")
		}
	}
	return nil
}

// Start moves a pending order into production and opens its first station.
func (e *Engine) Start(ctx context.Context, orderID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Order{}).
			Where("order_id = ? AND state = ?", orderID, entity.OrderStatePending).
			Update("state", entity.OrderStateInProd)
		if res.Error != nil {
			return apperr.Integrity(res.Error, "starting order")
		}
		if res.RowsAffected == 0 {
			var o entity.Order
			if err := tx.First(&o, orderID).Error; err != nil {
				return repository.Translate(err, "order")
			}
			return apperr.Conflict("order is not pending")
		}
		return startNextStation(tx, orderID, time.Now())
	})
}

// startNextStation opens the lowest-sequence pending station, if any.
func startNextStation(tx *gorm.DB, orderID uint, now time.Time) error {
	var next entity.OrderStation
	err := tx.Where("order_id = ? AND state = ?", orderID, entity.StationStatePending).
		Order("seq").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Integrity(err, "loading next station")
	}
	err = tx.Model(&entity.OrderStation{}).
		Where("order_station_id = ?", next.OrderStationID).
		Updates(map[string]interface{}{
			"state":      entity.StationStateInProgress,
			"started_at": now,
		}).Error
	if err != nil {
		return apperr.Integrity(err, "starting station")
	}
	return nil
}

// Advance closes the given station and moves on: next pending station starts;
// with none left the order either waits on unreceived services or completes,
// consuming its materials. Returns the resulting order state.
func (e *Engine) Advance(ctx context.Context, orderID, stationID uint, notes string) (string, error) {
	state := ""
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o entity.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return repository.Translate(err, "order")
		}
		if o.State != entity.OrderStateInProd {
			return apperr.Conflict("order is not in production")
		}

		st, err := loadOpenStation(tx, orderID, stationID)
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"state":       entity.StationStateCompleted,
			"finished_at": now,
		}
		if st.StartedAt != nil {
			updates["elapsed_min"] = int64(now.Sub(*st.StartedAt) / time.Minute)
		}
		if notes != "" {
			appended := notes
			if st.Notes != "" {
				appended = st.Notes + "\n" + notes
			}
			updates["notes"] = appended
		}
		err = tx.Model(&entity.OrderStation{}).
			Where("order_station_id = ?", st.OrderStationID).
			Updates(updates).Error
		if err != nil {
			return apperr.Integrity(err, "completing station")
		}

		var pending int64
		err = tx.Model(&entity.OrderStation{}).
			Where("order_id = ? AND state = ?", orderID, entity.StationStatePending).
			Count(&pending).Error
		if err != nil {
			return apperr.Integrity(err, "counting stations")
		}
		if pending > 0 {
			state = entity.OrderStateInProd
			return startNextStation(tx, orderID, now)
		}

		unreceived, err := countUnreceivedServices(tx, orderID)
		if err != nil {
			return err
		}
		if unreceived > 0 {
			state = entity.OrderStateAwaitingExt
			err := tx.Model(&entity.Order{}).
				Where("order_id = ?", orderID).
				Update("state", entity.OrderStateAwaitingExt).Error
			if err != nil {
				return apperr.Integrity(err, "updating order state")
			}
			return nil
		}

		state = entity.OrderStateCompleted
		return e.complete(ctx, tx, &o)
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// Skip marks the station skipped and opens the next pending one. Unlike
// Advance it never completes the order: skipping the last station leaves the
// order in production until something else advances it.
func (e *Engine) Skip(ctx context.Context, orderID, stationID uint, reason string) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o entity.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return repository.Translate(err, "order")
		}
		if o.State != entity.OrderStateInProd {
			return apperr.Conflict("order is not in production")
		}

		st, err := loadOpenStation(tx, orderID, stationID)
		if err != nil {
			return err
		}

		if reason == "" {
			reason = "skipped"
		}
		err = tx.Model(&entity.OrderStation{}).
			Where("order_station_id = ?", st.OrderStationID).
			Updates(map[string]interface{}{
				"state": entity.StationStateSkipped,
				"notes": reason,
			}).Error
		if err != nil {
			return apperr.Integrity(err, "skipping station")
		}

		return startNextStation(tx, orderID, time.Now())
	})
}

// loadOpenStation fetches the order's snapshot row for a station and rejects
// ones already finished.
func loadOpenStation(tx *gorm.DB, orderID, stationID uint) (*entity.OrderStation, error) {
	var st entity.OrderStation
	err := tx.Where("order_id = ? AND station_id = ?", orderID, stationID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("station not part of this order")
	}
	if err != nil {
		return nil, apperr.Integrity(err, "loading order station")
	}
	if st.State != entity.StationStatePending && st.State != entity.StationStateInProgress {
		return nil, apperr.Conflict("station is already finished")
	}
	return &st, nil
}

func countUnreceivedServices(tx *gorm.DB, orderID uint) (int64, error) {
	var count int64
	err := tx.Model(&entity.OrderService{}).
		Where("order_id = ? AND state <> ?", orderID, entity.OrderServiceReceived).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Integrity(err, "counting order services")
	}
	return count, nil
}

// complete finishes the order and consumes its material snapshot: one exit
// movement per material at the required quantity, used set to required.
func (e *Engine) complete(ctx context.Context, tx *gorm.DB, o *entity.Order) error {
	err := tx.Model(&entity.Order{}).
		Where("order_id = ?", o.OrderID).
		Update("state", entity.OrderStateCompleted).Error
	if err != nil {
		return apperr.Integrity(err, "completing order")
	}

	var materials []entity.OrderMaterial
	if err := tx.Where("order_id = ?", o.OrderID).Find(&materials).Error; err != nil {
		return apperr.Integrity(err, "loading order materials")
	}

	ledger := e.ledger.WithTx(tx)
	for _, m := range materials {
		if m.RequiredQty > 0 {
			err := ledger.Apply(ctx, stock.Movement{
				MaterialID: m.MaterialID,
				Kind:       entity.MovementExit,
				Quantity:   m.RequiredQty,
				Reason:     "production consumption",
				OrderID:    &o.OrderID,
			})
			if err != nil {
				return err
			}
		}
		err := tx.Model(&entity.OrderMaterial{}).
			Where("order_material_id = ?", m.OrderMaterialID).
			Update("used_qty", m.RequiredQty).Error
		if err != nil {
			return apperr.Integrity(err, "updating used quantity")
		}
	}
	return nil
}

// Cancel hard-deletes a pending order with its snapshots and alerts. Orders
// past pending cannot be cancelled.
func (e *Engine) Cancel(ctx context.Context, orderID uint) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o entity.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return repository.Translate(err, "order")
		}
		if o.State != entity.OrderStatePending {
			return apperr.Conflict("only pending orders can be cancelled")
		}

		for _, del := range []interface{}{
			&entity.OrderStation{},
			&entity.OrderMaterial{},
			&entity.OrderService{},
			&entity.Alert{},
		} {
			if err := tx.Where("order_id = ?", orderID).Delete(del).Error; err != nil {
				return apperr.Integrity(err, "cancelling order")
			}
		}
		if err := tx.Delete(&entity.Order{}, orderID).Error; err != nil {
			return apperr.Integrity(err, "cancelling order")
		}
		return nil
	})
}

// MarkServiceSent flags an outsourced service as dispatched.
func (e *Engine) MarkServiceSent(ctx context.Context, orderID, serviceID uint) error {
	res := e.db.WithContext(ctx).Model(&entity.OrderService{}).
		Where("order_id = ? AND service_id = ? AND state = ?", orderID, serviceID, entity.OrderServicePending).
		Updates(map[string]interface{}{
			"state":   entity.OrderServiceSent,
			"sent_at": time.Now(),
		})
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating order service")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("pending service not found for this order")
	}
	return nil
}

// MarkServiceReceived flags an outsourced service as returned. When the last
// outstanding service of an order stuck in awaiting_external comes back, the
// order completes.
func (e *Engine) MarkServiceReceived(ctx context.Context, orderID, serviceID uint) (string, error) {
	state := ""
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.OrderService{}).
			Where("order_id = ? AND service_id = ? AND state <> ?", orderID, serviceID, entity.OrderServiceReceived).
			Updates(map[string]interface{}{
				"state":       entity.OrderServiceReceived,
				"received_at": time.Now(),
			})
		if res.Error != nil {
			return apperr.Integrity(res.Error, "updating order service")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("outstanding service not found for this order")
		}

		var o entity.Order
		if err := tx.First(&o, orderID).Error; err != nil {
			return repository.Translate(err, "order")
		}
		state = o.State

		unreceived, err := countUnreceivedServices(tx, orderID)
		if err != nil {
			return err
		}
		if unreceived == 0 && o.State == entity.OrderStateAwaitingExt {
			state = entity.OrderStateCompleted
			return e.complete(ctx, tx, &o)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return state, nil
}

// StockCheck is one material requirement with an availability verdict.
type StockCheck struct {
	bom.Requirement
	Status string `json:"status"` // ok | low | insufficient
}

// CheckStock previews material availability for a hypothetical order without
// creating anything.
func (e *Engine) CheckStock(ctx context.Context, productID uint, qty float64) ([]StockCheck, error) {
	requirements, err := e.bom.Resolve(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	out := make([]StockCheck, len(requirements))
	for i, req := range requirements {
		status := "insufficient"
		switch {
		case req.Available >= req.RequiredQty:
			status = "ok"
		case req.Available > 0:
			status = "low"
		}
		out[i] = StockCheck{Requirement: req, Status: status}
	}
	return out, nil
}

// List, Get and UpdateHeader pass through to the repository so the API layer
// has a single order-facing surface.
func (e *Engine) List(ctx context.Context, f orderRepo.ListFilter) ([]entity.Order, error) {
	return e.orders.List(ctx, f)
}

func (e *Engine) Get(ctx context.Context, id uint) (*entity.Order, error) {
	return e.orders.Get(ctx, id)
}

func (e *Engine) UpdateHeader(ctx context.Context, id uint, h orderRepo.HeaderUpdate) error {
	return e.orders.UpdateHeader(ctx, id, h)
}
