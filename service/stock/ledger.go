package stock

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository/alert"
)

// Ledger applies stock movements and keeps the low/negative stock alerts in
// step. Movements are append-only; the stock quantity is derived state
// updated in the same transaction.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a copy bound to the given transaction so movements can post
// inside a caller's unit of work.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// Movement is a request to change a material's stock.
type Movement struct {
	MaterialID uint    `json:"material_id"`
	Kind       string  `json:"kind"`
	Quantity   float64 `json:"quantity"`
	Reason     string  `json:"reason"`
	OrderID    *uint   `json:"order_id"`
	UserID     *uint   `json:"user_id"`
}

// Apply validates and posts a movement: entry adds, exit subtracts (stock may
// go negative), adjustment sets the absolute quantity. The alert state for
// the material is recomputed in the same transaction.
func (l *Ledger) Apply(ctx context.Context, m Movement) error {
	switch m.Kind {
	case entity.MovementEntry, entity.MovementExit:
		if m.Quantity <= 0 || math.IsNaN(m.Quantity) || math.IsInf(m.Quantity, 0) {
			return apperr.Validation("quantity must be a positive number")
		}
	case entity.MovementAdjustment:
		if math.IsNaN(m.Quantity) || math.IsInf(m.Quantity, 0) {
			return apperr.Validation("quantity must be a finite number")
		}
	default:
		return apperr.Validation("movement kind must be entry, exit or adjustment")
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock entity.Stock
		err := tx.Where("material_id = ?", m.MaterialID).First(&stock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("no stock record for this material")
		}
		if err != nil {
			return apperr.Integrity(err, "loading stock")
		}

		switch m.Kind {
		case entity.MovementEntry:
			stock.Quantity += m.Quantity
		case entity.MovementExit:
			stock.Quantity -= m.Quantity
		case entity.MovementAdjustment:
			stock.Quantity = m.Quantity
		}

		err = tx.Model(&entity.Stock{}).
			Where("stock_id = ?", stock.StockID).
			Update("quantity", stock.Quantity).Error
		if err != nil {
			return apperr.Integrity(err, "updating stock")
		}

		movement := entity.StockMovement{
			StockID:  stock.StockID,
			Kind:     m.Kind,
			Quantity: m.Quantity,
			OrderID:  m.OrderID,
			UserID:   m.UserID,
			Reason:   m.Reason,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return apperr.Integrity(err, "recording movement")
		}

		return recheck(tx, m.MaterialID)
	})
}

// Adjust sets a material's stock to an exact quantity.
func (l *Ledger) Adjust(ctx context.Context, materialID uint, quantity float64, reason string, userID *uint) error {
	if reason == "" {
		reason = "inventory adjustment"
	}
	return l.Apply(ctx, Movement{
		MaterialID: materialID,
		Kind:       entity.MovementAdjustment,
		Quantity:   quantity,
		Reason:     reason,
		UserID:     userID,
	})
}

// RecheckAlerts recomputes the alert state for one material.
func (l *Ledger) RecheckAlerts(ctx context.Context, materialID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recheck(tx, materialID)
	})
}

// RecheckAll recomputes alerts for every material. Used by the hourly cron
// sweep to repair state after manual database edits.
func (l *Ledger) RecheckAll(ctx context.Context) (int, error) {
	var ids []uint
	err := l.db.WithContext(ctx).Model(&entity.Material{}).Pluck("material_id", &ids).Error
	if err != nil {
		return 0, apperr.Integrity(err, "listing materials")
	}
	for _, id := range ids {
		if err := l.RecheckAlerts(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// recheck clears the material's stock alerts and creates at most one fresh
// alert: negative stock wins over low stock. Idempotent per stock state.
func recheck(tx *gorm.DB, materialID uint) error {
	var row struct {
		Name     string
		MinStock float64
		Quantity float64
	}
	err := tx.Model(&entity.Material{}).
		Select("materials.name, materials.min_stock, stock.quantity").
		Joins("JOIN stock ON stock.material_id = materials.material_id").
		Where("materials.material_id = ?", materialID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Integrity(err, "reading stock state")
	}

	if err := alert.ClearStockAlerts(tx, materialID); err != nil {
		return err
	}

	switch {
	case row.Quantity < 0:
		return alert.Raise(tx, &entity.Alert{
			Kind:       entity.AlertNegativeStock,
			Message:    fmt.Sprintf("Negative stock: %s (%g)", row.Name, row.Quantity),
			MaterialID: &materialID,
		})
	case row.Quantity < row.MinStock:
		return alert.Raise(tx, &entity.Alert{
			Kind:       entity.AlertLowStock,
			Message:    fmt.Sprintf("Low stock: %s (%g, minimum: %g)", row.Name, row.Quantity, row.MinStock),
			MaterialID: &materialID,
		})
	}
	return nil
}
