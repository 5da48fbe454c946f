package order

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// ListFilter narrows order listings. State "active" expands to every
// non-completed state.
type ListFilter struct {
	State     string `mapstructure:"state"`
	Priority  *int   `mapstructure:"priority"`
	ProductID *uint  `mapstructure:"product_id"`
	Limit     int    `mapstructure:"limit"`
}

func (r *OrderRepository) List(ctx context.Context, f ListFilter) ([]entity.Order, error) {
	query := r.db.WithContext(ctx).Model(&entity.Order{}).
		Preload("Product").
		Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Stations.Station")
	switch f.State {
	case "":
	case "active":
		query = query.Where("state IN ?", entity.ActiveOrderStates)
	default:
		query = query.Where("state = ?", f.State)
	}
	if f.Priority != nil {
		query = query.Where("priority = ?", *f.Priority)
	}
	if f.ProductID != nil {
		query = query.Where("product_id = ?", *f.ProductID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	var orders []entity.Order
	err := query.
		Order("priority DESC, due_date, created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, repository.Translate(err, "orders")
	}
	return orders, nil
}

// Get loads an order with its full station/material/service snapshots.
func (r *OrderRepository) Get(ctx context.Context, id uint) (*entity.Order, error) {
	var o entity.Order
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Stations.Station").
		Preload("Materials").
		Preload("Materials.Material").
		Preload("Materials.Material.Stock").
		Preload("Services").
		Preload("Services.Service").
		Preload("Services.Service.Supplier").
		First(&o, id).Error
	if err != nil {
		return nil, repository.Translate(err, "order")
	}
	return &o, nil
}

// HeaderUpdate carries the mutable order header fields.
type HeaderUpdate struct {
	CustomerName string
	DueDate      interface{}
	Priority     int
	Notes        string
}

// UpdateHeader changes scheduling/annotation fields. State is owned by the
// engine and never touched here.
func (r *OrderRepository) UpdateHeader(ctx context.Context, id uint, h HeaderUpdate) error {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("order_id = ?", id).
		Updates(map[string]interface{}{
			"customer_name": h.CustomerName,
			"due_date":      h.DueDate,
			"priority":      h.Priority,
			"notes":         h.Notes,
		})
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating order")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("order not found")
	}
	return nil
}

// NextNumber allocates the next order number (ORD-YYYY-NNNN, monotonic per
// year) from the sequence counter. Must run inside the caller's transaction
// so a failed creation does not burn numbers visibly out of order.
func NextNumber(tx *gorm.DB, now time.Time) (string, error) {
	year := now.Year()
	seq := entity.OrderSequence{Year: year}
	if err := tx.Where("year = ?", year).FirstOrCreate(&seq).Error; err != nil {
		return "", apperr.Integrity(err, "loading order sequence")
	}
	if err := tx.Model(&entity.OrderSequence{}).
		Where("year = ?", year).
		Update("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
		return "", apperr.Integrity(err, "advancing order sequence")
	}
	if err := tx.Where("year = ?", year).First(&seq).Error; err != nil {
		return "", apperr.Integrity(err, "reading order sequence")
	}
	return fmt.Sprintf("ORD-%d-%04d", year, seq.LastNumber), nil
}
