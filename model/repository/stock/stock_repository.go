package stock

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// Row is one line of the stock overview: material joined with its on-hand
// quantity and a derived status.
type Row struct {
	MaterialID uint    `json:"material_id"`
	Name       string  `json:"name"`
	Code       *string `json:"code"`
	Unit       string  `json:"unit"`
	MinStock   float64 `json:"min_stock"`
	UnitPrice  float64 `json:"unit_price"`
	Location   string  `json:"location"`
	StockID    uint    `json:"stock_id"`
	Quantity   float64 `json:"quantity"`
	Status     string  `json:"status"`
}

// OverviewFilter narrows the stock overview.
type OverviewFilter struct {
	CategoryID *uint  `mapstructure:"category_id"`
	Status     string `mapstructure:"status"` // ok/low/negative
}

// Overview lists active materials with current stock and status.
func (r *StockRepository) Overview(ctx context.Context, f OverviewFilter) ([]Row, error) {
	query := r.db.WithContext(ctx).Model(&entity.Material{}).
		Select(`materials.material_id, materials.name, materials.code, materials.unit,
			materials.min_stock, materials.unit_price, materials.location,
			stock.stock_id, COALESCE(stock.quantity, 0) AS quantity`).
		Joins("LEFT JOIN stock ON stock.material_id = materials.material_id").
		Where("materials.active = ?", true)
	if f.CategoryID != nil {
		query = query.Where("materials.category_id = ?", *f.CategoryID)
	}
	var rows []Row
	if err := query.Order("materials.name").Scan(&rows).Error; err != nil {
		return nil, repository.Translate(err, "stock")
	}
	for i := range rows {
		rows[i].Status = StatusFor(rows[i].Quantity, rows[i].MinStock)
	}
	if f.Status != "" {
		filtered := rows[:0]
		for _, row := range rows {
			if row.Status == f.Status {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	return rows, nil
}

// StatusFor derives the overview status from quantity vs threshold.
func StatusFor(quantity, minStock float64) string {
	switch {
	case quantity < 0:
		return entity.StockStatusNegative
	case quantity < minStock:
		return entity.StockStatusLow
	default:
		return entity.StockStatusOK
	}
}

// GetByMaterial returns the stock row owned by a material.
func (r *StockRepository) GetByMaterial(ctx context.Context, materialID uint) (*entity.Stock, error) {
	var s entity.Stock
	err := r.db.WithContext(ctx).Where("material_id = ?", materialID).First(&s).Error
	if err != nil {
		return nil, repository.Translate(err, "stock")
	}
	return &s, nil
}

// MovementRow is a movement joined with material and order context for
// history listings.
type MovementRow struct {
	MovementID   uint      `json:"id"`
	StockID      uint      `json:"stock_id"`
	MaterialID   uint      `json:"material_id"`
	MaterialName string    `json:"material_name"`
	MaterialCode *string   `json:"material_code"`
	Unit         string    `json:"unit"`
	Kind         string    `json:"kind"`
	Quantity     float64   `json:"quantity"`
	OrderID      *uint     `json:"order_id"`
	OrderNumber  *string   `json:"order_number"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *StockRepository) movementQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entity.StockMovement{}).
		Select(`stock_movements.movement_id, stock_movements.stock_id, stock.material_id,
			materials.name AS material_name, materials.code AS material_code, materials.unit,
			stock_movements.kind, stock_movements.quantity, stock_movements.order_id,
			orders.number AS order_number, stock_movements.reason, stock_movements.created_at`).
		Joins("JOIN stock ON stock.stock_id = stock_movements.stock_id").
		Joins("JOIN materials ON materials.material_id = stock.material_id").
		Joins("LEFT JOIN orders ON orders.order_id = stock_movements.order_id")
}

// Movements lists a material's movement history, newest first.
func (r *StockRepository) Movements(ctx context.Context, materialID uint, limit int) ([]MovementRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []MovementRow
	err := r.movementQuery(ctx).
		Where("stock.material_id = ?", materialID).
		Order("stock_movements.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, repository.Translate(err, "stock movements")
	}
	return rows, nil
}

// RecentMovements lists the latest movements across all materials.
func (r *StockRepository) RecentMovements(ctx context.Context, limit int) ([]MovementRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []MovementRow
	err := r.movementQuery(ctx).
		Order("stock_movements.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, repository.Translate(err, "stock movements")
	}
	return rows, nil
}
