package entity

import "time"

// Material is a raw material. Owns exactly one Stock row, created with it.
type Material struct {
	MaterialID uint      `gorm:"column:material_id;primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;type:varchar(150);not null" json:"name"`
	Code       *string   `gorm:"column:code;type:varchar(64);uniqueIndex" json:"code"`
	CategoryID *uint     `gorm:"column:category_id;index" json:"category_id"`
	Unit       string    `gorm:"column:unit;type:varchar(20);not null" json:"unit"`
	SupplierID *uint     `gorm:"column:supplier_id;index" json:"supplier_id"`
	MinStock   float64   `gorm:"column:min_stock;type:decimal(12,3);not null;default:0" json:"min_stock"`
	Location   string    `gorm:"column:location;type:varchar(100)" json:"location"`
	UnitPrice  float64   `gorm:"column:unit_price;type:decimal(12,4);not null;default:0" json:"unit_price"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Stock    *Stock    `gorm:"foreignKey:MaterialID" json:"stock,omitempty"`
}

func (Material) TableName() string {
	return "materials"
}

// Stock is the on-hand quantity for one material. Mutated only by applying
// stock movements; negative quantities are legitimate and stay visible.
type Stock struct {
	StockID    uint      `gorm:"column:stock_id;primaryKey;autoIncrement" json:"id"`
	MaterialID uint      `gorm:"column:material_id;not null;uniqueIndex" json:"material_id"`
	Quantity   float64   `gorm:"column:quantity;type:decimal(12,3);not null;default:0" json:"quantity"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Stock) TableName() string {
	return "stock"
}

// Stock status labels derived from quantity vs min_stock.
const (
	StockStatusOK       = "ok"
	StockStatusLow      = "low"
	StockStatusNegative = "negative"
)
