package entity

import "time"

// StockMovement is an append-only record of a stock change. Entry and exit
// apply a signed delta; adjustment sets the quantity to an absolute value.
type StockMovement struct {
	MovementID uint      `gorm:"column:movement_id;primaryKey;autoIncrement" json:"id"`
	StockID    uint      `gorm:"column:stock_id;not null;index" json:"stock_id"`
	Kind       string    `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	Quantity   float64   `gorm:"column:quantity;type:decimal(12,3);not null" json:"quantity"`
	OrderID    *uint     `gorm:"column:order_id;index" json:"order_id"`
	UserID     *uint     `gorm:"column:user_id" json:"user_id"`
	Reason     string    `gorm:"column:reason;type:varchar(255)" json:"reason"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

// Movement kinds
const (
	MovementEntry      = "entry"
	MovementExit       = "exit"
	MovementAdjustment = "adjustment"
)
