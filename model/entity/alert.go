package entity

import "time"

// Alert is a durable notification consumed by the dashboard. Low/negative
// stock alerts are idempotent per material: recomputing deletes the previous
// ones before creating at most one.
type Alert struct {
	AlertID    uint      `gorm:"column:alert_id;primaryKey;autoIncrement" json:"id"`
	Kind       string    `gorm:"column:kind;type:varchar(40);not null;index" json:"kind"`
	Message    string    `gorm:"column:message;type:varchar(500);not null" json:"message"`
	MaterialID *uint     `gorm:"column:material_id;index" json:"material_id"`
	OrderID    *uint     `gorm:"column:order_id;index" json:"order_id"`
	Seen       bool      `gorm:"column:seen;not null;default:false" json:"seen"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Order    *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

func (Alert) TableName() string {
	return "alerts"
}

// Alert kinds
const (
	AlertMaterialShortage = "material_shortage"
	AlertLowStock         = "low_stock"
	AlertNegativeStock    = "negative_stock"
)
