package entity

import "time"

// Category groups products and raw materials.
type Category struct {
	CategoryID uint      `gorm:"column:category_id;primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	Kind       string    `gorm:"column:kind;type:varchar(20);not null;default:product" json:"kind"` // product/material
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}
