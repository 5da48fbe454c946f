package entity

import "time"

// Product is a manufacturable catalog item. Products referenced by orders or
// used as sub-products are deactivated instead of deleted.
type Product struct {
	ProductID     uint      `gorm:"column:product_id;primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"column:name;type:varchar(150);not null" json:"name"`
	SKU           *string   `gorm:"column:sku;type:varchar(64);uniqueIndex" json:"sku"`
	CategoryID    *uint     `gorm:"column:category_id;index" json:"category_id"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	EstimatedCost float64   `gorm:"column:estimated_cost;type:decimal(12,2);not null;default:0" json:"estimated_cost"`
	EstimatedTime float64   `gorm:"column:estimated_time;type:decimal(10,2);not null;default:0" json:"estimated_time"`
	Active        bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Category *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Stations []ProductStation `gorm:"foreignKey:ProductID" json:"stations,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductStation configures the station sequence for a product. Orders copy
// this at creation time; when a product has none, the global active stations
// ordered by default_seq are used instead.
type ProductStation struct {
	ProductStationID uint    `gorm:"column:product_station_id;primaryKey;autoIncrement" json:"id"`
	ProductID        uint    `gorm:"column:product_id;not null;index" json:"product_id"`
	StationID        uint    `gorm:"column:station_id;not null;index" json:"station_id"`
	Seq              int     `gorm:"column:seq;not null" json:"seq"`
	Required         bool    `gorm:"column:required;not null;default:true" json:"required"`
	EstimatedTime    float64 `gorm:"column:estimated_time;type:decimal(10,2);not null;default:0" json:"estimated_time"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (ProductStation) TableName() string {
	return "product_stations"
}
