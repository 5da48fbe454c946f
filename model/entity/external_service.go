package entity

import "time"

// ExternalService is outsourced work (e.g. galvanizing, upholstery) a BOM
// line can reference.
type ExternalService struct {
	ServiceID      uint      `gorm:"column:service_id;primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"column:name;type:varchar(150);not null" json:"name"`
	SupplierID     *uint     `gorm:"column:supplier_id;index" json:"supplier_id"`
	EstimatedPrice float64   `gorm:"column:estimated_price;type:decimal(12,2);not null;default:0" json:"estimated_price"`
	EstimatedTime  float64   `gorm:"column:estimated_time;type:decimal(10,2);not null;default:0" json:"estimated_time"`
	Notes          string    `gorm:"column:notes;type:text" json:"notes"`
	Active         bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

func (ExternalService) TableName() string {
	return "external_services"
}
