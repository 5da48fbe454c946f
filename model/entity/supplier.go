package entity

import "time"

// Supplier provides raw materials and outsourced services.
type Supplier struct {
	SupplierID uint      `gorm:"column:supplier_id;primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;type:varchar(150);not null" json:"name"`
	Contact    string    `gorm:"column:contact;type:varchar(100)" json:"contact"`
	Email      string    `gorm:"column:email;type:varchar(150)" json:"email"`
	Phone      string    `gorm:"column:phone;type:varchar(40)" json:"phone"`
	Notes      string    `gorm:"column:notes;type:text" json:"notes"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
