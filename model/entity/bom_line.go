package entity

import "time"

// BOMLine is one line of a product's bill of materials. Kind selects which
// reference is populated; exactly one of MaterialID/SubproductID/ServiceID
// is set, matching Kind. The subproduct graph must stay acyclic — writes of
// subproduct lines go through the cycle gate in service/bom.
type BOMLine struct {
	LineID       uint      `gorm:"column:line_id;primaryKey;autoIncrement" json:"id"`
	ProductID    uint      `gorm:"column:product_id;not null;index" json:"product_id"`
	Kind         string    `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	MaterialID   *uint     `gorm:"column:material_id;index" json:"material_id"`
	SubproductID *uint     `gorm:"column:subproduct_id;index" json:"subproduct_id"`
	ServiceID    *uint     `gorm:"column:service_id;index" json:"service_id"`
	Quantity     float64   `gorm:"column:quantity;type:decimal(12,3);not null" json:"quantity"`
	Unit         string    `gorm:"column:unit;type:varchar(20)" json:"unit"`
	TolerancePct float64   `gorm:"column:tolerance_pct;type:decimal(6,2);not null;default:0" json:"tolerance_pct"`
	Notes        string    `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Material   *Material        `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Subproduct *Product         `gorm:"foreignKey:SubproductID" json:"subproduct,omitempty"`
	Service    *ExternalService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (BOMLine) TableName() string {
	return "bom_lines"
}

// BOM line kinds
const (
	BOMKindMaterial   = "material"
	BOMKindSubproduct = "subproduct"
	BOMKindService    = "external_service"
)

// ToleranceFactor returns the multiplicative buffer for the line quantity.
func (l *BOMLine) ToleranceFactor() float64 {
	return 1 + l.TolerancePct/100
}
