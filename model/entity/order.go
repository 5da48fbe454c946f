package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Order is a production order. State only moves forward; cancellation is a
// hard delete and only allowed while pending. Stations, materials and
// services are snapshots taken at creation time and cascade with the order.
type Order struct {
	OrderID      uint            `gorm:"column:order_id;primaryKey;autoIncrement" json:"id"`
	Number       string          `gorm:"column:number;type:varchar(20);not null;uniqueIndex" json:"number"`
	ProductID    uint            `gorm:"column:product_id;not null;index" json:"product_id"`
	Quantity     float64         `gorm:"column:quantity;type:decimal(12,3);not null" json:"quantity"`
	CustomerName string          `gorm:"column:customer_name;type:varchar(150)" json:"customer_name"`
	DueDate      *datatypes.Date `gorm:"column:due_date" json:"due_date"`
	Priority     int             `gorm:"column:priority;not null;default:2" json:"priority"` // 1..4, 4=urgent
	State        string          `gorm:"column:state;type:varchar(20);not null;default:pending;index" json:"state"`
	Notes        string          `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Stations  []OrderStation  `gorm:"foreignKey:OrderID" json:"stations,omitempty"`
	Materials []OrderMaterial `gorm:"foreignKey:OrderID" json:"materials,omitempty"`
	Services  []OrderService  `gorm:"foreignKey:OrderID" json:"services,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// Order states
const (
	OrderStatePending     = "pending"
	OrderStateInProd      = "in_production"
	OrderStateAwaitingExt = "awaiting_external"
	OrderStateCompleted   = "completed"
)

// ActiveOrderStates are the states the "active" list filter expands to.
var ActiveOrderStates = []string{OrderStatePending, OrderStateInProd, OrderStateAwaitingExt}

// OrderStation is the per-order snapshot of one work-stage.
type OrderStation struct {
	OrderStationID uint       `gorm:"column:order_station_id;primaryKey;autoIncrement" json:"id"`
	OrderID        uint       `gorm:"column:order_id;not null;index" json:"order_id"`
	StationID      uint       `gorm:"column:station_id;not null;index" json:"station_id"`
	Seq            int        `gorm:"column:seq;not null" json:"seq"`
	State          string     `gorm:"column:state;type:varchar(20);not null;default:pending" json:"state"`
	StartedAt      *time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt     *time.Time `gorm:"column:finished_at" json:"finished_at"`
	ElapsedMin     *int64     `gorm:"column:elapsed_min" json:"elapsed_min"`
	Notes          string     `gorm:"column:notes;type:text" json:"notes"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (OrderStation) TableName() string {
	return "order_stations"
}

// Order station states
const (
	StationStatePending    = "pending"
	StationStateInProgress = "in_progress"
	StationStateCompleted  = "completed"
	StationStateSkipped    = "skipped"
)

// OrderMaterial is the flattened material demand snapshotted at creation.
// UsedQty stays 0 until completion commits it to RequiredQty.
type OrderMaterial struct {
	OrderMaterialID uint    `gorm:"column:order_material_id;primaryKey;autoIncrement" json:"id"`
	OrderID         uint    `gorm:"column:order_id;not null;index" json:"order_id"`
	MaterialID      uint    `gorm:"column:material_id;not null;index" json:"material_id"`
	RequiredQty     float64 `gorm:"column:required_qty;type:decimal(12,3);not null" json:"required_qty"`
	UsedQty         float64 `gorm:"column:used_qty;type:decimal(12,3);not null;default:0" json:"used_qty"`

	Material *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
}

func (OrderMaterial) TableName() string {
	return "order_materials"
}

// OrderService tracks one distinct outsourced service the order waits on.
type OrderService struct {
	OrderServiceID uint       `gorm:"column:order_service_id;primaryKey;autoIncrement" json:"id"`
	OrderID        uint       `gorm:"column:order_id;not null;index" json:"order_id"`
	ServiceID      uint       `gorm:"column:service_id;not null;index" json:"service_id"`
	State          string     `gorm:"column:state;type:varchar(20);not null;default:pending" json:"state"`
	SentAt         *time.Time `gorm:"column:sent_at" json:"sent_at"`
	ReceivedAt     *time.Time `gorm:"column:received_at" json:"received_at"`

	Service *ExternalService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (OrderService) TableName() string {
	return "order_services"
}

// Order service states
const (
	OrderServicePending  = "pending"
	OrderServiceSent     = "sent"
	OrderServiceReceived = "received"
)

// OrderSequence backs the per-year order number counter. The number is
// allocated inside the order-creation transaction.
type OrderSequence struct {
	Year       int `gorm:"column:year;primaryKey" json:"year"`
	LastNumber int `gorm:"column:last_number;not null;default:0" json:"last_number"`
}

func (OrderSequence) TableName() string {
	return "order_sequences"
}
