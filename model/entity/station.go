package entity

import "time"

// Station is a work-stage production orders pass through in sequence.
type Station struct {
	StationID  uint      `gorm:"column:station_id;primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	DefaultSeq int       `gorm:"column:default_seq;not null;default:1" json:"default_seq"`
	Color      string    `gorm:"column:color;type:varchar(20);not null;default:#6c757d" json:"color"`
	Icon       string    `gorm:"column:icon;type:varchar(40);not null;default:fa-cog" json:"icon"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Station) TableName() string {
	return "stations"
}
