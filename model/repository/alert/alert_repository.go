package alert

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

// AlertRepository is the durable notification sink consumed by the dashboard.
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

type ListFilter struct {
	Kind  string `mapstructure:"kind"`
	Seen  *bool  `mapstructure:"seen"`
	Limit int    `mapstructure:"limit"`
}

func (r *AlertRepository) List(ctx context.Context, f ListFilter) ([]entity.Alert, error) {
	query := r.db.WithContext(ctx).Model(&entity.Alert{}).
		Preload("Material").
		Preload("Order")
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if f.Seen != nil {
		query = query.Where("seen = ?", *f.Seen)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	var alerts []entity.Alert
	err := query.Order("seen ASC, created_at DESC").Limit(limit).Find(&alerts).Error
	if err != nil {
		return nil, repository.Translate(err, "alerts")
	}
	return alerts, nil
}

func (r *AlertRepository) CountUnseen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Alert{}).Where("seen = ?", false).Count(&count).Error
	if err != nil {
		return 0, repository.Translate(err, "alerts")
	}
	return count, nil
}

func (r *AlertRepository) MarkSeen(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&entity.Alert{}).Where("alert_id = ?", id).Update("seen", true)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating alert")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("alert not found")
	}
	return nil
}

func (r *AlertRepository) MarkAllSeen(ctx context.Context) error {
	err := r.db.WithContext(ctx).Model(&entity.Alert{}).Where("seen = ?", false).Update("seen", true).Error
	if err != nil {
		return apperr.Integrity(err, "updating alerts")
	}
	return nil
}

func (r *AlertRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.Alert{}, id)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "deleting alert")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("alert not found")
	}
	return nil
}

// PurgeSeen deletes seen alerts older than the cutoff. Returns the number
// removed.
func (r *AlertRepository) PurgeSeen(ctx context.Context, olderThan time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("seen = ? AND created_at < ?", true, olderThan).
		Delete(&entity.Alert{})
	if res.Error != nil {
		return 0, apperr.Integrity(res.Error, "purging alerts")
	}
	return res.RowsAffected, nil
}

// Raise appends an alert.
func Raise(tx *gorm.DB, a *entity.Alert) error {
	if err := tx.Create(a).Error; err != nil {
		return apperr.Integrity(err, "creating alert")
	}
	return nil
}

// ClearStockAlerts removes low/negative stock alerts for a material so the
// recompute can create at most one fresh alert.
func ClearStockAlerts(tx *gorm.DB, materialID uint) error {
	err := tx.Where("material_id = ? AND kind IN ?", materialID,
		[]string{entity.AlertLowStock, entity.AlertNegativeStock}).
		Delete(&entity.Alert{}).Error
	if err != nil {
		return apperr.Integrity(err, "clearing stock alerts")
	}
	return nil
}
