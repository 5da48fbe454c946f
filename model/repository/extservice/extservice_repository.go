package extservice

import (
	"context"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) List(ctx context.Context, active *bool) ([]entity.ExternalService, error) {
	query := r.db.WithContext(ctx).Model(&entity.ExternalService{}).Preload("Supplier")
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	var services []entity.ExternalService
	if err := query.Order("name").Find(&services).Error; err != nil {
		return nil, repository.Translate(err, "services")
	}
	return services, nil
}

func (r *ServiceRepository) Get(ctx context.Context, id uint) (*entity.ExternalService, error) {
	var s entity.ExternalService
	if err := r.db.WithContext(ctx).Preload("Supplier").First(&s, id).Error; err != nil {
		return nil, repository.Translate(err, "service")
	}
	return &s, nil
}

func (r *ServiceRepository) Create(ctx context.Context, s *entity.ExternalService) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return apperr.Integrity(err, "creating service")
	}
	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *entity.ExternalService) error {
	res := r.db.WithContext(ctx).Model(&entity.ExternalService{}).
		Where("service_id = ?", s.ServiceID).
		Select("name", "supplier_id", "estimated_price", "estimated_time", "notes", "active").
		Updates(s)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating service")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("service not found")
	}
	return nil
}

// Delete deactivates services referenced by BOM lines, hard-deletes
// otherwise. Returns the action taken.
func (r *ServiceRepository) Delete(ctx context.Context, id uint) (string, error) {
	action := ""
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s entity.ExternalService
		if err := tx.First(&s, id).Error; err != nil {
			return repository.Translate(err, "service")
		}

		var bomCount int64
		if err := tx.Model(&entity.BOMLine{}).Where("service_id = ?", id).Count(&bomCount).Error; err != nil {
			return apperr.Integrity(err, "checking BOM references")
		}
		if bomCount > 0 {
			action = "deactivated"
			return tx.Model(&entity.ExternalService{}).Where("service_id = ?", id).Update("active", false).Error
		}

		action = "deleted"
		return tx.Delete(&entity.ExternalService{}, id).Error
	})
	if err != nil {
		return "", err
	}
	return action, nil
}
