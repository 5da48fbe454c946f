package supplier

import (
	"context"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) List(ctx context.Context, active *bool) ([]entity.Supplier, error) {
	query := r.db.WithContext(ctx).Model(&entity.Supplier{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}
	var suppliers []entity.Supplier
	if err := query.Order("name").Find(&suppliers).Error; err != nil {
		return nil, repository.Translate(err, "suppliers")
	}
	return suppliers, nil
}

func (r *SupplierRepository) Get(ctx context.Context, id uint) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, repository.Translate(err, "supplier")
	}
	return &s, nil
}

func (r *SupplierRepository) Create(ctx context.Context, s *entity.Supplier) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return apperr.Integrity(err, "creating supplier")
	}
	return nil
}

func (r *SupplierRepository) Update(ctx context.Context, s *entity.Supplier) error {
	res := r.db.WithContext(ctx).Model(&entity.Supplier{}).
		Where("supplier_id = ?", s.SupplierID).
		Select("name", "contact", "email", "phone", "notes", "active").
		Updates(s)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating supplier")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("supplier not found")
	}
	return nil
}

// Delete deactivates suppliers still referenced by materials or services,
// hard-deletes otherwise. Returns the action taken.
func (r *SupplierRepository) Delete(ctx context.Context, id uint) (string, error) {
	action := ""
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s entity.Supplier
		if err := tx.First(&s, id).Error; err != nil {
			return repository.Translate(err, "supplier")
		}

		var materialCount, serviceCount int64
		if err := tx.Model(&entity.Material{}).Where("supplier_id = ?", id).Count(&materialCount).Error; err != nil {
			return apperr.Integrity(err, "checking supplier references")
		}
		if err := tx.Model(&entity.ExternalService{}).Where("supplier_id = ?", id).Count(&serviceCount).Error; err != nil {
			return apperr.Integrity(err, "checking supplier references")
		}
		if materialCount > 0 || serviceCount > 0 {
			action = "deactivated"
			return tx.Model(&entity.Supplier{}).Where("supplier_id = ?", id).Update("active", false).Error
		}

		action = "deleted"
		return tx.Delete(&entity.Supplier{}, id).Error
	})
	if err != nil {
		return "", err
	}
	return action, nil
}
