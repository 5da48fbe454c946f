package material

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

type ListFilter struct {
	CategoryID *uint `mapstructure:"category_id"`
	SupplierID *uint `mapstructure:"supplier_id"`
	Active     *bool `mapstructure:"active"`
}

func (r *MaterialRepository) List(ctx context.Context, f ListFilter) ([]entity.Material, error) {
	query := r.db.WithContext(ctx).Model(&entity.Material{}).
		Preload("Category").
		Preload("Supplier").
		Preload("Stock")
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.SupplierID != nil {
		query = query.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}
	var materials []entity.Material
	if err := query.Order("name").Find(&materials).Error; err != nil {
		return nil, repository.Translate(err, "materials")
	}
	return materials, nil
}

func (r *MaterialRepository) Get(ctx context.Context, id uint) (*entity.Material, error) {
	var m entity.Material
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Supplier").
		Preload("Stock").
		First(&m, id).Error
	if err != nil {
		return nil, repository.Translate(err, "material")
	}
	return &m, nil
}

// NormalizeCode applies the catalog convention: trimmed, uppercase.
func NormalizeCode(code string) *string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return nil
	}
	return &c
}

// Create inserts the material together with its zero-quantity stock row.
func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			if repository.IsDuplicate(err) {
				return apperr.Conflict("a material with this code already exists")
			}
			return apperr.Integrity(err, "creating material")
		}
		stock := entity.Stock{MaterialID: m.MaterialID, Quantity: 0}
		if err := tx.Create(&stock).Error; err != nil {
			return apperr.Integrity(err, "creating stock record")
		}
		m.Stock = &stock
		return nil
	})
}

func (r *MaterialRepository) Update(ctx context.Context, m *entity.Material) error {
	res := r.db.WithContext(ctx).Model(&entity.Material{}).
		Where("material_id = ?", m.MaterialID).
		Select("name", "code", "category_id", "unit", "supplier_id", "min_stock", "location", "unit_price", "active").
		Updates(m)
	if res.Error != nil {
		if repository.IsDuplicate(res.Error) {
			return apperr.Conflict("a material with this code already exists")
		}
		return apperr.Integrity(res.Error, "updating material")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("material not found")
	}
	return nil
}

// Delete removes the material and its stock row, or deactivates it when BOM
// lines reference it. Returns the action taken.
func (r *MaterialRepository) Delete(ctx context.Context, id uint) (string, error) {
	action := ""
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m entity.Material
		if err := tx.First(&m, id).Error; err != nil {
			return repository.Translate(err, "material")
		}

		var bomCount int64
		if err := tx.Model(&entity.BOMLine{}).Where("material_id = ?", id).Count(&bomCount).Error; err != nil {
			return apperr.Integrity(err, "checking BOM references")
		}
		if bomCount > 0 {
			action = "deactivated"
			return tx.Model(&entity.Material{}).Where("material_id = ?", id).Update("active", false).Error
		}

		action = "deleted"
		if err := tx.Where("material_id = ?", id).Delete(&entity.Stock{}).Error; err != nil {
			return apperr.Integrity(err, "deleting stock record")
		}
		return tx.Delete(&entity.Material{}, id).Error
	})
	if err != nil {
		return "", err
	}
	return action, nil
}
