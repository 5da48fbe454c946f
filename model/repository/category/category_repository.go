package category

import (
	"context"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context, kind string) ([]entity.Category, error) {
	query := r.db.WithContext(ctx).Model(&entity.Category{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var categories []entity.Category
	if err := query.Order("name").Find(&categories).Error; err != nil {
		return nil, repository.Translate(err, "categories")
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id uint) (*entity.Category, error) {
	var c entity.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, repository.Translate(err, "category")
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if repository.IsDuplicate(err) {
			return apperr.Conflict("a category with this name already exists")
		}
		return apperr.Integrity(err, "creating category")
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *entity.Category) error {
	res := r.db.WithContext(ctx).Model(&entity.Category{}).
		Where("category_id = ?", c.CategoryID).
		Select("name", "kind").
		Updates(c)
	if res.Error != nil {
		if repository.IsDuplicate(res.Error) {
			return apperr.Conflict("a category with this name already exists")
		}
		return apperr.Integrity(res.Error, "updating category")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}

// Delete refuses while products or materials still reference the category.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productCount, materialCount int64
		if err := tx.Model(&entity.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
			return apperr.Integrity(err, "checking category references")
		}
		if err := tx.Model(&entity.Material{}).Where("category_id = ?", id).Count(&materialCount).Error; err != nil {
			return apperr.Integrity(err, "checking category references")
		}
		if productCount > 0 || materialCount > 0 {
			return apperr.Conflict("category is in use")
		}
		res := tx.Delete(&entity.Category{}, id)
		if res.Error != nil {
			return apperr.Integrity(res.Error, "deleting category")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("category not found")
		}
		return nil
	})
}
