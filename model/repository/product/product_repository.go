package product

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListFilter narrows List results. Nil fields are ignored.
type ListFilter struct {
	CategoryID *uint `mapstructure:"category_id"`
	Active     *bool `mapstructure:"active"`
}

func (r *ProductRepository) List(ctx context.Context, f ListFilter) ([]entity.Product, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).Preload("Category")
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}
	var products []entity.Product
	if err := query.Order("name").Find(&products).Error; err != nil {
		return nil, repository.Translate(err, "products")
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id uint) (*entity.Product, error) {
	var p entity.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Stations", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		Preload("Stations.Station").
		First(&p, id).Error
	if err != nil {
		return nil, repository.Translate(err, "product")
	}
	return &p, nil
}

// NormalizeSKU applies the catalog convention: trimmed, uppercase.
func NormalizeSKU(sku string) *string {
	s := strings.ToUpper(strings.TrimSpace(sku))
	if s == "" {
		return nil
	}
	return &s
}

// Create inserts the product and attaches the default station sequence
// (every active station, ordered by default_seq).
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			if repository.IsDuplicate(err) {
				return apperr.Conflict("a product with this SKU already exists")
			}
			return apperr.Integrity(err, "creating product")
		}
		var stations []entity.Station
		if err := tx.Where("active = ?", true).Order("default_seq").Find(&stations).Error; err != nil {
			return apperr.Integrity(err, "loading default stations")
		}
		for _, st := range stations {
			ps := entity.ProductStation{
				ProductID: p.ProductID,
				StationID: st.StationID,
				Seq:       st.DefaultSeq,
				Required:  true,
			}
			if err := tx.Create(&ps).Error; err != nil {
				return apperr.Integrity(err, "attaching default stations")
			}
		}
		return nil
	})
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	res := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("product_id = ?", p.ProductID).
		Select("name", "sku", "category_id", "description", "estimated_cost", "estimated_time", "active").
		Updates(p)
	if res.Error != nil {
		if repository.IsDuplicate(res.Error) {
			return apperr.Conflict("a product with this SKU already exists")
		}
		return apperr.Integrity(res.Error, "updating product")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

// SetEstimatedCost persists a rolled-up BOM cost back onto the product.
func (r *ProductRepository) SetEstimatedCost(ctx context.Context, id uint, cost float64) error {
	res := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("product_id = ?", id).
		Update("estimated_cost", cost)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating product cost")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product not found")
	}
	return nil
}

// Delete removes the product when nothing references it; otherwise it is
// deactivated (orders exist, or it is used as a sub-product). Returns the
// action taken: "deleted" or "deactivated".
func (r *ProductRepository) Delete(ctx context.Context, id uint) (string, error) {
	action := ""
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p entity.Product
		if err := tx.First(&p, id).Error; err != nil {
			return repository.Translate(err, "product")
		}

		var orderCount int64
		if err := tx.Model(&entity.Order{}).Where("product_id = ?", id).Count(&orderCount).Error; err != nil {
			return apperr.Integrity(err, "checking order references")
		}
		var subCount int64
		if err := tx.Model(&entity.BOMLine{}).Where("subproduct_id = ?", id).Count(&subCount).Error; err != nil {
			return apperr.Integrity(err, "checking sub-product references")
		}

		if orderCount > 0 || subCount > 0 {
			action = "deactivated"
			return tx.Model(&entity.Product{}).Where("product_id = ?", id).Update("active", false).Error
		}

		action = "deleted"
		if err := tx.Where("product_id = ?", id).Delete(&entity.BOMLine{}).Error; err != nil {
			return apperr.Integrity(err, "deleting BOM lines")
		}
		if err := tx.Where("product_id = ?", id).Delete(&entity.ProductStation{}).Error; err != nil {
			return apperr.Integrity(err, "deleting station config")
		}
		return tx.Delete(&entity.Product{}, id).Error
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// StationConfig is one entry of a product's station sequence update.
type StationConfig struct {
	StationID     uint    `json:"station_id" mapstructure:"station_id"`
	Seq           int     `json:"seq" mapstructure:"seq"`
	Required      bool    `json:"required" mapstructure:"required"`
	EstimatedTime float64 `json:"estimated_time" mapstructure:"estimated_time"`
}

// SetStations replaces the product's configured station sequence.
func (r *ProductRepository) SetStations(ctx context.Context, productID uint, stations []StationConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p entity.Product
		if err := tx.First(&p, productID).Error; err != nil {
			return repository.Translate(err, "product")
		}
		if err := tx.Where("product_id = ?", productID).Delete(&entity.ProductStation{}).Error; err != nil {
			return apperr.Integrity(err, "clearing station config")
		}
		for _, cfg := range stations {
			ps := entity.ProductStation{
				ProductID:     productID,
				StationID:     cfg.StationID,
				Seq:           cfg.Seq,
				Required:      cfg.Required,
				EstimatedTime: cfg.EstimatedTime,
			}
			if err := tx.Create(&ps).Error; err != nil {
				return apperr.Integrity(err, "saving station config")
			}
		}
		return nil
	})
}
