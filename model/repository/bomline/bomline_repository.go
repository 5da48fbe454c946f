package bomline

import (
	"context"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

type BOMLineRepository struct {
	db *gorm.DB
}

func NewBOMLineRepository(db *gorm.DB) *BOMLineRepository {
	return &BOMLineRepository{db: db}
}

// ListByProduct returns the product's BOM lines, optionally filtered by kind,
// ordered the way the tree view expects (kind, then insertion order).
func (r *BOMLineRepository) ListByProduct(ctx context.Context, productID uint, kind string) ([]entity.BOMLine, error) {
	query := r.db.WithContext(ctx).
		Preload("Material").
		Preload("Subproduct").
		Preload("Service").
		Preload("Service.Supplier").
		Where("product_id = ?", productID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var lines []entity.BOMLine
	if err := query.Order("kind, line_id").Find(&lines).Error; err != nil {
		return nil, repository.Translate(err, "BOM lines")
	}
	return lines, nil
}

// LinesWithStock loads the product's lines with material stock joined in —
// the resolver's read per recursion level.
func (r *BOMLineRepository) LinesWithStock(ctx context.Context, productID uint) ([]entity.BOMLine, error) {
	var lines []entity.BOMLine
	err := r.db.WithContext(ctx).
		Preload("Material").
		Preload("Material.Stock").
		Where("product_id = ?", productID).
		Order("line_id").
		Find(&lines).Error
	if err != nil {
		return nil, repository.Translate(err, "BOM lines")
	}
	return lines, nil
}

func (r *BOMLineRepository) Get(ctx context.Context, id uint) (*entity.BOMLine, error) {
	var line entity.BOMLine
	err := r.db.WithContext(ctx).
		Preload("Material").
		Preload("Subproduct").
		Preload("Service").
		First(&line, id).Error
	if err != nil {
		return nil, repository.Translate(err, "BOM line")
	}
	return &line, nil
}

func (r *BOMLineRepository) Create(ctx context.Context, line *entity.BOMLine) error {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return apperr.Integrity(err, "creating BOM line")
	}
	return nil
}

// Update changes the mutable line fields (quantity, unit, tolerance, notes).
// Kind and references are immutable; delete and re-create instead.
func (r *BOMLineRepository) Update(ctx context.Context, id uint, quantity float64, unit string, tolerancePct float64, notes string) error {
	res := r.db.WithContext(ctx).Model(&entity.BOMLine{}).
		Where("line_id = ?", id).
		Updates(map[string]interface{}{
			"quantity":      quantity,
			"unit":          unit,
			"tolerance_pct": tolerancePct,
			"notes":         notes,
		})
	if res.Error != nil {
		return apperr.Integrity(res.Error, "updating BOM line")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("BOM line not found")
	}
	return nil
}

func (r *BOMLineRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entity.BOMLine{}, id)
	if res.Error != nil {
		return apperr.Integrity(res.Error, "deleting BOM line")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("BOM line not found")
	}
	return nil
}

// SubproductIDs returns the direct sub-product edges of a product — the
// adjacency list the cycle walk traverses.
func (r *BOMLineRepository) SubproductIDs(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.BOMLine{}).
		Where("product_id = ? AND kind = ?", productID, entity.BOMKindSubproduct).
		Pluck("subproduct_id", &ids).Error
	if err != nil {
		return nil, repository.Translate(err, "BOM lines")
	}
	return ids, nil
}

// ServiceLines returns the product's direct external-service lines with the
// service loaded (cost aggregation input).
func (r *BOMLineRepository) ServiceLines(ctx context.Context, productID uint) ([]entity.BOMLine, error) {
	var lines []entity.BOMLine
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("product_id = ? AND kind = ?", productID, entity.BOMKindService).
		Find(&lines).Error
	if err != nil {
		return nil, repository.Translate(err, "BOM service lines")
	}
	return lines, nil
}

// DistinctServiceIDs returns the distinct external services referenced by
// the product's direct BOM lines.
func (r *BOMLineRepository) DistinctServiceIDs(ctx context.Context, productID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entity.BOMLine{}).
		Distinct("service_id").
		Where("product_id = ? AND kind = ?", productID, entity.BOMKindService).
		Pluck("service_id", &ids).Error
	if err != nil {
		return nil, repository.Translate(err, "BOM service lines")
	}
	return ids, nil
}
