package bom

import (
	"context"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository"
)

// maxTreeDepth caps hierarchy expansion; deeper trees fail loudly instead of
// rendering something half-resolved.
const maxTreeDepth = 10

// TreeNode is one product level of the hierarchical BOM view.
type TreeNode struct {
	ProductID uint       `json:"product_id"`
	Name      string     `json:"name"`
	SKU       *string    `json:"sku"`
	Level     int        `json:"level"`
	Lines     []TreeLine `json:"lines"`
}

// TreeLine is one BOM line inside a tree node. Sub-product lines carry their
// own resolved subtree.
type TreeLine struct {
	LineID       uint      `json:"id"`
	Kind         string    `json:"kind"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	TolerancePct float64   `json:"tolerance_pct"`
	Notes        string    `json:"notes,omitempty"`
	Name         string    `json:"name"`
	Code         *string   `json:"code,omitempty"`
	BOM          *TreeNode `json:"bom,omitempty"`
}

// Hierarchy builds the full BOM tree for a product.
func (s *Service) Hierarchy(ctx context.Context, productID uint) (*TreeNode, error) {
	return s.tree(ctx, productID, 0)
}

func (s *Service) tree(ctx context.Context, productID uint, level int) (*TreeNode, error) {
	if level > maxTreeDepth {
		return nil, apperr.Validation("BOM tree exceeds the maximum depth")
	}

	var product entity.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, repository.Translate(err, "product")
	}

	lines, err := s.lines.ListByProduct(ctx, productID, "")
	if err != nil {
		return nil, err
	}

	node := &TreeNode{
		ProductID: product.ProductID,
		Name:      product.Name,
		SKU:       product.SKU,
		Level:     level,
		Lines:     make([]TreeLine, 0, len(lines)),
	}

	for _, line := range lines {
		item := TreeLine{
			LineID:       line.LineID,
			Kind:         line.Kind,
			Quantity:     line.Quantity,
			Unit:         line.Unit,
			TolerancePct: line.TolerancePct,
			Notes:        line.Notes,
		}

		switch line.Kind {
		case entity.BOMKindMaterial:
			if line.Material != nil {
				item.Name = line.Material.Name
				item.Code = line.Material.Code
			}
		case entity.BOMKindSubproduct:
			if line.Subproduct != nil {
				item.Name = line.Subproduct.Name
				item.Code = line.Subproduct.SKU
			}
			if line.SubproductID != nil {
				sub, err := s.tree(ctx, *line.SubproductID, level+1)
				if err != nil {
					return nil, err
				}
				item.BOM = sub
			}
		case entity.BOMKindService:
			if line.Service != nil {
				item.Name = line.Service.Name
			}
		}

		node.Lines = append(node.Lines, item)
	}

	return node, nil
}
