package bom

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/core/apperr"
	"github.com/nunomansilhas/ProduFlow/model/entity"
	"github.com/nunomansilhas/ProduFlow/model/repository/bomline"
)

// Service resolves bills of materials: recursive material requirements,
// cost estimation, cycle checking and the hierarchical tree view.
type Service struct {
	db    *gorm.DB
	lines *bomline.BOMLineRepository
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, lines: bomline.NewBOMLineRepository(db)}
}

// WithTx returns a copy bound to the given transaction so resolution can run
// inside a caller's unit of work.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx, lines: bomline.NewBOMLineRepository(tx)}
}

// Requirement is one material's total need across the whole BOM tree,
// tolerances applied, with current stock alongside.
type Requirement struct {
	MaterialID  uint    `json:"material_id"`
	Name        string  `json:"name"`
	Code        *string `json:"code"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	MinStock    float64 `json:"min_stock"`
	Available   float64 `json:"available"`
	RequiredQty float64 `json:"required_qty"`
}

// Resolve flattens the product's BOM for the given build quantity. Sub-product
// lines recurse; each line's tolerance buffers its own contribution, so nested
// tolerances compound. Requirements keep first-seen order and accumulate
// per material. External service lines contribute nothing.
func (s *Service) Resolve(ctx context.Context, productID uint, qty float64) ([]Requirement, error) {
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return nil, apperr.Validation("quantity must be a positive number")
	}
	acc, err := s.flatten(ctx, productID, qty, map[uint]struct{}{})
	if err != nil {
		return nil, err
	}
	out := make([]Requirement, len(acc.order))
	for i, id := range acc.order {
		out[i] = *acc.byID[id]
	}
	return out, nil
}

// accumulator keeps requirements in first-seen order while merging by
// material id.
type accumulator struct {
	order []uint
	byID  map[uint]*Requirement
}

func newAccumulator() *accumulator {
	return &accumulator{byID: map[uint]*Requirement{}}
}

func (a *accumulator) add(req Requirement) {
	if existing, ok := a.byID[req.MaterialID]; ok {
		existing.RequiredQty += req.RequiredQty
		return
	}
	a.order = append(a.order, req.MaterialID)
	copied := req
	a.byID[req.MaterialID] = &copied
}

func (s *Service) flatten(ctx context.Context, productID uint, qty float64, path map[uint]struct{}) (*accumulator, error) {
	acc := newAccumulator()

	// A product already on the active path means the stored graph has a
	// cycle the write gate missed; its subtree contributes nothing rather
	// than recursing forever.
	if _, onPath := path[productID]; onPath {
		return acc, nil
	}
	path[productID] = struct{}{}
	defer delete(path, productID)

	lines, err := s.lines.LinesWithStock(ctx, productID)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		factor := line.ToleranceFactor()

		switch line.Kind {
		case entity.BOMKindMaterial:
			if line.Material == nil {
				continue
			}
			available := 0.0
			if line.Material.Stock != nil {
				available = line.Material.Stock.Quantity
			}
			acc.add(Requirement{
				MaterialID:  line.Material.MaterialID,
				Name:        line.Material.Name,
				Code:        line.Material.Code,
				Unit:        line.Material.Unit,
				UnitPrice:   line.Material.UnitPrice,
				MinStock:    line.Material.MinStock,
				Available:   available,
				RequiredQty: line.Quantity * qty * factor,
			})

		case entity.BOMKindSubproduct:
			if line.SubproductID == nil {
				continue
			}
			sub, err := s.flatten(ctx, *line.SubproductID, line.Quantity*qty, path)
			if err != nil {
				return nil, err
			}
			// The line's tolerance buffers the whole subtree.
			for _, id := range sub.order {
				req := *sub.byID[id]
				req.RequiredQty *= factor
				acc.add(req)
			}
		}
	}

	return acc, nil
}

// WouldCreateCycle reports whether adding childID as a sub-product of
// parentID would close a loop: true when they are the same product or when
// parentID is reachable from childID through existing sub-product edges.
func (s *Service) WouldCreateCycle(ctx context.Context, parentID, childID uint) (bool, error) {
	if parentID == childID {
		return true, nil
	}
	visited := map[uint]bool{}
	stack := []uint{childID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == parentID {
			return true, nil
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		subs, err := s.lines.SubproductIDs(ctx, id)
		if err != nil {
			return false, err
		}
		stack = append(stack, subs...)
	}
	return false, nil
}

// CreateLine validates and inserts a BOM line. Sub-product lines pass the
// cycle gate first.
func (s *Service) CreateLine(ctx context.Context, line *entity.BOMLine) error {
	if line.Quantity <= 0 || math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
		return apperr.Validation("quantity must be a positive number")
	}
	if line.TolerancePct < 0 || math.IsNaN(line.TolerancePct) || math.IsInf(line.TolerancePct, 0) {
		return apperr.Validation("tolerance must be zero or positive")
	}

	switch line.Kind {
	case entity.BOMKindMaterial:
		if line.MaterialID == nil || line.SubproductID != nil || line.ServiceID != nil {
			return apperr.Validation("material lines need exactly a material reference")
		}
	case entity.BOMKindSubproduct:
		if line.SubproductID == nil || line.MaterialID != nil || line.ServiceID != nil {
			return apperr.Validation("sub-product lines need exactly a sub-product reference")
		}
		cycle, err := s.WouldCreateCycle(ctx, line.ProductID, *line.SubproductID)
		if err != nil {
			return err
		}
		if cycle {
			return apperr.Conflict("adding this sub-product would create a cycle")
		}
	case entity.BOMKindService:
		if line.ServiceID == nil || line.MaterialID != nil || line.SubproductID != nil {
			return apperr.Validation("service lines need exactly a service reference")
		}
	default:
		return apperr.Validation("unknown BOM line kind: " + line.Kind)
	}

	return s.lines.Create(ctx, line)
}

// UpdateLine changes the mutable fields of a line.
func (s *Service) UpdateLine(ctx context.Context, id uint, quantity float64, unit string, tolerancePct float64, notes string) error {
	if quantity <= 0 || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return apperr.Validation("quantity must be a positive number")
	}
	if tolerancePct < 0 || math.IsNaN(tolerancePct) || math.IsInf(tolerancePct, 0) {
		return apperr.Validation("tolerance must be zero or positive")
	}
	return s.lines.Update(ctx, id, quantity, unit, tolerancePct, notes)
}

func (s *Service) DeleteLine(ctx context.Context, id uint) error {
	return s.lines.Delete(ctx, id)
}

func (s *Service) ListLines(ctx context.Context, productID uint, kind string) ([]entity.BOMLine, error) {
	return s.lines.ListByProduct(ctx, productID, kind)
}
