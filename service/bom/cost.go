package bom

import (
	"context"

	"github.com/shopspring/decimal"
)

// CostLine details one material's share of the estimate.
type CostLine struct {
	Name     string          `json:"name"`
	Quantity float64         `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// CostBreakdown is the estimated production cost of a product, split into
// material and direct service components. Amounts are rounded half-up to
// two decimal places.
type CostBreakdown struct {
	Materials decimal.Decimal `json:"materials"`
	Services  decimal.Decimal `json:"services"`
	Total     decimal.Decimal `json:"total"`
	Details   []CostLine      `json:"material_details"`
}

// Cost estimates the production cost for the given quantity. Materials are
// priced over the fully flattened tree (tolerances included); services are
// priced from the product's direct service lines only — nested sub-product
// services are a quoting concern of the sub-product itself.
func (s *Service) Cost(ctx context.Context, productID uint, qty float64) (*CostBreakdown, error) {
	requirements, err := s.Resolve(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	materials := decimal.Zero
	details := make([]CostLine, 0, len(requirements))
	for _, req := range requirements {
		cost := decimal.NewFromFloat(req.RequiredQty).
			Mul(decimal.NewFromFloat(req.UnitPrice))
		materials = materials.Add(cost)
		details = append(details, CostLine{
			Name:     req.Name,
			Quantity: req.RequiredQty,
			Cost:     cost.Round(2),
		})
	}

	serviceLines, err := s.lines.ServiceLines(ctx, productID)
	if err != nil {
		return nil, err
	}
	services := decimal.Zero
	for _, line := range serviceLines {
		if line.Service == nil {
			continue
		}
		services = services.Add(
			decimal.NewFromFloat(line.Quantity).
				Mul(decimal.NewFromFloat(qty)).
				Mul(decimal.NewFromFloat(line.Service.EstimatedPrice)))
	}

	return &CostBreakdown{
		Materials: materials.Round(2),
		Services:  services.Round(2),
		Total:     materials.Add(services).Round(2),
		Details:   details,
	}, nil
}
