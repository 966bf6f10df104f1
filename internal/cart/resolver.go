package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/internal/pricing"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
)

type productLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// ResolvedLine is a cart line joined with the current product snapshot. It is
// never persisted.
type ResolvedLine struct {
	ProductID     uuid.UUID        `json:"product_id"`
	Quantity      int              `json:"quantity"`
	SelectedSize  string           `json:"selected_size,omitempty"`
	SelectedColor string           `json:"selected_color,omitempty"`
	Name          string           `json:"name"`
	BrandSlug     string           `json:"brand"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	MRP           *decimal.Decimal `json:"mrp,omitempty"`
	Images        []string         `json:"images"`
	Stock         int              `json:"stock"`
}

// PricingLine projects the resolved line onto the calculator input.
func (l ResolvedLine) PricingLine() pricing.Line {
	image := ""
	if len(l.Images) > 0 {
		image = l.Images[0]
	}
	return pricing.Line{
		ProductID:    l.ProductID,
		Name:         l.Name,
		Image:        image,
		Quantity:     l.Quantity,
		SellingPrice: l.SellingPrice,
		MRP:          l.MRP,
		Size:         l.SelectedSize,
		Color:        l.SelectedColor,
	}
}

// PricingLines maps every resolved line onto calculator input.
func PricingLines(lines []ResolvedLine) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.PricingLine())
	}
	return out
}

// Resolution is the output of Resolver.Resolve. Unavailable lists product ids
// whose lines were dropped, in cart order and without duplicates.
type Resolution struct {
	Lines       []ResolvedLine
	Unavailable []uuid.UUID
}

// Resolver joins persisted lines with live product data.
type Resolver struct {
	products productLookup
}

func NewResolver(products productLookup) (*Resolver, error) {
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &Resolver{products: products}, nil
}

// Resolve keeps cart order and drops lines whose product is missing, inactive
// or belongs to another brand. Only lookup failures are returned as errors.
func (r *Resolver) Resolve(ctx context.Context, brand string, lines []models.CartLine) (Resolution, error) {
	if len(lines) == 0 {
		return Resolution{Lines: []ResolvedLine{}}, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	seen := map[uuid.UUID]struct{}{}
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}

	products, err := r.products.FindByIDs(ctx, ids)
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve cart products: %w", err)
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		if brand != "" && p.BrandSlug != brand {
			continue
		}
		byID[p.ID] = p
	}

	res := Resolution{Lines: make([]ResolvedLine, 0, len(lines))}
	reported := map[uuid.UUID]struct{}{}
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		p, ok := byID[line.ProductID]
		if !ok {
			if _, dup := reported[line.ProductID]; !dup {
				reported[line.ProductID] = struct{}{}
				res.Unavailable = append(res.Unavailable, line.ProductID)
			}
			continue
		}
		res.Lines = append(res.Lines, ResolvedLine{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			SelectedSize:  line.SelectedSize,
			SelectedColor: line.SelectedColor,
			Name:          p.Name,
			BrandSlug:     p.BrandSlug,
			SellingPrice:  p.SellingPrice,
			MRP:           p.MRP,
			Images:        append([]string{}, p.Images...),
			Stock:         p.Stock,
		})
	}
	return res, nil
}
