package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

// ProductDTO is the catalogue payload returned to clients.
type ProductDTO struct {
	ID              uuid.UUID        `json:"id"`
	BrandSlug       string           `json:"brand"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	SellingPrice    decimal.Decimal  `json:"selling_price"`
	MRP             *decimal.Decimal `json:"mrp,omitempty"`
	DiscountPercent *int             `json:"discount_percent,omitempty"`
	Images          []string         `json:"images"`
	Sizes           []string         `json:"sizes"`
	Colors          []string         `json:"colors"`
	Stock           int              `json:"stock"`
	InStock         bool             `json:"in_stock"`
	ComponentKind   string           `json:"component_kind"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ListProductsInput captures the browse filters.
type ListProductsInput struct {
	BrandSlug  string
	Kind       *enums.ComponentKind
	Search     string
	Pagination pagination.Params
}

// FromModel maps a product row into its DTO.
func FromModel(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:            p.ID,
		BrandSlug:     p.BrandSlug,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		SellingPrice:  p.SellingPrice,
		MRP:           p.MRP,
		Images:        nonNil(p.Images),
		Sizes:         nonNil(p.Sizes),
		Colors:        nonNil(p.Colors),
		Stock:         p.Stock,
		InStock:       p.Stock > 0,
		ComponentKind: string(p.ComponentKind),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.MRP != nil && p.MRP.GreaterThan(p.SellingPrice) && p.MRP.IsPositive() {
		pct := int(p.MRP.Sub(p.SellingPrice).Div(*p.MRP).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
		dto.DiscountPercent = &pct
	}
	return dto
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
