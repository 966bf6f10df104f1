package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
)

// Product is a catalogue entry. Boxes and bags used by the hamper builder are
// products too, distinguished by ComponentKind.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandSlug     string              `gorm:"column:brand_slug;not null;index:products_brand_slug_idx"`
	SKU           string              `gorm:"column:sku;not null"`
	Name          string              `gorm:"column:name;not null"`
	Description   *string             `gorm:"column:description"`
	SellingPrice  decimal.Decimal     `gorm:"column:selling_price;type:numeric(12,2);not null"`
	MRP           *decimal.Decimal    `gorm:"column:mrp;type:numeric(12,2)"`
	Images        pq.StringArray      `gorm:"column:images;type:text[];not null;default:'{}'"`
	Sizes         pq.StringArray      `gorm:"column:sizes;type:text[];not null;default:'{}'"`
	Colors        pq.StringArray      `gorm:"column:colors;type:text[];not null;default:'{}'"`
	Stock         int                 `gorm:"column:stock;not null;default:0"`
	ComponentKind enums.ComponentKind `gorm:"column:component_kind;not null;default:'item'"`
	IsActive      bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PrimaryImage returns the first image or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
