package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon is a brand promotion shown on product pages. Redemption is handled
// outside this service.
type Coupon struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandSlug   string           `gorm:"column:brand_slug;not null;index:coupons_brand_slug_idx"`
	Code        string           `gorm:"column:code;not null"`
	Description string           `gorm:"column:description;not null;default:''"`
	Percentage  *decimal.Decimal `gorm:"column:percentage;type:numeric(5,4)"`
	FlatAmount  *decimal.Decimal `gorm:"column:flat_amount;type:numeric(12,2)"`
	MinSubtotal decimal.Decimal  `gorm:"column:min_subtotal;type:numeric(12,2);not null;default:0"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	ExpiresAt   *time.Time       `gorm:"column:expires_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
