package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingSetting stores the milestone thresholds of a brand. The row with an
// empty BrandSlug is the platform default.
type PricingSetting struct {
	BrandSlug               string          `gorm:"column:brand_slug;primaryKey"`
	FreeShippingThreshold   decimal.Decimal `gorm:"column:free_shipping_threshold;type:numeric(12,2);not null"`
	ExtraDiscountThreshold  decimal.Decimal `gorm:"column:extra_discount_threshold;type:numeric(12,2);not null"`
	ExtraDiscountPercentage decimal.Decimal `gorm:"column:extra_discount_percentage;type:numeric(5,4);not null"`
	FreeGiftThreshold       decimal.Decimal `gorm:"column:free_gift_threshold;type:numeric(12,2);not null"`
	FlatShippingCost        decimal.Decimal `gorm:"column:flat_shipping_cost;type:numeric(12,2);not null"`
	UpdatedAt               time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
