package pricing

import (
	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/shopspring/decimal"
)

// Settings are the brand-level thresholds the calculator applies.
type Settings struct {
	FreeShippingThreshold   decimal.Decimal `json:"free_shipping_threshold"`
	ExtraDiscountThreshold  decimal.Decimal `json:"extra_discount_threshold"`
	ExtraDiscountPercentage decimal.Decimal `json:"extra_discount_percentage"`
	FreeGiftThreshold       decimal.Decimal `json:"free_gift_threshold"`
	FlatShippingCost        decimal.Decimal `json:"flat_shipping_cost"`
}

// SettingsFromConfig maps the platform fallback into calculator settings.
func SettingsFromConfig(cfg config.PricingConfig) Settings {
	return Settings{
		FreeShippingThreshold:   cfg.FreeShippingThreshold,
		ExtraDiscountThreshold:  cfg.ExtraDiscountThreshold,
		ExtraDiscountPercentage: cfg.ExtraDiscountPercentage,
		FreeGiftThreshold:       cfg.FreeGiftThreshold,
		FlatShippingCost:        cfg.FlatShippingCost,
	}
}

// Validate applies the same bounds as configuration loading.
func (s Settings) Validate() error {
	return config.ValidatePricing(
		s.FreeShippingThreshold,
		s.ExtraDiscountThreshold,
		s.ExtraDiscountPercentage,
		s.FreeGiftThreshold,
		s.FlatShippingCost,
	)
}
