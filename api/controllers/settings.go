package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/api/middleware"
	"github.com/hamperhouse/storefront-backend/api/responses"
	"github.com/hamperhouse/storefront-backend/api/validators"
	"github.com/hamperhouse/storefront-backend/internal/pricing"
	"github.com/hamperhouse/storefront-backend/internal/settings"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

// PricingSettingsGet returns the resolved thresholds of the brand.
func PricingSettingsGet(svc settings.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		resolved, err := svc.Resolve(ctx, middleware.BrandFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolved)
	}
}

type pricingSettingsRequest struct {
	FreeShippingThreshold   *decimal.Decimal `json:"free_shipping_threshold" validate:"required"`
	ExtraDiscountThreshold  *decimal.Decimal `json:"extra_discount_threshold" validate:"required"`
	ExtraDiscountPercentage *decimal.Decimal `json:"extra_discount_percentage" validate:"required"`
	FreeGiftThreshold       *decimal.Decimal `json:"free_gift_threshold" validate:"required"`
	FlatShippingCost        *decimal.Decimal `json:"flat_shipping_cost" validate:"required"`
}

func (p pricingSettingsRequest) toSettings() pricing.Settings {
	return pricing.Settings{
		FreeShippingThreshold:   *p.FreeShippingThreshold,
		ExtraDiscountThreshold:  *p.ExtraDiscountThreshold,
		ExtraDiscountPercentage: *p.ExtraDiscountPercentage,
		FreeGiftThreshold:       *p.FreeGiftThreshold,
		FlatShippingCost:        *p.FlatShippingCost,
	}
}

// AdminUpdatePricingSettings replaces every threshold of the brand at once.
func AdminUpdatePricingSettings(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}
		var payload pricingSettingsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		updated, err := svc.Update(ctx, middleware.BrandFromContext(ctx), payload.toSettings())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
