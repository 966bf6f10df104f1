package controllers

import (
	"net/http"
	"strings"

	"github.com/hamperhouse/storefront-backend/api/middleware"
	"github.com/hamperhouse/storefront-backend/api/responses"
	"github.com/hamperhouse/storefront-backend/api/validators"
	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

const maxSearchLength = 80

// ProductList returns active products of the brand in context.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := product.ListProductsInput{
			BrandSlug:  middleware.BrandFromContext(ctx),
			Search:     validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength),
			Pagination: params,
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParseComponentKind(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.NewValidation("invalid kind", pkgerrors.FieldErrors{"kind": "must be item, box or bag"}))
				return
			}
			input.Kind = &kind
		}

		result, err := svc.ListProducts(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetProduct(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

type trackRequest struct {
	Event string `json:"event" validate:"required,oneof=view click"`
}

// ProductTrack is fire-and-forget: the response is always 202 and failures
// are only logged.
func ProductTrack(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]bool{"accepted": true})

		if svc == nil {
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			warn(ctx, logg, "product.track.rejected", err)
			return
		}
		var payload trackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			warn(ctx, logg, "product.track.rejected", err)
			return
		}
		event, err := enums.ParseTrackEvent(payload.Event)
		if err != nil {
			warn(ctx, logg, "product.track.rejected", err)
			return
		}
		if err := svc.Track(ctx, id, event); err != nil {
			warn(ctx, logg, "product.track.failed", err)
		}
	}
}

type inventoryRequest struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

// AdminUpdateInventory sets the absolute stock level of a product.
func AdminUpdateInventory(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload inventoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateInventory(ctx, id, *payload.Stock)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
