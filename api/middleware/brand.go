package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hamperhouse/storefront-backend/api/responses"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

const brandParam = "brand"

// BrandContext resolves the brand slug from the route or the ?brand= query and
// rejects requests without one.
func BrandContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			brand := strings.TrimSpace(chi.URLParam(r, brandParam))
			if brand == "" {
				brand = strings.TrimSpace(r.URL.Query().Get(brandParam))
			}
			brand = strings.ToLower(brand)
			if brand == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.NewValidation("brand is required", pkgerrors.FieldErrors{"brand": "is required"}))
				return
			}

			ctx := WithBrand(r.Context(), brand)
			if logg != nil {
				ctx = logg.WithBrand(ctx, brand)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
