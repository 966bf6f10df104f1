package analytics

import (
	"net/http"
	"strings"

	"github.com/hamperhouse/storefront-backend/api/responses"
	"github.com/hamperhouse/storefront-backend/api/validators"
	analyticsvc "github.com/hamperhouse/storefront-backend/internal/analytics"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

// AdminSales reports revenue for ?brand= over [?from=, ?to=).
func AdminSales(svc analyticsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		query, err := parseSalesQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.Sales(ctx, query)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func parseSalesQuery(r *http.Request) (analyticsvc.SalesQuery, error) {
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return analyticsvc.SalesQuery{}, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return analyticsvc.SalesQuery{}, err
	}
	return analyticsvc.SalesQuery{
		Brand: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("brand"))),
		From:  from,
		To:    to,
	}, nil
}
