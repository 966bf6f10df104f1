package storefront

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/hamperhouse/storefront-backend/internal/brands"
	"github.com/hamperhouse/storefront-backend/internal/coupons"
	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/internal/reviews"
)

// Page slices filled by LoadProductPage.
const (
	SliceProduct     = "product"
	SliceBrand       = "brand"
	SliceCoupons     = "coupons"
	SliceReviews     = "reviews"
	SliceReviewStats = "review_stats"
)

const (
	pageReviewLimit        = 20
	defaultPageConcurrency = 3
)

// PageErrors records the failure of each slice that could not be loaded.
type PageErrors map[string]error

// Err combines the slice failures in a stable order, or returns nil.
func (p PageErrors) Err() error {
	if len(p) == 0 {
		return nil
	}
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var err error
	for _, key := range keys {
		err = multierr.Append(err, p[key])
	}
	return err
}

// ProductPage is everything a product detail screen renders. Each field is
// populated independently; a failed slice stays at its zero value and is
// reported in Errors.
type ProductPage struct {
	Product     *product.ProductDTO
	Brand       *brands.BrandDTO
	Coupons     []coupons.CouponDTO
	Reviews     []reviews.ReviewDTO
	ReviewStats *reviews.Stats
	Errors      PageErrors
}

// LoadProductPage fetches the product, brand, coupons, reviews and review
// stats concurrently, at most pageConcurrency requests at a time. A failing
// slice never prevents the others from loading. The returned error combines
// the slice failures; the page is always returned.
func (c *Client) LoadProductPage(ctx context.Context, productID uuid.UUID, brand string) (*ProductPage, error) {
	brand = c.brandOr(brand)
	page := &ProductPage{Errors: PageErrors{}}
	productPath := "/api/v1/products/" + productID.String()
	reviewsPath := "/api/v1/reviews/" + productID.String()
	reviewQuery := url.Values{"limit": []string{strconv.Itoa(pageReviewLimit)}}

	// Slice errors are kept in page.Errors rather than returned to the
	// group: Wait only reports the first one, and a group context would
	// cancel the siblings of a failed slice.
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(c.pageConcurrency())
	load := func(slice string, req request, dest any, keep func()) {
		g.Go(func() error {
			err := c.do(ctx, req, dest)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				page.Errors[slice] = err
				return nil
			}
			keep()
			return nil
		})
	}

	var dto product.ProductDTO
	load(SliceProduct, request{method: "GET", path: productPath}, &dto, func() { page.Product = &dto })
	var brandDTO brands.BrandDTO
	load(SliceBrand, request{method: "GET", path: "/api/v1/brands/" + url.PathEscape(brand)}, &brandDTO, func() { page.Brand = &brandDTO })
	var couponList []coupons.CouponDTO
	load(SliceCoupons, request{method: "GET", path: "/api/v1/coupons", query: brandQuery(brand)}, &couponList, func() { page.Coupons = couponList })
	var reviewList []reviews.ReviewDTO
	load(SliceReviews, request{method: "GET", path: reviewsPath, query: reviewQuery}, &reviewList, func() { page.Reviews = reviewList })
	var stats reviews.Stats
	load(SliceReviewStats, request{method: "GET", path: reviewsPath + "/stats"}, &stats, func() { page.ReviewStats = &stats })
	_ = g.Wait()

	return page, page.Errors.Err()
}

func (c *Client) pageConcurrency() int {
	if c.pageLimit > 0 {
		return c.pageLimit
	}
	return defaultPageConcurrency
}
