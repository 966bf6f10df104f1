package storefront

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/internal/cart"
	"github.com/hamperhouse/storefront-backend/internal/orders"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

const idempotencyHeader = "Idempotency-Key"

// PlaceOrder submits an assembled order. key is sent as the Idempotency-Key;
// a blank key gets a fresh one, so pass the same key when retrying.
func (c *Client) PlaceOrder(ctx context.Context, brand string, submission orders.Submission, key string) (*orders.PlaceOrderResult, error) {
	brand = c.brandOr(brand)
	if brand == "" {
		return nil, pkgerrors.NewValidation("brand is required", pkgerrors.FieldErrors{"brand": "is required"})
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = uuid.NewString()
	}

	var result orders.PlaceOrderResult
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/v1/orders/place",
		query:   brandQuery(brand),
		body:    submission,
		headers: map[string]string{idempotencyHeader: key},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Checkout assembles the submission from a priced cart and places it. An
// empty address fails before any request is sent.
func (c *Client) Checkout(ctx context.Context, view *cart.View, addressID, key string) (*orders.PlaceOrderResult, error) {
	if view == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}
	submission, err := orders.Assemble(view.Items, addressID, view.Totals)
	if err != nil {
		return nil, err
	}
	return c.PlaceOrder(ctx, view.Brand, submission, key)
}

// GetCart fetches the priced cart of the signed-in shopper.
func (c *Client) GetCart(ctx context.Context, brand string) (*cart.View, error) {
	var view cart.View
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/cart", query: brandQuery(c.brandOr(brand))}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// TrackProduct records a view or click. Telemetry never fails the caller.
func (c *Client) TrackProduct(ctx context.Context, productID uuid.UUID, event enums.TrackEvent) {
	_ = c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/v1/products/" + productID.String() + "/track",
		body:   map[string]string{"event": string(event)},
	}, nil)
}
