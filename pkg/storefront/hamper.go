package storefront

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/internal/hamper"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

const hamperPath = "/api/v1/hampers"

var _ hamper.Remote = (*Client)(nil)

// GetHamper loads the saved draft of the signed-in shopper.
func (c *Client) GetHamper(ctx context.Context) (*hamper.StoredDraft, error) {
	var stored hamper.StoredDraft
	if err := c.do(ctx, request{method: http.MethodGet, path: hamperPath}, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

// SaveHamper replaces the saved draft.
func (c *Client) SaveHamper(ctx context.Context, payload hamper.Payload) error {
	return c.do(ctx, request{method: http.MethodPost, path: hamperPath, body: payload}, nil)
}

// DiscardHamper deletes the saved draft.
func (c *Client) DiscardHamper(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodDelete, path: hamperPath}, nil)
}

// CheckoutHamper converts the draft into cart lines of the client's brand.
func (c *Client) CheckoutHamper(ctx context.Context, payload hamper.Payload) error {
	if c != nil && c.brand == "" {
		return pkgerrors.NewValidation("brand is required", pkgerrors.FieldErrors{"brand": "is required"})
	}
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    hamperPath + "/checkout",
		query:   brandQuery(c.brand),
		body:    payload,
		headers: map[string]string{idempotencyHeader: uuid.NewString()},
	}, nil)
}
