package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

type CouponDTO struct {
	ID          uuid.UUID        `json:"id"`
	Brand       string           `json:"brand"`
	Code        string           `json:"code"`
	Description string           `json:"description"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	FlatAmount  *decimal.Decimal `json:"flat_amount,omitempty"`
	MinSubtotal decimal.Decimal  `json:"min_subtotal"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

type CreateCouponInput struct {
	Brand       string           `json:"brand" validate:"required"`
	Code        string           `json:"code" validate:"required,max=32"`
	Description string           `json:"description"`
	Percentage  *decimal.Decimal `json:"percentage"`
	FlatAmount  *decimal.Decimal `json:"flat_amount"`
	MinSubtotal decimal.Decimal  `json:"min_subtotal"`
	ExpiresAt   *time.Time       `json:"expires_at"`
}

type Service interface {
	ListActive(ctx context.Context, brand string) ([]CouponDTO, error)
	Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) ListActive(ctx context.Context, brand string) ([]CouponDTO, error) {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}
	rows, err := s.repo.ListActive(ctx, brand, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	out := make([]CouponDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if (input.Percentage == nil) == (input.FlatAmount == nil) {
		fields["percentage"] = "exactly one of percentage or flat_amount is required"
	}
	if input.Percentage != nil && (input.Percentage.IsNegative() || input.Percentage.GreaterThan(decimal.NewFromInt(1))) {
		fields["percentage"] = "must be between 0 and 1"
	}
	if input.FlatAmount != nil && !input.FlatAmount.IsPositive() {
		fields["flat_amount"] = "must be positive"
	}
	if input.MinSubtotal.IsNegative() {
		fields["min_subtotal"] = "must be non-negative"
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		fields["expires_at"] = "must be in the future"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation("invalid coupon", fields)
	}

	var expiresAt *time.Time
	if input.ExpiresAt != nil {
		utc := input.ExpiresAt.UTC()
		expiresAt = &utc
	}

	coupon := &models.Coupon{
		BrandSlug:   strings.ToLower(strings.TrimSpace(input.Brand)),
		Code:        strings.ToUpper(strings.TrimSpace(input.Code)),
		Description: input.Description,
		Percentage:  input.Percentage,
		FlatAmount:  input.FlatAmount,
		MinSubtotal: input.MinSubtotal,
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	dto := toDTO(*coupon)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return nil
}

func toDTO(c models.Coupon) CouponDTO {
	return CouponDTO{
		ID:          c.ID,
		Brand:       c.BrandSlug,
		Code:        c.Code,
		Description: c.Description,
		Percentage:  c.Percentage,
		FlatAmount:  c.FlatAmount,
		MinSubtotal: c.MinSubtotal,
		ExpiresAt:   c.ExpiresAt,
	}
}
