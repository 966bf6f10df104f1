package cart

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/internal/pricing"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

type settingsResolver interface {
	Resolve(ctx context.Context, brand string) (pricing.Settings, error)
}

// Service exposes cart reads and writes. Every method returns the full,
// freshly priced cart so clients never compute totals themselves.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID, brand string) (*View, error)
	SetItem(ctx context.Context, userID uuid.UUID, brand string, input ItemInput) (*View, error)
	AddItems(ctx context.Context, userID uuid.UUID, brand string, inputs []ItemInput) (*View, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, brand string, input ItemInput) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID, brand string) error
}

// ItemInput is one cart mutation.
type ItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

type service struct {
	repo     CartRepository
	resolver *Resolver
	products productLookup
	settings settingsResolver
	gift     pricing.GiftProduct
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, resolver *Resolver, products productLookup, settings settingsResolver, gift pricing.GiftProduct) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("cart resolver required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings resolver required")
	}
	return &service{
		repo:     repo,
		resolver: resolver,
		products: products,
		settings: settings,
		gift:     gift,
	}, nil
}

func normalizeBrand(brand string) (string, error) {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if brand == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}
	return brand, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, brand string) (*View, error) {
	brand, err := normalizeBrand(brand)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID, brand)
}

// SetItem sets the quantity of a line. A quantity below one removes it.
func (s *service) SetItem(ctx context.Context, userID uuid.UUID, brand string, input ItemInput) (*View, error) {
	brand, err := normalizeBrand(brand)
	if err != nil {
		return nil, err
	}
	key := keyFor(userID, brand, input)
	if input.Quantity < 1 {
		if err := s.repo.DeleteLine(ctx, key); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
		}
		return s.view(ctx, userID, brand)
	}

	if err := s.checkProduct(ctx, brand, input, input.Quantity); err != nil {
		return nil, err
	}

	line, err := s.repo.FindLine(ctx, key)
	switch {
	case err == nil:
		line.Quantity = input.Quantity
	case db.IsNotFound(err):
		line = newLine(key, input.Quantity)
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if err := s.repo.SaveLine(ctx, line); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
	}
	return s.view(ctx, userID, brand)
}

// AddItems increments quantities, creating lines as needed. Inputs are
// validated up front so a bad item leaves the cart untouched.
func (s *service) AddItems(ctx context.Context, userID uuid.UUID, brand string, inputs []ItemInput) (*View, error) {
	brand, err := normalizeBrand(brand)
	if err != nil {
		return nil, err
	}

	merged := map[LineKey]int{}
	keys := make([]LineKey, 0, len(inputs))
	byKey := map[LineKey]ItemInput{}
	for _, input := range inputs {
		if input.Quantity < 1 {
			return nil, pkgerrors.NewValidation("invalid cart item", pkgerrors.FieldErrors{"quantity": "must be at least 1"})
		}
		key := keyFor(userID, brand, input)
		if _, seen := merged[key]; !seen {
			keys = append(keys, key)
			byKey[key] = input
		}
		merged[key] += input.Quantity
	}

	lines := make([]*models.CartLine, 0, len(keys))
	for _, key := range keys {
		input := byKey[key]
		line, err := s.repo.FindLine(ctx, key)
		switch {
		case err == nil:
			line.Quantity += merged[key]
		case db.IsNotFound(err):
			line = newLine(key, merged[key])
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}
		if err := s.checkProduct(ctx, brand, input, line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	for _, line := range lines {
		if err := s.repo.SaveLine(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
		}
	}
	return s.view(ctx, userID, brand)
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, brand string, input ItemInput) (*View, error) {
	input.Quantity = 0
	return s.SetItem(ctx, userID, brand, input)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID, brand string) error {
	brand, err := normalizeBrand(brand)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, userID, brand); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// checkProduct verifies the product is sellable in brand, the variant exists
// and quantity is covered by stock.
func (s *service) checkProduct(ctx context.Context, brand string, input ItemInput, quantity int) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.NewValidation("invalid cart item", pkgerrors.FieldErrors{"productId": "is required"})
	}
	found, err := s.products.FindByIDs(ctx, []uuid.UUID{input.ProductID})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if len(found) == 0 || found[0].BrandSlug != brand {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product := found[0]

	fields := pkgerrors.FieldErrors{}
	if input.Size != "" && !slices.Contains(product.Sizes, input.Size) {
		fields["size"] = "is not offered for this product"
	}
	if input.Color != "" && !slices.Contains(product.Colors, input.Color) {
		fields["color"] = "is not offered for this product"
	}
	if len(fields) > 0 {
		return pkgerrors.NewValidation("invalid cart item", fields)
	}
	if quantity > product.Stock {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").WithDetails(map[string]any{
			"product_id":    product.ID,
			"available_qty": product.Stock,
			"requested_qty": quantity,
		})
	}
	return nil
}

func (s *service) view(ctx context.Context, userID uuid.UUID, brand string) (*View, error) {
	lines, err := s.repo.ListLines(ctx, userID, brand)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	res, err := s.resolver.Resolve(ctx, brand, lines)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart")
	}
	settings, err := s.settings.Resolve(ctx, brand)
	if err != nil {
		return nil, err
	}
	view := BuildView(brand, res, settings, s.gift)
	return &view, nil
}

func keyFor(userID uuid.UUID, brand string, input ItemInput) LineKey {
	return LineKey{
		UserID:    userID,
		Brand:     brand,
		ProductID: input.ProductID,
		Size:      strings.TrimSpace(input.Size),
		Color:     strings.TrimSpace(input.Color),
	}
}

func newLine(key LineKey, quantity int) *models.CartLine {
	return &models.CartLine{
		UserID:        key.UserID,
		BrandSlug:     key.Brand,
		ProductID:     key.ProductID,
		Quantity:      quantity,
		SelectedSize:  key.Size,
		SelectedColor: key.Color,
	}
}
