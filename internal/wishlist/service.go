package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

// WishlistDTO is the full list of liked products.
type WishlistDTO struct {
	Items      []product.ProductDTO `json:"items"`
	ProductIDs []uuid.UUID          `json:"product_ids"`
}

// Service exposes business rules for wishlist management.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (WishlistDTO, error)
	Toggle(ctx context.Context, userID, productID uuid.UUID) (WishlistDTO, error)
}

type service struct {
	repo     *Repository
	products *product.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(repo *Repository, products *product.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repo is required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (WishlistDTO, error) {
	rows, err := s.repo.ListProducts(ctx, userID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	out := WishlistDTO{
		Items:      make([]product.ProductDTO, 0, len(rows)),
		ProductIDs: make([]uuid.UUID, 0, len(rows)),
	}
	for _, row := range rows {
		out.Items = append(out.Items, product.FromModel(row))
		out.ProductIDs = append(out.ProductIDs, row.ID)
	}
	return out, nil
}

// Toggle likes the product when absent and unlikes it when present.
func (s *service) Toggle(ctx context.Context, userID, productID uuid.UUID) (WishlistDTO, error) {
	if productID == uuid.Nil {
		return WishlistDTO{}, pkgerrors.NewValidation("invalid wishlist item", pkgerrors.FieldErrors{"productId": "is required"})
	}
	exists, err := s.repo.Exists(ctx, userID, productID)
	if err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
	}

	if exists {
		if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
			return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
		}
		return s.Get(ctx, userID)
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if db.IsNotFound(err) {
			return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := s.repo.AddItem(ctx, userID, productID); err != nil {
		return WishlistDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return s.Get(ctx, userID)
}
