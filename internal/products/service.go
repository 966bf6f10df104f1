package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

// Service exposes catalogue reads plus the small admin and telemetry writes.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Track(ctx context.Context, id uuid.UUID, event enums.TrackEvent) error
	UpdateInventory(ctx context.Context, id uuid.UUID, stock int) (*ProductDTO, error)
}

type eventCounter interface {
	IncrProductEvent(ctx context.Context, productID, event string) (int64, error)
}

type dropRecorder interface {
	IncTelemetryDropped(event string)
}

// Option customises the product service.
type Option func(*service)

// WithDropRecorder counts track events that could not be fully recorded.
func WithDropRecorder(r dropRecorder) Option {
	return func(s *service) { s.dropped = r }
}

type service struct {
	repo      *Repository
	counter   eventCounter
	publisher events.Publisher
	dropped   dropRecorder
}

// NewService constructs a product service instance.
func NewService(repo *Repository, counter eventCounter, publisher events.Publisher, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if counter == nil {
		return nil, fmt.Errorf("event counter required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	svc := &service{repo: repo, counter: counter, publisher: publisher}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	brand := strings.ToLower(strings.TrimSpace(input.BrandSlug))
	if brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, next, err := s.repo.List(ctx, listQuery{
		BrandSlug:  brand,
		Kind:       input.Kind,
		Search:     input.Search,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		result.Products = append(result.Products, FromModel(row))
	}
	return result, nil
}

// Track records a view or click. Both sinks are attempted; failures are
// combined so the caller can log them without affecting the response.
func (s *service) Track(ctx context.Context, id uuid.UUID, event enums.TrackEvent) (err error) {
	if !event.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid track event")
	}
	defer func() {
		if err != nil && s.dropped != nil {
			s.dropped.IncTelemetryDropped(string(event))
		}
	}()

	if _, cerr := s.counter.IncrProductEvent(ctx, id.String(), string(event)); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("increment counter: %w", cerr))
	}

	env, eerr := events.NewEnvelope(enums.EventProductTracked, id.String(), "", nil, events.ProductTracked{
		ProductID: id,
		Event:     string(event),
	})
	if eerr != nil {
		return multierr.Append(err, eerr)
	}
	if perr := s.publisher.Publish(ctx, env); perr != nil {
		err = multierr.Append(err, perr)
	}
	return err
}

func (s *service) UpdateInventory(ctx context.Context, id uuid.UUID, stock int) (*ProductDTO, error) {
	if stock < 0 {
		return nil, pkgerrors.NewValidation("stock must be non-negative", pkgerrors.FieldErrors{"stock": "must be >= 0"})
	}
	if err := s.repo.UpdateStock(ctx, id, stock); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	dto := FromModel(*product)
	return &dto, nil
}
