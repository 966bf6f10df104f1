package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats summarises the ratings of one product. Histogram is indexed by star
// value; index 0 is unused.
type Stats struct {
	Count     int64           `json:"count"`
	Average   decimal.Decimal `json:"average"`
	Histogram [6]int64        `json:"histogram"`
}

type CreateReviewInput struct {
	AuthorName string `json:"author_name" validate:"required,max=80"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Body       string `json:"body" validate:"max=2000"`
}

type Service interface {
	List(ctx context.Context, productID uuid.UUID, limit int) ([]ReviewDTO, error)
	Stats(ctx context.Context, productID uuid.UUID) (*Stats, error)
	Create(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, productID uuid.UUID, limit int) ([]ReviewDTO, error) {
	rows, err := s.repo.ListByProduct(ctx, productID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ReviewDTO{
			ID:         row.ID,
			AuthorName: row.AuthorName,
			Rating:     row.Rating,
			Body:       row.Body,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func (s *service) Stats(ctx context.Context, productID uuid.UUID) (*Stats, error) {
	buckets, err := s.repo.RatingHistogram(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "review stats")
	}
	return computeStats(buckets), nil
}

func computeStats(buckets []ratingBucket) *Stats {
	stats := &Stats{Average: decimal.Zero}
	var sum int64
	for _, b := range buckets {
		if b.Rating < 1 || b.Rating > 5 {
			continue
		}
		stats.Histogram[b.Rating] += b.Count
		stats.Count += b.Count
		sum += int64(b.Rating) * b.Count
	}
	if stats.Count > 0 {
		stats.Average = decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(stats.Count), 2)
	}
	return stats
}

func (s *service) Create(ctx context.Context, userID, productID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.NewValidation("invalid review", pkgerrors.FieldErrors{"rating": "must be between 1 and 5"})
	}
	review := &models.Review{
		ProductID:  productID,
		UserID:     userID,
		AuthorName: strings.TrimSpace(input.AuthorName),
		Rating:     input.Rating,
		Body:       strings.TrimSpace(input.Body),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return &ReviewDTO{
		ID:         review.ID,
		AuthorName: review.AuthorName,
		Rating:     review.Rating,
		Body:       review.Body,
		CreatedAt:  review.CreatedAt,
	}, nil
}
