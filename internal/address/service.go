package address

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

var (
	phonePattern      = regexp.MustCompile(`^\+?[0-9 ]{7,16}$`)
	postalCodePattern = regexp.MustCompile(`^[A-Za-z0-9 -]{3,10}$`)
)

// AddressDTO is the public shape of a saved address.
type AddressDTO struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateAddressInput carries a new address from the shopper.
type CreateAddressInput struct {
	FullName   string  `json:"full_name" validate:"required,max=120"`
	Phone      string  `json:"phone" validate:"required"`
	Line1      string  `json:"line1" validate:"required,max=200"`
	Line2      *string `json:"line2" validate:"omitempty,max=200"`
	City       string  `json:"city" validate:"required,max=80"`
	State      string  `json:"state" validate:"required,max=80"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"omitempty,len=2"`
	IsDefault  bool    `json:"is_default"`
}

// Service manages a shopper's saved addresses.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*AddressDTO, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repo is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Create stores the address. The first address a shopper saves becomes the default.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateAddressInput) (*AddressDTO, error) {
	row, err := normalize(input)
	if err != nil {
		return nil, err
	}
	row.UserID = userID

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		count, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
		}
		if count == 0 {
			row.IsDefault = true
		}
		if row.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default address")
			}
		}
		if err := repo.Create(ctx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, userID, addressID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

// FindForUser is used by order placement to snapshot the destination.
func FindForUser(ctx context.Context, repo *Repository, userID, addressID uuid.UUID) (*models.Address, error) {
	row, err := repo.FindForUser(ctx, userID, addressID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NewValidation("invalid shipping address", pkgerrors.FieldErrors{
				"shippingAddressId": "address not found",
			})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return row, nil
}

func normalize(input CreateAddressInput) (*models.Address, error) {
	fields := pkgerrors.FieldErrors{}
	row := &models.Address{
		FullName:   strings.TrimSpace(input.FullName),
		Phone:      strings.TrimSpace(input.Phone),
		Line1:      strings.TrimSpace(input.Line1),
		City:       strings.TrimSpace(input.City),
		State:      strings.TrimSpace(input.State),
		PostalCode: strings.ToUpper(strings.TrimSpace(input.PostalCode)),
		Country:    strings.ToUpper(strings.TrimSpace(input.Country)),
		IsDefault:  input.IsDefault,
	}
	if input.Line2 != nil {
		if line2 := strings.TrimSpace(*input.Line2); line2 != "" {
			row.Line2 = &line2
		}
	}
	if row.Country == "" {
		row.Country = "IN"
	}

	required := map[string]string{
		"full_name":   row.FullName,
		"line1":       row.Line1,
		"city":        row.City,
		"state":       row.State,
		"postal_code": row.PostalCode,
		"phone":       row.Phone,
	}
	for field, value := range required {
		if value == "" {
			fields[field] = "is required"
		}
	}
	if _, missing := fields["phone"]; !missing && !phonePattern.MatchString(row.Phone) {
		fields["phone"] = "must be a valid phone number"
	}
	if _, missing := fields["postal_code"]; !missing && !postalCodePattern.MatchString(row.PostalCode) {
		fields["postal_code"] = "must be a valid postal code"
	}
	if len(row.Country) != 2 {
		fields["country"] = "must be a 2-letter country code"
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation("invalid address", fields)
	}
	return row, nil
}

func toDTO(row models.Address) AddressDTO {
	return AddressDTO{
		ID:         row.ID,
		FullName:   row.FullName,
		Phone:      row.Phone,
		Line1:      row.Line1,
		Line2:      row.Line2,
		City:       row.City,
		State:      row.State,
		PostalCode: row.PostalCode,
		Country:    row.Country,
		IsDefault:  row.IsDefault,
		CreatedAt:  row.CreatedAt,
	}
}
