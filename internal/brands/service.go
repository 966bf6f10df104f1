package brands

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// BrandDTO is a storefront with its theme.
type BrandDTO struct {
	ID    uuid.UUID `json:"id"`
	Slug  string    `json:"slug"`
	Name  string    `json:"name"`
	Theme Theme     `json:"theme"`
}

type Theme struct {
	PrimaryColor string  `json:"primary_color"`
	AccentColor  string  `json:"accent_color"`
	LogoURL      *string `json:"logo_url,omitempty"`
	BannerURL    *string `json:"banner_url,omitempty"`
}

// ThemeInput carries a partial theme update.
type ThemeInput struct {
	PrimaryColor *string `json:"primary_color"`
	AccentColor  *string `json:"accent_color"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
	BannerURL    *string `json:"banner_url" validate:"omitempty,url"`
}

type Service interface {
	Get(ctx context.Context, slug string) (*BrandDTO, error)
	UpdateTheme(ctx context.Context, slug string, input ThemeInput) (*BrandDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("brand repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, slug string) (*BrandDTO, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}
	brand, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brand")
	}
	if !brand.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	dto := toDTO(*brand)
	return &dto, nil
}

func (s *service) UpdateTheme(ctx context.Context, slug string, input ThemeInput) (*BrandDTO, error) {
	slug = normalizeSlug(slug)
	fields := pkgerrors.FieldErrors{}
	updates := map[string]any{}
	if input.PrimaryColor != nil {
		if !hexColor.MatchString(*input.PrimaryColor) {
			fields["primary_color"] = "must be a hex color"
		}
		updates["primary_color"] = *input.PrimaryColor
	}
	if input.AccentColor != nil {
		if !hexColor.MatchString(*input.AccentColor) {
			fields["accent_color"] = "must be a hex color"
		}
		updates["accent_color"] = *input.AccentColor
	}
	if input.LogoURL != nil {
		updates["logo_url"] = *input.LogoURL
	}
	if input.BannerURL != nil {
		updates["banner_url"] = *input.BannerURL
	}
	if len(fields) > 0 {
		return nil, pkgerrors.NewValidation("invalid theme", fields)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no theme fields provided")
	}

	affected, err := s.repo.UpdateTheme(ctx, slug, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update theme")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "brand not found")
	}
	brand, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload brand")
	}
	dto := toDTO(*brand)
	return &dto, nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func toDTO(b models.Brand) BrandDTO {
	return BrandDTO{
		ID:   b.ID,
		Slug: b.Slug,
		Name: b.Name,
		Theme: Theme{
			PrimaryColor: b.PrimaryColor,
			AccentColor:  b.AccentColor,
			LogoURL:      b.LogoURL,
			BannerURL:    b.BannerURL,
		},
	}
}
