package brands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hamperhouse/storefront-backend/pkg/db/dbtest"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

func newBrandService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	require.NoError(t, repo.Create(context.Background(), &models.Brand{
		Slug:         "roses",
		Name:         "Roses & Co",
		PrimaryColor: "#aa0033",
		AccentColor:  "#ffffff",
		IsActive:     true,
	}))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestGetBrandNormalizesSlug(t *testing.T) {
	svc, _ := newBrandService(t)
	brand, err := svc.Get(context.Background(), "  ROSES ")
	require.NoError(t, err)
	require.Equal(t, "Roses & Co", brand.Name)
	require.Equal(t, "#aa0033", brand.Theme.PrimaryColor)
}

func TestGetBrandMissing(t *testing.T) {
	svc, _ := newBrandService(t)
	_, err := svc.Get(context.Background(), "lilies")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateThemeValidatesColors(t *testing.T) {
	svc, _ := newBrandService(t)
	bad := "crimson"
	_, err := svc.UpdateTheme(context.Background(), "roses", ThemeInput{PrimaryColor: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Contains(t, pkgerrors.As(err).Fields(), "primary_color")
}

func TestUpdateThemePersists(t *testing.T) {
	svc, _ := newBrandService(t)
	color := "#112233"
	logo := "https://cdn.example.com/logo.png"
	updated, err := svc.UpdateTheme(context.Background(), "roses", ThemeInput{AccentColor: &color, LogoURL: &logo})
	require.NoError(t, err)
	require.Equal(t, "#112233", updated.Theme.AccentColor)
	require.NotNil(t, updated.Theme.LogoURL)

	_, err = svc.UpdateTheme(context.Background(), "lilies", ThemeInput{AccentColor: &color})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
