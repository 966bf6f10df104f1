package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hamperhouse/storefront-backend/internal/pricing"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

const defaultCacheTTL = 10 * time.Minute

// Resolver hands out the one authoritative PricingSettings of a brand. Cart
// display and order placement both go through it.
type Resolver interface {
	Resolve(ctx context.Context, brand string) (pricing.Settings, error)
}

// Service adds the admin write path to Resolver.
type Service interface {
	Resolver
	Update(ctx context.Context, brand string, settings pricing.Settings) (pricing.Settings, error)
}

type cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	PricingSettingsKey(brand string) string
}

type service struct {
	repo     *Repository
	cache    cache
	fallback pricing.Settings
	ttl      time.Duration
	logg     *logger.Logger
}

// NewService wires the resolver. fallback applies when neither the brand nor
// the platform row exists.
func NewService(repo *Repository, cache cache, fallback pricing.Settings, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("settings cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := fallback.Validate(); err != nil {
		return nil, fmt.Errorf("fallback pricing settings: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &service{repo: repo, cache: cache, fallback: fallback, ttl: ttl, logg: logg}, nil
}

func normalizeBrand(brand string) string {
	return strings.ToLower(strings.TrimSpace(brand))
}

func (s *service) Resolve(ctx context.Context, brand string) (pricing.Settings, error) {
	brand = normalizeBrand(brand)
	key := s.cache.PricingSettingsKey(brand)

	if cached, ok := s.readCache(ctx, key); ok {
		return cached, nil
	}

	resolved, err := s.load(ctx, brand)
	if err != nil {
		return pricing.Settings{}, err
	}

	if raw, err := json.Marshal(resolved); err == nil {
		if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
			s.logg.WarnErr(ctx, "pricing settings cache write failed", err)
		}
	}
	return resolved, nil
}

func (s *service) readCache(ctx context.Context, key string) (pricing.Settings, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			s.logg.WarnErr(ctx, "pricing settings cache read failed", err)
		}
		return pricing.Settings{}, false
	}
	var cached pricing.Settings
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logg.WarnErr(ctx, "pricing settings cache entry unreadable", err)
		return pricing.Settings{}, false
	}
	return cached, true
}

// load walks brand row, platform row, then the configured fallback.
func (s *service) load(ctx context.Context, brand string) (pricing.Settings, error) {
	candidates := []string{brand}
	if brand != "" {
		candidates = append(candidates, "")
	}
	for _, slug := range candidates {
		row, err := s.repo.Find(ctx, slug)
		if err == nil {
			return fromRow(*row), nil
		}
		if !db.IsNotFound(err) {
			return pricing.Settings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing settings")
		}
	}
	return s.fallback, nil
}

func (s *service) Update(ctx context.Context, brand string, settings pricing.Settings) (pricing.Settings, error) {
	brand = normalizeBrand(brand)
	if err := settings.Validate(); err != nil {
		return pricing.Settings{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	row := toRow(brand, settings)
	if err := s.repo.Upsert(ctx, &row); err != nil {
		return pricing.Settings{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save pricing settings")
	}

	keys := []string{s.cache.PricingSettingsKey(brand)}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logg.WarnErr(ctx, "pricing settings cache invalidation failed", err)
	}
	return settings, nil
}

func fromRow(row models.PricingSetting) pricing.Settings {
	return pricing.Settings{
		FreeShippingThreshold:   row.FreeShippingThreshold,
		ExtraDiscountThreshold:  row.ExtraDiscountThreshold,
		ExtraDiscountPercentage: row.ExtraDiscountPercentage,
		FreeGiftThreshold:       row.FreeGiftThreshold,
		FlatShippingCost:        row.FlatShippingCost,
	}
}

func toRow(brand string, s pricing.Settings) models.PricingSetting {
	return models.PricingSetting{
		BrandSlug:               brand,
		FreeShippingThreshold:   s.FreeShippingThreshold,
		ExtraDiscountThreshold:  s.ExtraDiscountThreshold,
		ExtraDiscountPercentage: s.ExtraDiscountPercentage,
		FreeGiftThreshold:       s.FreeGiftThreshold,
		FlatShippingCost:        s.FlatShippingCost,
	}
}
