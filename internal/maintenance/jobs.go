package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type couponExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type cartPurger interface {
	PurgeUntouchedSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// CouponExpiryJob turns off coupons whose expires_at has passed so admin
// listings stop showing them as live.
type CouponExpiryJob struct {
	repo couponExpirer
	now  func() time.Time
}

func NewCouponExpiryJob(repo couponExpirer) (*CouponExpiryJob, error) {
	if repo == nil {
		return nil, errors.New("coupon repository required")
	}
	return &CouponExpiryJob{repo: repo, now: time.Now}, nil
}

func (j *CouponExpiryJob) Name() string { return "coupon-expiry" }

func (j *CouponExpiryJob) Run(ctx context.Context) (int64, error) {
	rows, err := j.repo.DeactivateExpired(ctx, j.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}
	return rows, nil
}

// CartPurgeJob drops cart lines nobody touched within the retention window.
type CartPurgeJob struct {
	repo      cartPurger
	retention time.Duration
	now       func() time.Time
}

func NewCartPurgeJob(repo cartPurger, retention time.Duration) (*CartPurgeJob, error) {
	if repo == nil {
		return nil, errors.New("cart repository required")
	}
	if retention <= 0 {
		return nil, errors.New("cart retention must be positive")
	}
	return &CartPurgeJob{repo: repo, retention: retention, now: time.Now}, nil
}

func (j *CartPurgeJob) Name() string { return "cart-purge" }

func (j *CartPurgeJob) Run(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	rows, err := j.repo.PurgeUntouchedSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge stale carts: %w", err)
	}
	return rows, nil
}
