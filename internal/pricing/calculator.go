// Package pricing derives cart totals from resolved lines and brand settings.
// Every screen and the order placement path use Calculate so display-time and
// submit-time totals cannot drift.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a single priced cart entry.
type Line struct {
	ProductID    uuid.UUID        `json:"product_id"`
	Name         string           `json:"name"`
	Image        string           `json:"image,omitempty"`
	Quantity     int              `json:"quantity"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	MRP          *decimal.Decimal `json:"mrp,omitempty"`
	Size         string           `json:"size,omitempty"`
	Color        string           `json:"color,omitempty"`
}

// Savings returns (mrp - selling price) * quantity, zero when no MRP is set.
func (l Line) Savings() decimal.Decimal {
	mrp := l.SellingPrice
	if l.MRP != nil {
		mrp = *l.MRP
	}
	return mrp.Sub(l.SellingPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Total returns selling price * quantity.
func (l Line) Total() decimal.Decimal {
	return l.SellingPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals is the derived price breakdown of a cart.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	TotalDiscount      decimal.Decimal `json:"total_discount"`
	MilestoneDiscount  decimal.Decimal `json:"milestone_discount"`
	Shipping           decimal.Decimal `json:"shipping"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	IsFreeGiftIncluded bool            `json:"is_free_gift_included"`
}

// Calculate is a pure function of lines and settings. Thresholds are
// inclusive and the milestone discount applies to the subtotal only. Totals
// are exact; rounding for display is left to the caller.
func Calculate(lines []Line, settings Settings) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
		discount = discount.Add(line.Savings())
	}

	milestone := decimal.Zero
	if subtotal.GreaterThanOrEqual(settings.ExtraDiscountThreshold) {
		milestone = subtotal.Mul(settings.ExtraDiscountPercentage)
	}

	shipping := settings.FlatShippingCost
	if subtotal.IsZero() || subtotal.GreaterThanOrEqual(settings.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:           subtotal,
		TotalDiscount:      discount,
		MilestoneDiscount:  milestone,
		Shipping:           shipping,
		GrandTotal:         subtotal.Sub(milestone).Add(shipping),
		IsFreeGiftIncluded: FreeGiftEligible(subtotal, settings),
	}
}

// CurrencyPlaces is the precision money is stored at.
const CurrencyPlaces = 2

// Settled rounds the totals to CurrencyPlaces for storage. The milestone is
// rounded once and the grand total is derived from the rounded amounts, so
// grandTotal == subtotal - milestoneDiscount + shipping still holds.
func (t Totals) Settled() Totals {
	t.Subtotal = t.Subtotal.Round(CurrencyPlaces)
	t.TotalDiscount = t.TotalDiscount.Round(CurrencyPlaces)
	t.MilestoneDiscount = t.MilestoneDiscount.Round(CurrencyPlaces)
	t.Shipping = t.Shipping.Round(CurrencyPlaces)
	t.GrandTotal = t.Subtotal.Sub(t.MilestoneDiscount).Add(t.Shipping)
	return t
}

// FreeGiftEligible is the single gift threshold check shared by display and
// order placement.
func FreeGiftEligible(subtotal decimal.Decimal, settings Settings) bool {
	return subtotal.GreaterThanOrEqual(settings.FreeGiftThreshold)
}

// Progress reports how far a subtotal is from each unlockable perk. A zero
// remaining amount means the perk is unlocked.
type Progress struct {
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
	MilestoneRemaining    decimal.Decimal `json:"milestone_remaining"`
	FreeGiftRemaining     decimal.Decimal `json:"free_gift_remaining"`
}

// ProgressFor computes the remaining spend for each threshold.
func ProgressFor(subtotal decimal.Decimal, settings Settings) Progress {
	return Progress{
		FreeShippingRemaining: remaining(subtotal, settings.FreeShippingThreshold),
		MilestoneRemaining:    remaining(subtotal, settings.ExtraDiscountThreshold),
		FreeGiftRemaining:     remaining(subtotal, settings.FreeGiftThreshold),
	}
}

func remaining(subtotal, threshold decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return threshold.Sub(subtotal)
}
