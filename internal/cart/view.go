package cart

import (
	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/internal/pricing"
)

// View is the cart document returned to clients.
type View struct {
	Brand       string                `json:"brand"`
	Lines       []ResolvedLine        `json:"lines"`
	Items       []pricing.DisplayLine `json:"items"`
	Totals      pricing.Totals        `json:"totals"`
	Progress    pricing.Progress      `json:"progress"`
	Settings    pricing.Settings      `json:"settings"`
	Unavailable []uuid.UUID           `json:"unavailable"`
}

// BuildView prices a resolution and injects the free gift line.
func BuildView(brand string, res Resolution, settings pricing.Settings, gift pricing.GiftProduct) View {
	lines := PricingLines(res.Lines)
	totals := pricing.Calculate(lines, settings)
	unavailable := res.Unavailable
	if unavailable == nil {
		unavailable = []uuid.UUID{}
	}
	resolved := res.Lines
	if resolved == nil {
		resolved = []ResolvedLine{}
	}
	return View{
		Brand:       brand,
		Lines:       resolved,
		Items:       pricing.InjectFreeGift(lines, totals, gift),
		Totals:      totals,
		Progress:    pricing.ProgressFor(totals.Subtotal, settings),
		Settings:    settings,
		Unavailable: unavailable,
	}
}
