package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GiftProduct describes the synthetic complimentary line.
type GiftProduct struct {
	ID    uuid.UUID
	Name  string
	Image string
}

// DisplayLine is a line as rendered to the shopper. Free gift lines are never
// billable.
type DisplayLine struct {
	Line
	IsFreeGift bool `json:"is_free_gift"`
}

// InjectFreeGift returns the display list, appending exactly one zero-price
// gift line when the totals unlock it.
func InjectFreeGift(lines []Line, totals Totals, gift GiftProduct) []DisplayLine {
	out := make([]DisplayLine, 0, len(lines)+1)
	for _, line := range lines {
		out = append(out, DisplayLine{Line: line})
	}
	if !totals.IsFreeGiftIncluded {
		return out
	}
	return append(out, DisplayLine{
		Line: Line{
			ProductID:    gift.ID,
			Name:         gift.Name,
			Image:        gift.Image,
			Quantity:     1,
			SellingPrice: decimal.Zero,
		},
		IsFreeGift: true,
	})
}

// BillableLines strips synthetic gift lines from a display list.
func BillableLines(lines []DisplayLine) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		if line.IsFreeGift {
			continue
		}
		out = append(out, line.Line)
	}
	return out
}
