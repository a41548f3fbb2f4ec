package cart

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal from which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(150)
	// ShippingFlatRate applies to non-empty carts below the threshold.
	ShippingFlatRate = decimal.NewFromInt(12)
)

// Totals are the derived amounts shown with a cart.
type Totals struct {
	Count                 int             `json:"count"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	Shipping              decimal.Decimal `json:"shipping"`
	Total                 decimal.Decimal `json:"total"`
	FreeShipping          bool            `json:"free_shipping"`
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

// Totals prices every line at its snapshot's effective price.
func (c Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, line := range c {
		subtotal = subtotal.Add(line.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(line.Qty))))
	}

	free := subtotal.GreaterThanOrEqual(FreeShippingThreshold)
	shipping := decimal.Zero
	if len(c) > 0 && !free {
		shipping = ShippingFlatRate
	}

	remaining := decimal.Zero
	if !free && subtotal.IsPositive() {
		remaining = FreeShippingThreshold.Sub(subtotal)
	}

	return Totals{
		Count:                 c.Count(),
		Subtotal:              subtotal,
		Shipping:              shipping,
		Total:                 subtotal.Add(shipping),
		FreeShipping:          free,
		FreeShippingRemaining: remaining,
	}
}
