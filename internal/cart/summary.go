package cart

import "github.com/shopspring/decimal"

// Pricing constants applied to every cart.
var (
	// TaxRate is the flat 8% sales tax.
	TaxRate = decimal.NewFromFloat(0.08)
	// ShippingThreshold is the subtotal above which shipping is free.
	// The boundary is strict: a subtotal of exactly 50.00 still ships
	// at the flat fee.
	ShippingThreshold = decimal.NewFromInt(50)
	// ShippingFlatFee applies whenever the threshold is not exceeded.
	ShippingFlatFee = decimal.NewFromFloat(9.99)
)

// Summary is the derived view of the cart. It is recomputed from the
// lines on every read rather than maintained incrementally, so it can
// never drift from the line list.
type Summary struct {
	ItemCount int             `json:"itemsCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
}

func computeSummary(lines []Line) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		count += line.Quantity
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(TaxRate).Round(2)
	shipping := ShippingFlatFee
	if subtotal.GreaterThan(ShippingThreshold) {
		shipping = decimal.Zero
	}

	return Summary{
		ItemCount: count,
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal.Add(tax).Add(shipping),
	}
}
