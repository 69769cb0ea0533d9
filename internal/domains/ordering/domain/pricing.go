package domain

import "github.com/shopspring/decimal"

// CurrencyPlaces is the precision amounts are rounded to for display and storage.
const CurrencyPlaces = 2

// PricingResult holds derived totals. Fields are exact until Rounded is called.
type PricingResult struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals prices an order snapshot. The rate and the snapshot's
// discount are percentages and are not re-validated here.
func ComputeTotals(order Snapshot, taxRatePercent decimal.Decimal) PricingResult {
	subtotal := decimal.Zero
	for _, line := range order.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	discount := subtotal.Mul(order.DiscountPercent).Shift(-2)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRatePercent).Shift(-2)
	return PricingResult{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// Rounded rounds every amount half away from zero to currency precision.
func (p PricingResult) Rounded() PricingResult {
	return PricingResult{
		Subtotal:       p.Subtotal.Round(CurrencyPlaces),
		DiscountAmount: p.DiscountAmount.Round(CurrencyPlaces),
		TaxableAmount:  p.TaxableAmount.Round(CurrencyPlaces),
		TaxAmount:      p.TaxAmount.Round(CurrencyPlaces),
		Total:          p.Total.Round(CurrencyPlaces),
	}
}
