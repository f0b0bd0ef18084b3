package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pos/internal/money"
)

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice money.Money
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal money.Money `json:"subtotal"`
	Tax      money.Money `json:"tax"`
	Total    money.Money `json:"total"`
}

// Compute calculates cart totals for the given items and tax rate.
// Each line is rounded before summing, tax is rounded from the subtotal,
// and the total is the rounded sum of both.
func Compute(items []Item, taxRate decimal.Decimal) Summary {
	subtotal := money.Zero
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal = subtotal.Add(it.UnitPrice.MulInt(it.Qty))
	}
	tax := subtotal.MulRate(taxRate)
	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Change returns payment - total.
func Change(payment, total money.Money) money.Money {
	return payment.Sub(total)
}
