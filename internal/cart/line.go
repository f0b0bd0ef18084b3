package cart

import (
	"github.com/noah-isme/toko-pos/internal/catalog"
	"github.com/noah-isme/toko-pos/internal/money"
)

// Line pairs a product captured at insertion time with a quantity.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price × quantity rounded to money.
func (l Line) Subtotal() money.Money {
	return l.Product.Price.MulInt(l.Quantity)
}
