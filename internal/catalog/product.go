package catalog

import "github.com/noah-isme/toko-pos/internal/money"

// Product is a catalog entry. Values are never mutated after construction.
type Product struct {
	SKU   string      `json:"sku"`
	Name  string      `json:"name"`
	Price money.Money `json:"price"`
}

// NewProduct rounds rawPrice to money and builds a Product.
func NewProduct(sku, name string, rawPrice any) (Product, error) {
	price, err := money.Parse(rawPrice)
	if err != nil {
		return Product{}, err
	}
	return Product{SKU: sku, Name: name, Price: price}, nil
}
