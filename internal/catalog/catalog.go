package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSKU is returned when a SKU is not registered in the catalog.
	ErrUnknownSKU = errors.New("unknown sku")
	// ErrInvalidSKU is returned when registering a product with a blank SKU.
	ErrInvalidSKU = errors.New("invalid sku")
)

// Catalog maps SKUs to products. Registering an existing SKU overwrites it in place.
type Catalog struct {
	products map[string]Product
	order    []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{products: make(map[string]Product)}
}

// Add builds a product from the raw price and stores it under sku.
func (c *Catalog) Add(sku, name string, rawPrice any) (Product, error) {
	if strings.TrimSpace(sku) == "" {
		return Product{}, fmt.Errorf("sku is required: %w", ErrInvalidSKU)
	}
	product, err := NewProduct(sku, name, rawPrice)
	if err != nil {
		return Product{}, fmt.Errorf("product %s: %w", sku, err)
	}
	if _, exists := c.products[sku]; !exists {
		c.order = append(c.order, sku)
	}
	c.products[sku] = product
	return product, nil
}

// Get returns the product registered under sku.
func (c *Catalog) Get(sku string) (Product, bool) {
	p, ok := c.products[sku]
	return p, ok
}

// Lookup is like Get but reports ErrUnknownSKU.
func (c *Catalog) Lookup(sku string) (Product, error) {
	p, ok := c.products[sku]
	if !ok {
		return Product{}, fmt.Errorf("%s: %w", sku, ErrUnknownSKU)
	}
	return p, nil
}

// Products lists products in registration order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, sku := range c.order {
		out = append(out, c.products[sku])
	}
	return out
}

// Len reports the number of registered SKUs.
func (c *Catalog) Len() int {
	return len(c.products)
}
