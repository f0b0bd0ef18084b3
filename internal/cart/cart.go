package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/noah-isme/toko-pos/internal/catalog"
)

var (
	// ErrInvalidQuantity is returned when adding a non-positive quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrItemNotInCart is returned when updating a SKU that has no cart line.
	ErrItemNotInCart = errors.New("item not in cart")
)

// Cart holds at most one line per SKU, iterated in insertion order.
type Cart struct {
	lines map[string]*Line
	order []string
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

// Add inserts a line for product or increments the existing one.
func (c *Cart) Add(product catalog.Product, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("qty must be positive, got %d: %w", qty, ErrInvalidQuantity)
	}
	if line, ok := c.lines[product.SKU]; ok {
		line.Quantity += qty
		return nil
	}
	c.lines[product.SKU] = &Line{Product: product, Quantity: qty}
	c.order = append(c.order, product.SKU)
	return nil
}

// Update sets the exact quantity for sku. A quantity of zero or less removes the line.
func (c *Cart) Update(sku string, qty int) error {
	line, ok := c.lines[sku]
	if !ok {
		return fmt.Errorf("%s: %w", sku, ErrItemNotInCart)
	}
	if qty <= 0 {
		c.remove(sku)
		return nil
	}
	line.Quantity = qty
	return nil
}

func (c *Cart) remove(sku string) {
	delete(c.lines, sku)
	if idx := slices.Index(c.order, sku); idx >= 0 {
		c.order = slices.Delete(c.order, idx, idx+1)
	}
}

// Line returns a copy of the line for sku.
func (c *Cart) Line(sku string) (Line, bool) {
	line, ok := c.lines[sku]
	if !ok {
		return Line{}, false
	}
	return *line, true
}

// Lines returns copies of all lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, sku := range c.order {
		out = append(out, *c.lines[sku])
	}
	return out
}

// Units sums the quantities of every line.
func (c *Cart) Units() int {
	var n int
	for _, line := range c.lines {
		n += line.Quantity
	}
	return n
}

// Len reports the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Clear removes every line.
func (c *Cart) Clear() {
	clear(c.lines)
	c.order = c.order[:0]
}
