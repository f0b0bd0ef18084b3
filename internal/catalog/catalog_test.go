package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pos/internal/money"
)

func TestAddRoundsPrice(t *testing.T) {
	c := New()
	p, err := c.Add("SKU1", "Milk", "2.505")
	require.NoError(t, err)
	require.Equal(t, "2.51", p.Price.String())

	got, ok := c.Get("SKU1")
	require.True(t, ok)
	require.Equal(t, p, got)
}

func TestAddOverwritesKeepingOrder(t *testing.T) {
	c := New()
	_, err := c.Add("SKU1", "Milk", "2.50")
	require.NoError(t, err)
	_, err = c.Add("SKU2", "Bread", 3)
	require.NoError(t, err)
	_, err = c.Add("SKU1", "Oat Milk", "2.75")
	require.NoError(t, err)

	products := c.Products()
	require.Len(t, products, 2)
	require.Equal(t, 2, c.Len())
	require.Equal(t, "SKU1", products[0].SKU)
	require.Equal(t, "Oat Milk", products[0].Name)
	require.Equal(t, "2.75", products[0].Price.String())
	require.Equal(t, "SKU2", products[1].SKU)
}

func TestAddRejectsInvalidInput(t *testing.T) {
	c := New()
	_, err := c.Add("  ", "Nothing", "1")
	require.True(t, errors.Is(err, ErrInvalidSKU))

	_, err = c.Add("SKU1", "Milk", "two")
	require.ErrorIs(t, err, money.ErrInvalidAmount)
	require.Zero(t, c.Len())
}

func TestLookupUnknown(t *testing.T) {
	c := New()
	_, err := c.Lookup("missing")
	require.ErrorIs(t, err, ErrUnknownSKU)
}
