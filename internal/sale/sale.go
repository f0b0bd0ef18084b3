package sale

import (
	"fmt"
	"time"

	"github.com/noah-isme/toko-pos/internal/cart"
	"github.com/noah-isme/toko-pos/internal/money"
)

// Sale is the frozen record of a completed checkout.
type Sale struct {
	ID        string      `json:"saleId"`
	Cashier   string      `json:"cashier"`
	CreatedAt time.Time   `json:"createdAt"`
	Lines     []cart.Line `json:"lines"`
	Subtotal  money.Money `json:"subtotal"`
	Tax       money.Money `json:"tax"`
	Total     money.Money `json:"total"`
	Payment   money.Money `json:"payment"`
	Change    money.Money `json:"change"`
}

// FormatID renders the identifier of the n-th sale, starting at 1.
func FormatID(n int) string {
	return fmt.Sprintf("S-%06d", n)
}

// Units sums the quantities across all lines.
func (s Sale) Units() int {
	var n int
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

func (s Sale) clone() Sale {
	s.Lines = append([]cart.Line(nil), s.Lines...)
	return s
}
