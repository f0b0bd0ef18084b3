package sale

import "github.com/noah-isme/toko-pos/internal/money"

// Ledger is the append-only history of sales in a session.
type Ledger struct {
	sales []Sale
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// NextID returns the identifier the next appended sale must carry.
func (l *Ledger) NextID() string {
	return FormatID(len(l.sales) + 1)
}

// Append records s. Lines are copied so later changes to the caller's slice do not leak in.
func (l *Ledger) Append(s Sale) {
	l.sales = append(l.sales, s.clone())
}

// List returns a copy of the ledger in recording order.
func (l *Ledger) List() []Sale {
	out := make([]Sale, len(l.sales))
	for i, s := range l.sales {
		out[i] = s.clone()
	}
	return out
}

// Len reports the number of recorded sales.
func (l *Ledger) Len() int {
	return len(l.sales)
}

// Revenue sums the totals of all recorded sales.
func (l *Ledger) Revenue() money.Money {
	total := money.Zero
	for _, s := range l.sales {
		total = total.Add(s.Total)
	}
	return total
}
