// Package pos implements a single cashier's register: catalog, cart, checkout and sales ledger.
package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-pos/internal/cart"
	"github.com/noah-isme/toko-pos/internal/catalog"
	"github.com/noah-isme/toko-pos/internal/events"
	"github.com/noah-isme/toko-pos/internal/money"
	"github.com/noah-isme/toko-pos/internal/obs"
	"github.com/noah-isme/toko-pos/internal/pricing"
	"github.com/noah-isme/toko-pos/internal/sale"
	"github.com/noah-isme/toko-pos/internal/topn"
)

var (
	// ErrEmptyCart is returned when checking out a cart whose total is not positive.
	ErrEmptyCart = errors.New("cannot checkout an empty cart")
	// ErrInsufficientPayment is returned when the payment does not cover the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInvalidTaxRate is returned by New for a negative tax rate.
	ErrInvalidTaxRate = errors.New("invalid tax rate")
)

// DefaultCashier names sessions opened without a cashier.
const DefaultCashier = "cashier"

// Session owns the catalog, the active cart and the sales ledger of one cashier.
// A single mutex guards all three, so every method is atomic with respect to the others.
type Session struct {
	cashier string
	taxRate decimal.Decimal

	mu      sync.Mutex
	catalog *catalog.Catalog
	cart    *cart.Cart
	ledger  *sale.Ledger

	now     func() time.Time
	logger  zerolog.Logger
	metrics *obs.POSMetrics
	events  *events.Bus
}

// Option customises a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics records checkout and cart activity on m.
func WithMetrics(m *obs.POSMetrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithEvents emits sale.completed and cart.voided events on bus.
func WithEvents(bus *events.Bus) Option {
	return func(s *Session) { s.events = bus }
}

// WithClock overrides the time source used to stamp sales.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session with freshly allocated catalog, cart and ledger.
// A blank cashier falls back to DefaultCashier.
func New(cashier string, taxRate decimal.Decimal, opts ...Option) (*Session, error) {
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate %s: %w", taxRate, ErrInvalidTaxRate)
	}
	cashier = strings.TrimSpace(cashier)
	if cashier == "" {
		cashier = DefaultCashier
	}
	s := &Session{
		cashier: cashier,
		taxRate: taxRate,
		catalog: catalog.New(),
		cart:    cart.New(),
		ledger:  sale.NewLedger(),
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With().Str("cashier", cashier).Logger()
	return s, nil
}

// Cashier returns the cashier the session was opened for.
func (s *Session) Cashier() string { return s.cashier }

// TaxRate returns the tax rate applied to the subtotal.
func (s *Session) TaxRate() decimal.Decimal { return s.taxRate }

// AddProduct registers or overwrites a catalog entry.
func (s *Session) AddProduct(sku, name string, rawPrice any) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.catalog.Add(sku, name, rawPrice)
	if err != nil {
		return catalog.Product{}, err
	}
	s.logger.Debug().Str("sku", p.SKU).Str("price", p.Price.String()).Msg("product_registered")
	return p, nil
}

// Product looks up a catalog entry.
func (s *Session) Product(sku string) (catalog.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Get(sku)
}

// Products lists the catalog in registration order.
func (s *Session) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Products()
}

// AddItem adds quantity units of sku to the cart.
func (s *Session) AddItem(sku string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		return fmt.Errorf("qty must be positive, got %d: %w", quantity, cart.ErrInvalidQuantity)
	}
	product, err := s.catalog.Lookup(sku)
	if err != nil {
		return err
	}
	if err := s.cart.Add(product, quantity); err != nil {
		return err
	}
	s.metrics.ObserveCartOp("add")
	return nil
}

// UpdateQuantity sets the exact quantity for sku; zero or less removes the line.
func (s *Session) UpdateQuantity(sku string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Update(sku, quantity); err != nil {
		return err
	}
	if quantity <= 0 {
		s.metrics.ObserveCartOp("remove")
	} else {
		s.metrics.ObserveCartOp("update")
	}
	return nil
}

// RemoveItem drops the line for sku.
func (s *Session) RemoveItem(sku string) error {
	return s.UpdateQuantity(sku, 0)
}

// ClearCart voids the current basket without recording a sale.
func (s *Session) ClearCart() {
	s.mu.Lock()
	lines := s.cart.Len()
	units := s.cart.Units()
	s.cart.Clear()
	s.mu.Unlock()

	if lines == 0 {
		return
	}
	s.metrics.ObserveCartOp("void")
	s.logger.Info().Int("lines", lines).Int("units", units).Msg("cart_voided")
	s.emit(events.TopicCartVoided, s.cashier, map[string]any{
		"cashier": s.cashier,
		"lines":   lines,
		"units":   units,
	})
}

// CartLines returns a snapshot of the cart in insertion order.
func (s *Session) CartLines() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// Subtotal is the rounded sum of every line subtotal.
func (s *Session) Subtotal() money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary().Subtotal
}

// TaxAmount is round(subtotal × tax rate).
func (s *Session) TaxAmount() money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary().Tax
}

// Total is round(subtotal + tax).
func (s *Session) Total() money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary().Total
}

// Summary returns subtotal, tax and total computed from the same cart state.
func (s *Session) Summary() pricing.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

func (s *Session) summary() pricing.Summary {
	lines := s.cart.Lines()
	items := make([]pricing.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, pricing.Item{Qty: l.Quantity, UnitPrice: l.Product.Price})
	}
	return pricing.Compute(items, s.taxRate)
}

// Checkout converts the cart into a recorded sale and empties the cart.
// On error neither the cart nor the ledger is modified.
func (s *Session) Checkout(rawPayment any) (sale.Sale, error) {
	rec, err := s.checkout(rawPayment)
	if err != nil {
		s.metrics.ObserveCheckout(checkoutResult(err))
		s.logger.Warn().Err(err).Msg("checkout_rejected")
		return sale.Sale{}, err
	}

	s.metrics.ObserveCheckout(obs.ResultOK)
	s.metrics.ObserveSale(rec.Total.Decimal().InexactFloat64(), rec.ledgerSize)
	s.logger.Info().
		Str("sale_id", rec.ID).
		Str("total", rec.Total.String()).
		Str("payment", rec.Payment.String()).
		Str("change", rec.Change.String()).
		Int("lines", len(rec.Lines)).
		Msg("checkout_completed")
	s.emit(events.TopicSaleCompleted, rec.ID, rec.Sale)
	return rec.Sale, nil
}

type recorded struct {
	sale.Sale
	ledgerSize int
}

func (s *Session) checkout(rawPayment any) (recorded, error) {
	payment, err := money.Parse(rawPayment)
	if err != nil {
		return recorded{}, fmt.Errorf("payment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.summary()
	if !summary.Total.IsPositive() {
		return recorded{}, ErrEmptyCart
	}
	if payment.LessThan(summary.Total) {
		return recorded{}, fmt.Errorf("paid %s, total %s: %w", payment, summary.Total, ErrInsufficientPayment)
	}

	rec := sale.Sale{
		ID:        s.ledger.NextID(),
		Cashier:   s.cashier,
		CreatedAt: s.now().UTC(),
		Lines:     s.cart.Lines(),
		Subtotal:  summary.Subtotal,
		Tax:       summary.Tax,
		Total:     summary.Total,
		Payment:   payment,
		Change:    pricing.Change(payment, summary.Total),
	}
	s.ledger.Append(rec)
	s.cart.Clear()
	return recorded{Sale: rec, ledgerSize: s.ledger.Len()}, nil
}

func checkoutResult(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return obs.ResultEmptyCart
	case errors.Is(err, ErrInsufficientPayment):
		return obs.ResultInsufficientPayment
	case errors.Is(err, money.ErrInvalidAmount):
		return obs.ResultInvalidAmount
	default:
		return "error"
	}
}

// SalesHistory returns a copy of the ledger in recording order.
func (s *Session) SalesHistory() []sale.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

// TopSales returns the n sales with the highest totals.
func (s *Session) TopSales(n int) ([]sale.Sale, error) {
	return topn.TopNFunc(s.SalesHistory(), n, func(a, b sale.Sale) int {
		return a.Total.Cmp(b.Total)
	})
}

// Revenue sums the totals of every recorded sale.
func (s *Session) Revenue() money.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Revenue()
}

func (s *Session) emit(topic, aggregateID string, payload any) {
	if s.events == nil {
		return
	}
	if _, err := s.events.Emit(context.Background(), topic, aggregateID, payload); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Str("aggregate_id", aggregateID).Msg("event_emit_failed")
	}
}
