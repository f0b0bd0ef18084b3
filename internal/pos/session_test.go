package pos_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pos/internal/cart"
	"github.com/noah-isme/toko-pos/internal/catalog"
	"github.com/noah-isme/toko-pos/internal/events"
	"github.com/noah-isme/toko-pos/internal/money"
	"github.com/noah-isme/toko-pos/internal/obs"
	"github.com/noah-isme/toko-pos/internal/pos"
)

func newSession(t *testing.T, rate string, opts ...pos.Option) *pos.Session {
	t.Helper()
	s, err := pos.New("Dave", decimal.RequireFromString(rate), opts...)
	require.NoError(t, err)
	return s
}

func stock(t *testing.T, s *pos.Session) {
	t.Helper()
	_, err := s.AddProduct("SKU1", "Milk", "2.50")
	require.NoError(t, err)
	_, err = s.AddProduct("SKU2", "Bread", "3.00")
	require.NoError(t, err)
}

func requireMoney(t *testing.T, want string, got money.Money) {
	t.Helper()
	require.Equal(t, want, got.String())
}

func TestCheckoutFlow(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	s := newSession(t, "0.075", pos.WithClock(func() time.Time { return fixed }))
	stock(t, s)

	require.NoError(t, s.AddItem("SKU1", 2))
	require.NoError(t, s.AddItem("SKU2", 1))

	requireMoney(t, "8.00", s.Subtotal())
	requireMoney(t, "0.60", s.TaxAmount())
	requireMoney(t, "8.60", s.Total())

	sold, err := s.Checkout("10")
	require.NoError(t, err)
	require.Equal(t, "S-000001", sold.ID)
	require.Equal(t, "Dave", sold.Cashier)
	require.Equal(t, fixed.UTC(), sold.CreatedAt)
	requireMoney(t, "8.60", sold.Total)
	requireMoney(t, "10.00", sold.Payment)
	requireMoney(t, "1.40", sold.Change)
	requireMoney(t, "8.00", sold.Subtotal)
	requireMoney(t, "0.60", sold.Tax)
	require.Len(t, sold.Lines, 2)
	require.Equal(t, 3, sold.Units())

	requireMoney(t, "0.00", s.Total())
	require.Empty(t, s.CartLines())
	require.Len(t, s.SalesHistory(), 1)
}

func TestInsufficientPaymentLeavesStateUntouched(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 1))

	_, err := s.Checkout("2.00")
	require.ErrorIs(t, err, pos.ErrInsufficientPayment)
	require.ErrorContains(t, err, "insufficient payment")
	require.Empty(t, s.SalesHistory())
	requireMoney(t, "2.50", s.Total())
	require.Len(t, s.CartLines(), 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	s := newSession(t, "0.1")
	for _, payment := range []any{"0", 100, "9999.99"} {
		_, err := s.Checkout(payment)
		require.ErrorIs(t, err, pos.ErrEmptyCart)
	}
	require.Empty(t, s.SalesHistory())
}

func TestCheckoutInvalidPayment(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 1))
	_, err := s.Checkout("ten")
	require.ErrorIs(t, err, money.ErrInvalidAmount)
	require.Len(t, s.CartLines(), 1)
}

func TestSecondCheckoutFails(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU2", 1))

	_, err := s.Checkout(5)
	require.NoError(t, err)
	_, err = s.Checkout(5)
	require.ErrorIs(t, err, pos.ErrEmptyCart)
	require.Len(t, s.SalesHistory(), 1)
}

func TestExactPaymentGivesZeroChange(t *testing.T) {
	s := newSession(t, "0.075")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 2))
	require.NoError(t, s.AddItem("SKU2", 1))
	sold, err := s.Checkout(8.6)
	require.NoError(t, err)
	require.True(t, sold.Change.IsZero())
}

func TestSaleIDsIncrease(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	for i := 1; i <= 12; i++ {
		require.NoError(t, s.AddItem("SKU1", 1))
		sold, err := s.Checkout("2.50")
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("S-%06d", i), sold.ID)
	}
	history := s.SalesHistory()
	require.Len(t, history, 12)
	for i, sold := range history {
		require.Equal(t, fmt.Sprintf("S-%06d", i+1), sold.ID)
	}
	requireMoney(t, "30.00", s.Revenue())
}

func TestAddItemValidation(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)

	require.ErrorIs(t, s.AddItem("SKU1", 0), cart.ErrInvalidQuantity)
	require.ErrorIs(t, s.AddItem("missing", -1), cart.ErrInvalidQuantity)
	require.ErrorIs(t, s.AddItem("missing", 1), catalog.ErrUnknownSKU)
	require.Empty(t, s.CartLines())
}

func TestAddItemAccumulates(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 2))
	require.NoError(t, s.AddItem("SKU1", 3))
	lines := s.CartLines()
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
	requireMoney(t, "12.50", s.Subtotal())
}

func TestUpdateQuantity(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 2))
	require.NoError(t, s.AddItem("SKU2", 2))

	require.NoError(t, s.UpdateQuantity("SKU1", 7))
	require.NoError(t, s.UpdateQuantity("SKU2", -3))
	lines := s.CartLines()
	require.Len(t, lines, 1)
	require.Equal(t, "SKU1", lines[0].Product.SKU)
	require.Equal(t, 7, lines[0].Quantity)

	require.ErrorIs(t, s.UpdateQuantity("SKU2", 1), cart.ErrItemNotInCart)
	require.ErrorIs(t, s.RemoveItem("SKU2"), cart.ErrItemNotInCart)
	require.NoError(t, s.RemoveItem("SKU1"))
	require.Empty(t, s.CartLines())
}

func TestCatalogOverwriteDoesNotRepriceCart(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 1))

	_, err := s.AddProduct("SKU1", "Milk", "9.99")
	require.NoError(t, err)
	requireMoney(t, "2.50", s.Total())

	p, ok := s.Product("SKU1")
	require.True(t, ok)
	requireMoney(t, "9.99", p.Price)
	require.Len(t, s.Products(), 2)
}

func TestSubtotalIsRoundedSumOfLines(t *testing.T) {
	s := newSession(t, "0.0825")
	prices := []string{"0.335", "1.999", "12.345", "0.005"}
	for i, price := range prices {
		sku := fmt.Sprintf("P%d", i)
		_, err := s.AddProduct(sku, sku, price)
		require.NoError(t, err)
		require.NoError(t, s.AddItem(sku, i+2))
	}

	want := money.Zero
	for _, l := range s.CartLines() {
		want = want.Add(money.Round(l.Product.Price.Decimal().Mul(decimal.NewFromInt(int64(l.Quantity)))))
	}
	summary := s.Summary()
	require.True(t, want.Equal(summary.Subtotal))
	require.True(t, summary.Total.Equal(summary.Subtotal.Add(summary.Tax)))
	require.True(t, s.Total().Equal(s.Subtotal().Add(s.TaxAmount())))
}

func TestSalesHistoryIsACopy(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 2))
	_, err := s.Checkout(10)
	require.NoError(t, err)

	history := s.SalesHistory()
	history[0].Lines[0].Quantity = 50
	history[0].ID = "S-999999"

	again := s.SalesHistory()
	require.Len(t, again, 1)
	require.Equal(t, "S-000001", again[0].ID)
	require.Equal(t, 2, again[0].Lines[0].Quantity)
}

func TestSaleLinesIndependentOfLiveCart(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	require.NoError(t, s.AddItem("SKU1", 1))
	sold, err := s.Checkout(10)
	require.NoError(t, err)

	require.NoError(t, s.AddItem("SKU1", 4))
	require.Equal(t, 1, sold.Lines[0].Quantity)
	require.Equal(t, 1, s.SalesHistory()[0].Lines[0].Quantity)
}

func TestSessionsDoNotShareState(t *testing.T) {
	a := newSession(t, "0")
	b := newSession(t, "0")
	stock(t, a)
	require.NoError(t, a.AddItem("SKU1", 1))

	require.Empty(t, b.Products())
	require.Empty(t, b.CartLines())
	require.ErrorIs(t, b.AddItem("SKU1", 1), catalog.ErrUnknownSKU)
}

func TestNewRejectsNegativeTaxRate(t *testing.T) {
	_, err := pos.New("Dave", decimal.RequireFromString("-0.01"))
	require.ErrorIs(t, err, pos.ErrInvalidTaxRate)
}

func TestTopSales(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)
	for _, qty := range []int{1, 4, 2} {
		require.NoError(t, s.AddItem("SKU1", qty))
		_, err := s.Checkout(100)
		require.NoError(t, err)
	}
	top, err := s.TopSales(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "S-000002", top[0].ID)
	require.Equal(t, "S-000003", top[1].ID)

	_, err = s.TopSales(-1)
	require.Error(t, err)
}

func TestClearCartEmitsAndCounts(t *testing.T) {
	store := events.NewMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := obs.NewPOSMetrics("pos", reg)
	s := newSession(t, "0", pos.WithEvents(&events.Bus{Store: store}), pos.WithMetrics(metrics))
	stock(t, s)

	s.ClearCart()
	require.Empty(t, store.Events())

	require.NoError(t, s.AddItem("SKU1", 3))
	s.ClearCart()
	require.Empty(t, s.CartLines())
	voided := store.ByTopic(events.TopicCartVoided)
	require.Len(t, voided, 1)
	require.JSONEq(t, `{"cashier":"Dave","lines":1,"units":3}`, string(voided[0].Payload))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.CartOps.WithLabelValues("void")))
}

func TestBlankCashierStillEmitsVoid(t *testing.T) {
	store := events.NewMemoryStore()
	s, err := pos.New("  ", decimal.Zero, pos.WithEvents(&events.Bus{Store: store}))
	require.NoError(t, err)
	require.Equal(t, pos.DefaultCashier, s.Cashier())
	stock(t, s)

	require.NoError(t, s.AddItem("SKU2", 1))
	s.ClearCart()
	voided := store.ByTopic(events.TopicCartVoided)
	require.Len(t, voided, 1)
	require.Equal(t, pos.DefaultCashier, voided[0].AggregateID)
}

func TestCheckoutObservability(t *testing.T) {
	var buf bytes.Buffer
	store := events.NewMemoryStore()
	reg := prometheus.NewRegistry()
	metrics := obs.NewPOSMetrics("pos", reg)
	s := newSession(t, "0.075",
		pos.WithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)),
		pos.WithMetrics(metrics),
		pos.WithEvents(&events.Bus{Store: store}),
	)
	stock(t, s)

	_, err := s.Checkout(1)
	require.ErrorIs(t, err, pos.ErrEmptyCart)

	require.NoError(t, s.AddItem("SKU1", 2))
	require.NoError(t, s.AddItem("SKU2", 1))
	_, err = s.Checkout("5")
	require.ErrorIs(t, err, pos.ErrInsufficientPayment)

	sold, err := s.Checkout("10")
	require.NoError(t, err)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.CheckoutTotal.WithLabelValues(obs.ResultOK)))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.CheckoutTotal.WithLabelValues(obs.ResultEmptyCart)))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.CheckoutTotal.WithLabelValues(obs.ResultInsufficientPayment)))
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.CartOps.WithLabelValues("add")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.SalesRecorded))

	completed := store.ByTopic(events.TopicSaleCompleted)
	require.Len(t, completed, 1)
	require.Equal(t, sold.ID, completed[0].AggregateID)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(completed[0].Payload, &payload))
	require.Equal(t, "S-000001", payload["saleId"])
	require.Equal(t, "8.60", payload["total"])
	require.Equal(t, "1.40", payload["change"])

	logs := buf.String()
	require.Contains(t, logs, `"message":"checkout_rejected"`)
	require.Contains(t, logs, `"message":"checkout_completed"`)
	require.Contains(t, logs, `"sale_id":"S-000001"`)
	require.Equal(t, 3, strings.Count(logs, `"cashier":"Dave"`))
}

func TestConcurrentCheckoutsAreAtomic(t *testing.T) {
	s := newSession(t, "0")
	stock(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddItem("SKU1", 1)
			_, _ = s.Checkout(1000)
		}()
	}
	wg.Wait()

	history := s.SalesHistory()
	units := 0
	for i, sold := range history {
		require.Equal(t, fmt.Sprintf("S-%06d", i+1), sold.ID)
		require.True(t, sold.Total.Equal(sold.Lines[0].Subtotal()))
		units += sold.Units()
	}
	for _, l := range s.CartLines() {
		units += l.Quantity
	}
	require.Equal(t, 50, units)
}
