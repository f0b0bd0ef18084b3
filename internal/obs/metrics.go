package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout outcomes recorded on POSMetrics.CheckoutTotal.
const (
	ResultOK                  = "ok"
	ResultEmptyCart           = "empty_cart"
	ResultInsufficientPayment = "insufficient_payment"
	ResultInvalidAmount       = "invalid_amount"
)

// POSMetrics groups Prometheus collectors for a POS session.
type POSMetrics struct {
	CheckoutTotal *prometheus.CounterVec
	SaleAmount    prometheus.Histogram
	CartOps       *prometheus.CounterVec
	SalesRecorded prometheus.Gauge
}

// NewPOSMetrics registers and returns POS collectors. Collectors already present
// on reg are reused so several sessions can share one registry.
func NewPOSMetrics(namespace string, reg prometheus.Registerer) *POSMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &POSMetrics{
		CheckoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by outcome.",
		}, []string{"result"}),
		SaleAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_amount",
			Help:      "Distribution of completed sale totals.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		CartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Count of successful cart mutations by operation.",
		}, []string{"op"}),
		SalesRecorded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sales_recorded",
			Help:      "Number of sales held in the session ledger.",
		}),
	}
	mustRegisterCollector(reg, m.CheckoutTotal, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.CheckoutTotal = v
		}
	})
	mustRegisterCollector(reg, m.SaleAmount, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Histogram); ok {
			m.SaleAmount = v
		}
	})
	mustRegisterCollector(reg, m.CartOps, func(existing prometheus.Collector) {
		if v, ok := existing.(*prometheus.CounterVec); ok {
			m.CartOps = v
		}
	})
	mustRegisterCollector(reg, m.SalesRecorded, func(existing prometheus.Collector) {
		if v, ok := existing.(prometheus.Gauge); ok {
			m.SalesRecorded = v
		}
	})
	return m
}

// ObserveCheckout records a checkout outcome.
func (m *POSMetrics) ObserveCheckout(result string) {
	if m == nil {
		return
	}
	m.CheckoutTotal.WithLabelValues(result).Inc()
}

// ObserveSale records a completed sale total and the resulting ledger size.
func (m *POSMetrics) ObserveSale(total float64, ledgerSize int) {
	if m == nil {
		return
	}
	m.SaleAmount.Observe(total)
	m.SalesRecorded.Set(float64(ledgerSize))
}

// ObserveCartOp records a cart mutation.
func (m *POSMetrics) ObserveCartOp(op string) {
	if m == nil {
		return
	}
	m.CartOps.WithLabelValues(op).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register pos metric: %w", err))
	}
}
