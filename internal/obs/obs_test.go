package obs

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("json", "warn", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("sale_id", "S-000001").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "visible", entry["message"])
	require.Equal(t, "S-000001", entry["sale_id"])
	require.Contains(t, entry, "time")
}

func TestNewLoggerConsoleAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("console", "nonsense", &buf)
	logger.Debug().Msg("skipped")
	logger.Info().Msg("shown")
	out := buf.String()
	require.Contains(t, out, "shown")
	require.NotContains(t, out, "skipped")
}

func TestPOSMetricsRecordAndReuse(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPOSMetrics("pos", reg)
	m.ObserveCheckout(ResultOK)
	m.ObserveCheckout(ResultEmptyCart)
	m.ObserveSale(8.6, 1)
	m.ObserveCartOp("add")

	again := NewPOSMetrics("pos", reg)
	again.ObserveCheckout(ResultOK)

	require.Equal(t, float64(2), testutil.ToFloat64(m.CheckoutTotal.WithLabelValues(ResultOK)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.CheckoutTotal.WithLabelValues(ResultEmptyCart)))
	require.Equal(t, float64(1), testutil.ToFloat64(m.CartOps.WithLabelValues("add")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.SalesRecorded))
	require.Equal(t, 1, testutil.CollectAndCount(m.SaleAmount))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *POSMetrics
	m.ObserveCheckout(ResultOK)
	m.ObserveSale(1, 1)
	m.ObserveCartOp("add")
}

func TestTracerIsUsableWithoutProvider(t *testing.T) {
	tracer := Tracer("test")
	require.NotNil(t, tracer)
}
