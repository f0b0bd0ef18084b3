package replay

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-pos/internal/obs"
	"github.com/noah-isme/toko-pos/internal/pos"
	"github.com/noah-isme/toko-pos/internal/sale"
)

// StepFailure records a step that returned an error.
type StepFailure struct {
	Index int    `json:"index"`
	Op    string `json:"op"`
	SKU   string `json:"sku,omitempty"`
	Err   error  `json:"-"`
	Error string `json:"error"`
}

// Report summarises a replayed script.
type Report struct {
	Cashier  string        `json:"cashier"`
	Sales    []sale.Sale   `json:"sales"`
	Failures []StepFailure `json:"failures,omitempty"`
}

// Runner replays scripts against fresh sessions.
type Runner struct {
	// DefaultCashier and DefaultTaxRate apply when the script leaves them empty.
	DefaultCashier  string
	DefaultTaxRate  decimal.Decimal
	ContinueOnError bool
	Options         []pos.Option
	Logger          zerolog.Logger
	Tracer          trace.Tracer
}

// Run executes the script on a new session. Without ContinueOnError the first
// failing step aborts the run and its error is returned with the partial report.
func (r *Runner) Run(ctx context.Context, script Script) (Report, error) {
	tracer := r.Tracer
	if tracer == nil {
		tracer = obs.Tracer("toko-pos/replay")
	}
	ctx, span := tracer.Start(ctx, "replay.run")
	defer span.End()

	session, err := r.session(script)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	report := Report{Cashier: session.Cashier()}
	span.SetAttributes(
		attribute.String("pos.cashier", session.Cashier()),
		attribute.Int("replay.steps", len(script.Steps)),
	)

	for _, p := range script.Products {
		if _, err := session.AddProduct(p.SKU, p.Name, p.Price); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, fmt.Errorf("product %s: %w", p.SKU, err)
		}
	}

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		sold, ok, err := r.step(ctx, tracer, session, i, step)
		if ok {
			report.Sales = append(report.Sales, sold)
		}
		if err == nil {
			continue
		}
		failure := StepFailure{Index: i, Op: step.Op, SKU: step.SKU, Err: err, Error: err.Error()}
		report.Failures = append(report.Failures, failure)
		r.Logger.Warn().Err(err).Int("step", i).Str("op", step.Op).Msg("replay_step_failed")
		if !r.ContinueOnError {
			span.SetStatus(codes.Error, err.Error())
			return report, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}
	span.SetAttributes(
		attribute.Int("replay.sales", len(report.Sales)),
		attribute.Int("replay.failures", len(report.Failures)),
	)
	if n := len(report.Failures); n > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d step(s) failed", n))
	}
	return report, nil
}

func (r *Runner) session(script Script) (*pos.Session, error) {
	cashier := strings.TrimSpace(script.Cashier)
	if cashier == "" {
		cashier = r.DefaultCashier
	}
	rate := r.DefaultTaxRate
	if raw := strings.TrimSpace(script.TaxRate); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("tax_rate %q: %v: %w", raw, err, ErrInvalidScript)
		}
		rate = parsed
	}
	return pos.New(cashier, rate, r.Options...)
}

func (r *Runner) step(ctx context.Context, tracer trace.Tracer, s *pos.Session, i int, step Step) (sale.Sale, bool, error) {
	_, span := tracer.Start(ctx, "replay.step", trace.WithAttributes(
		attribute.Int("replay.index", i),
		attribute.String("replay.op", step.Op),
		attribute.String("pos.sku", step.SKU),
	))
	defer span.End()

	var (
		sold sale.Sale
		ok   bool
		err  error
	)
	switch step.Op {
	case OpAdd:
		qty := 1
		if step.Quantity != nil {
			qty = *step.Quantity
		}
		err = s.AddItem(step.SKU, qty)
	case OpUpdate:
		err = s.UpdateQuantity(step.SKU, *step.Quantity)
	case OpRemove:
		err = s.RemoveItem(step.SKU)
	case OpVoid:
		s.ClearCart()
	case OpCheckout:
		sold, err = s.Checkout(step.Payment)
		ok = err == nil
		if ok {
			span.SetAttributes(attribute.String("pos.sale_id", sold.ID))
		}
	default:
		err = fmt.Errorf("unknown op %q: %w", step.Op, ErrInvalidScript)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return sold, ok, err
}
