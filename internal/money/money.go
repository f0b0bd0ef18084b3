package money

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits every Money value carries.
const Places = 2

// ErrInvalidAmount is returned when an input cannot be read as a base-10 decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is an exact decimal amount rounded to two fractional digits, half-up.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// Round rounds d to two fractional digits. Ties round away from zero.
func Round(d decimal.Decimal) Money {
	return Money{d: d.Round(Places)}
}

// Parse converts a string, integer, float, decimal or json.Number into Money.
// Floats go through their shortest exact decimal text, never through float arithmetic.
func Parse(v any) (Money, error) {
	d, err := toDecimal(v)
	if err != nil {
		return Money{}, err
	}
	return Round(d), nil
}

// MustParse is like Parse but panics on error. Useful for constants and tests.
func MustParse(v any) Money {
	m, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return m
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case Money:
		return x.d, nil
	case *Money:
		if x == nil {
			return decimal.Decimal{}, fmt.Errorf("nil money: %w", ErrInvalidAmount)
		}
		return x.d, nil
	case decimal.Decimal:
		return x, nil
	case string:
		return parseString(x)
	case json.Number:
		return parseString(x.String())
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(x)), nil
	case uint64:
		return decimal.NewFromUint64(x), nil
	case float32:
		return parseFloat(float64(x), 32)
	case float64:
		return parseFloat(x, 64)
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported type %T: %w", v, ErrInvalidAmount)
	}
}

func parseString(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount: %w", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %q: %w", s, ErrInvalidAmount)
	}
	return d, nil
}

func parseFloat(f float64, bits int) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("non-finite %v: %w", f, ErrInvalidAmount)
	}
	return parseString(strconv.FormatFloat(f, 'f', -1, bits))
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Add returns m + o.
func (m Money) Add(o Money) Money { return Round(m.d.Add(o.d)) }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Round(m.d.Sub(o.d)) }

// MulInt returns m * n rounded.
func (m Money) MulInt(n int) Money { return Round(m.d.Mul(decimal.NewFromInt(int64(n)))) }

// MulRate returns m * rate rounded. Used for tax.
func (m Money) MulRate(rate decimal.Decimal) Money { return Round(m.d.Mul(rate)) }

// Cmp compares m and o and returns -1, 0 or +1.
func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

// Equal reports whether m and o are the same amount.
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool { return m.d.LessThan(o.d) }

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool { return m.d.IsPositive() }

// IsZero reports whether m == 0.
func (m Money) IsZero() bool { return m.d.IsZero() }

// String renders the amount with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(Places) }

// MarshalJSON encodes the amount as a quoted fixed-point string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts quoted strings and bare JSON numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
