// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Conversion to and from the decimal
// representation used on the wire goes through shopspring/decimal so that
// rounding is exact and half-up.
package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to Money with half-up rounding to
// the cent. Both dot (12.34) and comma (12,34) separators are accepted.
// Sign is preserved; callers decide whether negatives are acceptable.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234
//	ParseAmount("12,345") -> 1235
//	ParseAmount("7")      -> 700
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrValidation)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}
	return MoneyFromDecimal(d), nil
}

// MoneyFromDecimal rounds d half-up (away from zero) to whole cents.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(hundred).Round(0).IntPart()}
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount for display purposes only.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// DivInt divides the amount by n rounding to the cent. n must be positive.
func (m Money) DivInt(n int) Money {
	if n <= 0 {
		return Money{}
	}
	return MoneyFromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole
// is not positive.
func Percent(part, whole Money) float64 {
	if whole.Cents <= 0 {
		return 0
	}
	p := decimal.NewFromInt(part.Cents).Mul(hundred).Div(decimal.NewFromInt(whole.Cents)).Round(2)
	f, _ := p.Float64()
	return f
}
