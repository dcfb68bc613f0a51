// Package money holds the decimal amount type used for reimbursements and
// trip cost estimates.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a JSON value cannot be read as an amount.
var ErrInvalidAmount = errors.New("invalid monetary amount")

const scale = 2

// Money is a fixed-point amount. It decodes from a JSON number, a numeric
// string or a {"$numberDecimal": "..."} object, and always encodes as a
// string with two decimals.
type Money struct {
	amount decimal.Decimal
}

func Zero() Money {
	return Money{}
}

func FromDecimal(d decimal.Decimal) Money {
	return Money{amount: d}
}

func FromInt(units int64) Money {
	return Money{amount: decimal.NewFromInt(units)}
}

// Parse reads a plain numeric string such as "15000" or "15000.50".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{amount: d}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.StringFixed(scale)
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var raw string
	switch trimmed[0] {
	case '{':
		var wrapper struct {
			NumberDecimal *string `json:"$numberDecimal"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
		if wrapper.NumberDecimal == nil {
			return fmt.Errorf("%w: missing $numberDecimal", ErrInvalidAmount)
		}
		raw = *wrapper.NumberDecimal
	case '"':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
		}
	default:
		raw = string(trimmed)
	}

	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
