// Package money is a fixed 2-scale currency amount backed by
// shopspring/decimal. Every price computation in the order flow goes
// through this type so that repeated line-item sums never accumulate
// binary floating-point drift. Amounts serialize as strings ("30.00")
// both in JSON and in NUMERIC(10,2) columns.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const scale = 2

type Money struct {
	d decimal.Decimal
}

func Zero() Money {
	return Money{}
}

// Parse reads a decimal string and rounds it half-up to 2 digits.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}

	return Money{d: d.Round(scale)}, nil
}

func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return m
}

// MulInt multiplies a unit price by a quantity. The factor is an
// integer, so the product stays on the 2-digit scale exactly.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n)).Round(scale)}
}

func (m Money) Add(other Money) Money {
	return Money{d: m.d.Add(other.d)}
}

func (m Money) Equal(other Money) bool {
	return m.d.Equal(other.d)
}

func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

func (m Money) String() string {
	return m.d.StringFixed(scale)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Tolerate bare JSON numbers from older clients.
		var f json.Number
		if err := json.Unmarshal(data, &f); err != nil {
			return fmt.Errorf("money must be a string or number: %w", err)
		}
		s = f.String()
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}

// Scan implements sql.Scanner so pgx can read NUMERIC columns.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	case []byte:
		return m.Scan(string(v))
	case nil:
		*m = Money{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into money.Money", src)
	}
}

// Value implements driver.Valuer; amounts are written as text and let
// Postgres coerce them into NUMERIC.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
