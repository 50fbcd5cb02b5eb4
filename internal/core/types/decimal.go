// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to 2 decimal places, the precision carried by every
// intermediate quantity and monetary sub-amount.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundRupee rounds to the nearest whole currency unit (half away from zero),
// matching the payment rounding applied to a farmer's net payable.
func RoundRupee(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// Decimal is a decimal value that tolerates the upstream wire formats:
// JSON numbers, numeric strings, empty strings and null. Anything that does
// not parse as a number coerces to zero instead of propagating NaN into
// settlement arithmetic. All master-data numeric fields decode through this
// type so the coercion rule lives in exactly one place.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps a decimal.Decimal.
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{Decimal: d}
}

// DecimalFromFloat creates a Decimal from a float64.
func DecimalFromFloat(f float64) Decimal {
	return Decimal{Decimal: decimal.NewFromFloat(f)}
}

// MarshalJSON encodes the value as a JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number, a quoted numeric string, an empty
// string or null. Unparseable input coerces to zero.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		d.Decimal = decimal.Zero
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			d.Decimal = decimal.Zero
			return nil
		}
		d.Decimal = parseOrZero(s)
		return nil
	}

	d.Decimal = parseOrZero(string(data))
	return nil
}

func parseOrZero(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	parsed, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return parsed
}
