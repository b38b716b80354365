package passbook

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is an exact base-10 number. It encodes to JSON as the exact digits
// it was created from, never through a binary float.
//
// MarshalJSON writes a bare JSON number such as 12.34, not a quoted string,
// since wallets read latitude, longitude and numeric field values as numbers.
//
// The zero value is 0. Decimals are immutable.
type Decimal struct {
	d *apd.Decimal
}

// NewDecimal parses s (for example "12.34" or "-0.5") as an exact decimal.
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("parse decimal %q: value is not finite", s)
	}
	return Decimal{d: d}, nil
}

// MustDecimal is like NewDecimal but panics if s cannot be parsed.
// It is intended for literals in code and tests.
func MustDecimal(s string) Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DecimalFromInt returns the decimal value of i.
func DecimalFromInt(i int64) Decimal {
	return Decimal{d: apd.New(i, 0)}
}

// String returns the value in plain (non-exponent) notation.
func (d Decimal) String() string {
	if d.d == nil {
		return "0"
	}
	return d.d.Text('f')
}

// IsZero reports whether d equals zero.
func (d Decimal) IsZero() bool {
	return d.d == nil || d.d.IsZero()
}

// Cmp compares d and x and returns -1, 0 or +1.
func (d Decimal) Cmp(x Decimal) int {
	return d.apd().Cmp(x.apd())
}

func (d Decimal) apd() *apd.Decimal {
	if d.d == nil {
		return apd.New(0, 0)
	}
	return d.d
}

// MarshalJSON encodes d as a bare JSON number.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NewDecimal(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler so decimals can be read
// from YAML and flag values.
func (d *Decimal) UnmarshalText(text []byte) error {
	parsed, err := NewDecimal(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
