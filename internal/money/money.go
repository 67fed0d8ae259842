package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")
)

// maxCents caps a single amount at one trillion units.
var maxCents = decimal.New(1, 14)

// Cents is a monetary amount stored as an integer number of cents.
// On the wire it is a JSON number with two decimal places.
type Cents int64

// Parse converts a decimal string such as "12.34" to cents, rounding
// half away from zero to the nearest cent.
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts d to cents. Negative amounts are rejected.
func FromDecimal(d decimal.Decimal) (Cents, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative", ErrInvalidMoney)
	}
	shifted := d.Shift(2).Round(0)
	if shifted.Cmp(maxCents) > 0 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return Cents(shifted.IntPart()), nil
}

// Decimal returns c as a decimal amount.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON writes c as a bare number, e.g. 70.00 or -12.50.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Cents) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Amount is an exact signed total of Cents values. Unlike Cents it cannot
// overflow, so it is used for sums such as a balance.
type Amount struct {
	d decimal.Decimal
}

// Add returns a + c.
func (a Amount) Add(c Cents) Amount {
	return Amount{d: a.d.Add(c.Decimal())}
}

// Sub returns a - c.
func (a Amount) Sub(c Cents) Amount {
	return Amount{d: a.d.Sub(c.Decimal())}
}

// Decimal returns a as a decimal amount.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}

func (a Amount) String() string {
	return a.d.StringFixed(2)
}

// MarshalJSON writes a as a bare number with two decimal places.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}
