package budget

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	appErr "github.com/pnab-cultura/engine/pkg/errors"
)

// ParseAmount normalises a monetary value that may come either from a
// masked input ("R$ 1.234,56") or from storage ("1234.56").
//
// A value with no comma and a single dot followed by exactly one or two
// digits is taken as an already-normalised decimal. Anything else is read
// digit by digit as an integer number of cents; a minus sign ahead of the
// first digit keeps the value negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if isNormalizedDecimal(s) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, appErr.Wrap(err, appErr.CodeInvalid, "invalid monetary amount").WithMeta("value", s)
		}
		return d, nil
	}

	var digits strings.Builder
	negative := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '-' && digits.Len() == 0:
			negative = true
		}
	}
	if digits.Len() == 0 {
		return decimal.Zero, appErr.New(appErr.CodeInvalid, "monetary amount has no digits").WithMeta("value", s)
	}
	cents, err := decimal.NewFromString(digits.String())
	if err != nil {
		return decimal.Zero, appErr.Wrap(err, appErr.CodeInvalid, "invalid monetary amount").WithMeta("value", s)
	}
	if negative {
		cents = cents.Neg()
	}
	return cents.Shift(-2), nil
}

func isNormalizedDecimal(s string) bool {
	if strings.Contains(s, ",") || strings.Count(s, ".") != 1 {
		return false
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) < 1 || len(frac) > 2 || !allDigits(frac) {
		return false
	}
	intPart = strings.TrimPrefix(intPart, "-")
	return intPart == "" || allDigits(intPart)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Amount is a monetary value accepted from clients either as a JSON number
// or as a (possibly masked) string.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d.
func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := ParseAmount(s)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid monetary amount")
	}
	a.Decimal = d
	return nil
}

// MarshalJSON renders the amount as a fixed two-decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.StringFixed(2))
}
