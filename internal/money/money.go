// Package money parses and formats the decimal amounts moved between accounts.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are missing, unparsable, not positive,
// out of range or carry more than two fraction digits.
var ErrInvalidAmount = errors.New("invalid amount")

// Scale is the number of fraction digits every stored amount carries.
const Scale = 2

// MaxAmount is the largest magnitude a NUMERIC(14,2) column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Plain digits, or comma thousands groups, with an optional dot fraction.
// Exponent notation is rejected.
var amountPattern = regexp.MustCompile(`^-?(\d+|\d{1,3}(,\d{3})+)(\.\d+)?$`)

// ParseAmount parses a positive amount such as "3000", "3000.00" or "1,234.56".
// Thousands separators are accepted only with a dot decimal separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := parse(s)
	if err != nil {
		return decimal.Zero, err
	}

	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidAmount, s)
	}

	return d, nil
}

// ParseBalance parses a balance, which unlike an amount may be zero or negative.
func ParseBalance(s string) (decimal.Decimal, error) {
	return parse(s)
}

// ValidateAmount applies the ParseAmount rules to an already decoded value.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, d)
	}

	if !d.Equal(d.Round(Scale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d, Scale)
	}

	return CheckRange(d)
}

// CheckRange reports whether d fits in a stored amount or balance column.
func CheckRange(d decimal.Decimal) error {
	if d.Abs().GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, d, MaxAmount)
	}

	return nil
}

func parse(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")

	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	if !amountPattern.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(clean, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if !d.Equal(d.Round(Scale)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, Scale)
	}

	if err := CheckRange(d); err != nil {
		return decimal.Zero, err
	}

	return d, nil
}

// Format renders d with exactly two fraction digits, e.g. "1815.00" or "-35.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
