// Package format renders snapshot numbers for the page and the prompt.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown for values the providers did not return.
const NotAvailable = "N/A"

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	trillion = decimal.NewFromInt(1_000_000_000_000)
)

// Money formats d with two decimals and a currency prefix ("$" for USD).
func Money(d decimal.Decimal, currency string) string {
	return currencyPrefix(currency) + d.StringFixed(2)
}

// OptionalMoney is Money for a value that may be missing.
func OptionalMoney(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return NotAvailable
	}
	return Money(d.Decimal, currency)
}

// Number formats d with the given number of decimals, or N/A when missing.
func Number(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return NotAvailable
	}
	return d.Decimal.StringFixed(places)
}

// Compact abbreviates large values: 2953000000000 becomes "2.95T".
func Compact(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return NotAvailable
	}
	v := d.Decimal
	abs := v.Abs()
	prefix := currencyPrefix(currency)
	switch {
	case abs.GreaterThanOrEqual(trillion):
		return prefix + v.Div(trillion).StringFixed(2) + "T"
	case abs.GreaterThanOrEqual(billion):
		return prefix + v.Div(billion).StringFixed(2) + "B"
	case abs.GreaterThanOrEqual(million):
		return prefix + v.Div(million).StringFixed(2) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return prefix + v.Div(thousand).StringFixed(2) + "K"
	default:
		return prefix + v.StringFixed(2)
	}
}

// Ratio formats a fractional yield (0.0345) as a percentage ("3.45%").
func Ratio(d decimal.NullDecimal) string {
	if !d.Valid {
		return NotAvailable
	}
	return d.Decimal.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// SignedPercent formats an already-scaled percentage with an explicit sign.
func SignedPercent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

func currencyPrefix(currency string) string {
	switch strings.ToUpper(currency) {
	case "", "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "JPY":
		return "¥"
	case "INR":
		return "₹"
	default:
		return strings.ToUpper(currency) + " "
	}
}
