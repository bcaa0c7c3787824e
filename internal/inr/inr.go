// Package inr formats and parses rupee amounts.
package inr

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Code is the ISO currency code for rupees
const Code = money.INR

var (
	crore    = decimal.NewFromInt(10_000_000)
	lakh     = decimal.NewFromInt(100_000)
	thousand = decimal.NewFromInt(1_000)
	hundred  = decimal.NewFromInt(100)
)

func currency() *money.Currency {
	return money.New(0, Code).Currency()
}

// Format renders a whole-rupee amount, e.g. ₹1,500,000
func Format(amount decimal.Decimal) string {
	cur := currency()
	f := money.NewFormatter(0, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(amount.Round(0).IntPart())
}

// FormatExact renders an amount with paise, e.g. ₹23,958.64
func FormatExact(amount decimal.Decimal) string {
	cur := currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// Compact renders an amount with a Cr, L or K suffix, e.g. ₹9.8Cr.
// One decimal place is shown unless showDecimals asks for two.
func Compact(amount decimal.Decimal, showDecimals bool) string {
	places := int32(1)
	if showDecimals {
		places = 2
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	abs := amount.Abs()
	grapheme := currency().Grapheme

	switch {
	case abs.GreaterThanOrEqual(crore):
		return sign + grapheme + abs.Div(crore).StringFixed(places) + "Cr"
	case abs.GreaterThanOrEqual(lakh):
		return sign + grapheme + abs.Div(lakh).StringFixed(places) + "L"
	case abs.GreaterThanOrEqual(thousand):
		return sign + grapheme + abs.Div(thousand).StringFixed(places) + "K"
	}
	if showDecimals {
		return sign + grapheme + abs.StringFixed(2)
	}
	return sign + grapheme + abs.StringFixed(0)
}

// Parse reads an amount typed by a person. It accepts the rupee sign,
// grouping commas and a Cr, L or K suffix: "₹12L", "1.5cr", "80,000".
func Parse(input string) (decimal.Decimal, error) {
	cleaned := strings.ToLower(input)
	for _, cut := range []string{currency().Grapheme, ",", " ", "\t"} {
		cleaned = strings.ReplaceAll(cleaned, cut, "")
	}
	if cleaned == "" {
		return decimal.Zero, nil
	}

	scale := decimal.NewFromInt(1)
	switch {
	case strings.HasSuffix(cleaned, "cr"):
		scale, cleaned = crore, strings.TrimSuffix(cleaned, "cr")
	case strings.HasSuffix(cleaned, "l"):
		scale, cleaned = lakh, strings.TrimSuffix(cleaned, "l")
	case strings.HasSuffix(cleaned, "k"):
		scale, cleaned = thousand, strings.TrimSuffix(cleaned, "k")
	}

	v, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", input, err)
	}
	return v.Mul(scale), nil
}

// Percent renders a fractional rate as a percentage, e.g. 0.12 -> 12.00%
func Percent(rate decimal.Decimal, places int32) string {
	return rate.Mul(hundred).StringFixed(places) + "%"
}
