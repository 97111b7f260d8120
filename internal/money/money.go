// Package money renders decimal amounts for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultSymbol is the Bangladeshi taka sign.
const DefaultSymbol = "৳"

// DefaultPlaces is the number of decimal places shown by default.
const DefaultPlaces = 2

// Formatter renders amounts as <sign><symbol><grouped integer>.<fraction>.
type Formatter struct {
	Symbol string
	Places int32
}

// Default returns a Formatter using DefaultSymbol and DefaultPlaces.
func Default() Formatter {
	return Formatter{Symbol: DefaultSymbol, Places: DefaultPlaces}
}

// Format renders d, e.g. -৳1,234.50.
func (f Formatter) Format(d decimal.Decimal) string {
	places := f.places()

	s := d.Abs().StringFixed(places)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.Round(places).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(f.Symbol)
	b.WriteString(group(intPart))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Plain renders d with the configured places and no symbol or grouping.
func (f Formatter) Plain(d decimal.Decimal) string {
	return d.StringFixed(f.places())
}

// places treats a negative setting as zero.
func (f Formatter) places() int32 {
	return max(f.Places, 0)
}

// group inserts thousands separators into a string of digits.
func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
