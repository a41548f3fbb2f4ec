// Package money formats storefront amounts.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as en-US dollars with two decimals, e.g. "$1,234.50".
func FormatUSD(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixedBank(2)

	whole, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// ParseUSD parses a plain decimal string; anything unparsable formats as zero.
func ParseUSD(value string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return d
}
