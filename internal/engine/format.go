package engine

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var esPrinter = message.NewPrinter(language.Spanish)

// Separators of the es locale, taken from the printer once.
var (
	esDecimalSep = strings.Trim(esPrinter.Sprint(number.Decimal(1.5)), "15")
	esGroupSep   = strings.Trim(esPrinter.Sprint(number.Decimal(1234567)), "1234567")
)

// FormatAmount renders a magnitude with es-ES separators and two decimals,
// e.g. 1.234,50. The digits come from the decimal itself, never from a float.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return formatWhole(whole) + esDecimalSep + frac
}

// formatWhole groups the integer part. Values that fit in a uint64 go through
// the printer exactly; larger ones are grouped in threes.
func formatWhole(whole string) string {
	n, ok := new(big.Int).SetString(whole, 10)
	if ok && n.IsUint64() {
		return esPrinter.Sprint(number.Decimal(n.Uint64()))
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(esGroupSep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatBalance renders a balance for the dashboard card: "+$" for zero and
// positive balances, "-$" otherwise.
func FormatBalance(d decimal.Decimal) string {
	sign := "+"
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + FormatAmount(d)
}
