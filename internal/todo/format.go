package todo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Fmt renders n as a comma-grouped integer, rounding half away from zero.
func Fmt(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "∞"
	case math.IsInf(n, -1):
		return "-∞"
	}
	r := math.Round(n)
	if r == 0 && math.Signbit(r) {
		return "-0"
	}
	return humanize.Commaf(r)
}

// FmtDollars renders n as whole dollars. Negative amounts keep their sign
// after the currency symbol ("$-1,200").
func FmtDollars(n float64) string {
	return "$" + Fmt(n)
}

// FmtRent renders a per-square-foot rent with two decimals. Rounding works
// on the shortest decimal form of n, so 2.675 renders as "$2.68".
func FmtRent(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "$" + Fmt(n)
	}
	cents, ok := decimalCents(n)
	if !ok {
		return "$" + humanize.FormatFloat("#,###.##", n)
	}
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("$%s%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

// decimalCents rounds n to whole cents, half away from zero, using its
// shortest decimal representation. ok is false when n does not fit.
func decimalCents(n float64) (cents int64, ok bool) {
	s := strconv.FormatFloat(math.Abs(n), 'f', -1, 64)
	whole, frac, _ := strings.Cut(s, ".")
	frac += "000"
	cents, err := strconv.ParseInt(whole+frac[:2], 10, 64)
	if err != nil || cents > math.MaxInt64-1 {
		return 0, false
	}
	if frac[2] >= '5' {
		cents++
	}
	if n < 0 && cents != 0 {
		cents = -cents
	}
	return cents, true
}

// round rounds half up toward positive infinity.
func round(n float64) float64 {
	return math.Floor(n + 0.5)
}
