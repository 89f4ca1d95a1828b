package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Wire-format numeric limits: up to 9 integer digits and exactly 7 fraction
// digits.
const (
	maxIntegerDigits = 9
	fractionDigits   = 7
)

// formatValue renders v in the regulatory numeric format: exactly 7 digits
// after the decimal point, and at most 9 integer digits taken from the
// least-significant end of the integer part.
//
// Keeping the low-order digits is lossy for values of 10^9 and above. That
// truncation is a known constraint of the legacy wire format and is
// reproduced here bit-exactly for compatibility; validation rejects values
// that large before a report is generated, so a well-formed dataset never
// reaches it.
func formatValue(v float64) string {
	d := decimal.NewFromFloat(v).Round(fractionDigits)

	s := d.StringFixed(fractionDigits)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(intPart) > maxIntegerDigits {
		intPart = intPart[len(intPart)-maxIntegerDigits:]
	}

	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// parseValueFormat checks a rendered numeric string against the wire-format
// digit limits. It returns the integer and fraction digit counts; malformed
// strings report limits-exceeding counts so callers flag them.
func parseValueFormat(s string) (intDigits, fracDigits int, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "-")
	intPart, fracPart, found := strings.Cut(s, ".")
	if !found || intPart == "" {
		return 0, 0, false
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return 0, 0, false
		}
	}
	return len(intPart), len(fracPart), true
}
