// Package services implements the measurement book data model: the schedule
// of rates, the CMB document tree, bill computation, abstract resolution,
// the undo stack and document rendering.
package services

import (
	"fmt"
	"math"
	"strings"
)

// integerUnits lists schedule units whose quantities are counted, not
// measured. Threshold quantities for these units are floored instead of
// rounded.
var integerUnits = map[string]bool{
	"point": true, "points": true, "pnt": true, "pnts": true,
	"number": true, "numbers": true, "no": true, "nos": true,
	"lot": true, "lots": true, "lump": true, "lumpsum": true,
	"lump-sum": true, "lump sum": true, "ls": true, "each": true,
	"job": true, "jobs": true, "set": true, "sets": true,
	"pair": true, "pairs": true,
	"pnt.": true, "no.": true, "nos.": true, "l.s.": true, "l.s": true,
}

// IsIntegerUnit reports whether the unit is counted in whole numbers.
func IsIntegerUnit(unit string) bool {
	return integerUnits[strings.ToLower(strings.TrimSpace(unit))]
}

// Round2 rounds to 2 decimal places. Used for all currency amounts.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places. Used for measured quantities.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatQty renders a quantity without decimals when whole, otherwise
// with up to 3 decimal places trimmed of trailing zeros.
func FormatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	s := fmt.Sprintf("%.3f", qty)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

// FormatINR formats an amount in Indian Rupee notation with the Indian
// digit grouping (₹12,34,567.89) and exactly two decimal places.
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	parts := strings.SplitN(fmt.Sprintf("%.2f", amount), ".", 2)
	intPart, decPart := parts[0], parts[1]

	// Rightmost group of 3 digits, then pairs.
	var groups []string
	if len(intPart) > 3 {
		groups = append(groups, intPart[len(intPart)-3:])
		rest := intPart[:len(intPart)-3]
		for len(rest) > 2 {
			groups = append(groups, rest[len(rest)-2:])
			rest = rest[:len(rest)-2]
		}
		if rest != "" {
			groups = append(groups, rest)
		}
		for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
			groups[i], groups[j] = groups[j], groups[i]
		}
		intPart = strings.Join(groups, ",")
	}
	return sign + "₹" + intPart + "." + decPart
}
