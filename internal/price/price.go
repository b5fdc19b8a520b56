// Package price normalizes the heterogeneous price literals found in
// supplier price lists and manually entered products.
package price

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a raw price literal into a canonical decimal value.
// Numeric inputs pass through untouched. Strings may carry a leading
// currency marker, internal spaces and either American ("1234.56"),
// European ("1.234,56") or comma-only ("1.234" vs "1234,56") notation.
//
// On failure Parse returns decimal.Zero together with a non-empty
// error message; callers must keep the original raw text next to the
// zero value so the price can be audited later.
func Parse(raw any) (decimal.Decimal, string) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, "price is empty"
	case decimal.Decimal:
		return v, ""
	case float64:
		return decimal.NewFromFloat(v), ""
	case float32:
		return decimal.NewFromFloat32(v), ""
	case int:
		return decimal.NewFromInt(int64(v)), ""
	case int32:
		return decimal.NewFromInt(int64(v)), ""
	case int64:
		return decimal.NewFromInt(v), ""
	case string:
		return parseString(v)
	default:
		return decimal.Zero, fmt.Sprintf("unsupported price type %T", raw)
	}
}

func parseString(raw string) (decimal.Decimal, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, "price is empty"
	}

	s = stripCurrencyMarker(s)
	s = strings.ReplaceAll(s, " ", "")
	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Sprintf("cannot interpret %q as a price", raw)
	}
	return d, ""
}

// stripCurrencyMarker removes a leading currency symbol or code such
// as "$", "US$ " or "ARS".
func stripCurrencyMarker(s string) string {
	i := 0
	for i < len(s) {
		c := s[i]
		if c >= '0' && c <= '9' {
			break
		}
		if c == '-' || c == '+' {
			break
		}
		if c == '.' || c == ',' {
			break
		}
		i++
	}
	return strings.TrimSpace(s[i:])
}

// normalizeSeparators rewrites the string to plain decimal-point
// notation. Three conventions occur upstream: American with "." as
// decimal point, European with "." grouping thousands and "," as
// decimal separator, and comma-only strings where the comma is the
// decimal separator only when followed by exactly two digits at the
// end of the string.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// European: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// American with grouping: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if decimalComma(s, lastComma) {
			head := strings.ReplaceAll(s[:lastComma], ",", "")
			s = head + "." + s[lastComma+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		// European grouping without a decimal part: 1.234.567
		s = strings.ReplaceAll(s, ".", "")
	}
	return s
}

// decimalComma reports whether the comma at index i is followed by
// exactly two digits at the end of the string.
func decimalComma(s string, i int) bool {
	tail := s[i+1:]
	if len(tail) != 2 {
		return false
	}
	for j := 0; j < len(tail); j++ {
		if tail[j] < '0' || tail[j] > '9' {
			return false
		}
	}
	return true
}
