// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatAmount formats a money amount with thousands separators and two decimals.
// e.g., 1234.5 -> "1,234.50", -3 -> "-3.00"
func FormatAmount(v float64) string {
	if v < 0 {
		return "-" + FormatAmount(-v)
	}
	// Cents stay far inside int64 below 1e15.
	if !(v < 1e15) {
		s := strconv.FormatFloat(v, 'f', 2, 64)
		whole, frac, ok := strings.Cut(s, ".")
		if !ok {
			return s // NaN, Inf
		}
		return groupDigits(whole) + "." + frac
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s.%02d", FormatNumber(cents/100), cents%100)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	return groupDigits(strconv.FormatInt(n, 10))
}

// groupDigits inserts a comma every three digits from the right.
func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDate formats an entry timestamp in local time, e.g. "Mar 01 2026".
func FormatDate(t time.Time) string {
	if t.IsZero() || t.UnixMilli() == 0 {
		return "-"
	}
	return t.Local().Format("Jan 02 2006")
}

// ShortID returns the first 8 characters of an entry id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
