package ledger

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount reads a user-typed amount such as "12", "12.50", "12,50" or
// "$12.50". Thousands separators are not accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalid(ReasonRequiredMissing)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(ReasonAmountUnreadable)
	}
	return v, nil
}
