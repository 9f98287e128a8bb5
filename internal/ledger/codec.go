package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Persistence keys.
const (
	KeyBudget  = "planner.budget"
	KeyEntries = "planner.expenses"
)

// entryRecord is the stored shape of an Entry.
type entryRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Amount    jsonAmount `json:"amount"`
	CreatedAt int64      `json:"createdAt"` // ms since epoch
}

// jsonAmount encodes as a JSON number and also decodes numeric strings,
// which form-driven clients tend to store.
type jsonAmount float64

func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		*a = jsonAmount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = jsonAmount(v)
	return nil
}

func encodeBudget(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// decodeBudget returns the stored budget, or false if it is not a positive number.
func decodeBudget(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || !(v > 0) {
		return 0, false
	}
	return v, true
}

func encodeEntries(entries []model.Entry) (string, error) {
	records := make([]entryRecord, len(entries))
	for i, e := range entries {
		records[i] = entryRecord{
			ID:        e.ID,
			Name:      e.Name,
			Category:  e.Category,
			Amount:    jsonAmount(e.Amount),
			CreatedAt: e.CreatedAt.UnixMilli(),
		}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encoding entries: %w", err)
	}
	return string(data), nil
}

func decodeEntries(s string) ([]model.Entry, error) {
	var records []entryRecord
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return nil, fmt.Errorf("decoding entries: %w", err)
	}
	entries := make([]model.Entry, len(records))
	for i, r := range records {
		entries[i] = model.Entry{
			ID:        r.ID,
			Name:      r.Name,
			Category:  r.Category,
			Amount:    float64(r.Amount),
			CreatedAt: time.UnixMilli(r.CreatedAt),
		}
	}
	return entries, nil
}
