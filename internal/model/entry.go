package model

import "time"

// Entry is a single expense record.
type Entry struct {
	ID        string
	Name      string
	Category  string
	Amount    float64
	CreatedAt time.Time
}

// Ledger is a read snapshot of the budget, the entries, and the filter state.
type Ledger struct {
	Budget   Budget
	Entries  []Entry
	Filter   string
	Filtered []Entry // equals Entries when Filter is empty
}
