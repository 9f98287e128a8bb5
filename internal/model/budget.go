// Package model defines the data types shared by the ledger and its views.
package model

// Budget is the total allocated for spending.
// Amount is always > 0 when IsSet is true.
type Budget struct {
	Amount float64
	IsSet  bool
}

// Summary is the budget-control view of a ledger.
type Summary struct {
	Budget      Budget
	Spent       float64
	Available   float64 // Budget.Amount - Spent, negative when overspent
	UsedPercent float64 // 0-1+, zero when no budget is set
	Count       int
	ByCategory  []CategoryTotal
}

// Overspent reports whether spending exceeds a configured budget.
func (s Summary) Overspent() bool {
	return s.Budget.IsSet && s.Available < 0
}

// CategoryTotal aggregates the entries of one category.
type CategoryTotal struct {
	Category string
	Amount   float64
	Count    int
	Share    float64 // fraction of total spend
}
