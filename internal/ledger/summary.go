package ledger

import (
	"sort"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Summarize computes spent, available, and per-category totals.
func Summarize(budget model.Budget, entries []model.Entry) model.Summary {
	sum := model.Summary{Budget: budget, Count: len(entries)}

	byCat := make(map[string]*model.CategoryTotal)
	for _, e := range entries {
		sum.Spent += e.Amount
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &model.CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
		}
		ct.Amount += e.Amount
		ct.Count++
	}

	if budget.IsSet {
		sum.Available = budget.Amount - sum.Spent
		sum.UsedPercent = sum.Spent / budget.Amount
	}

	sum.ByCategory = make([]model.CategoryTotal, 0, len(byCat))
	for _, ct := range byCat {
		if sum.Spent > 0 {
			ct.Share = ct.Amount / sum.Spent
		}
		sum.ByCategory = append(sum.ByCategory, *ct)
	}
	sort.Slice(sum.ByCategory, func(i, j int) bool {
		a, b := sum.ByCategory[i], sum.ByCategory[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})

	return sum
}
