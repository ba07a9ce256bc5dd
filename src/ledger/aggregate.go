// Package ledger is the pure aggregation layer: totals, monthly trend
// series and category breakdowns computed from a snapshot of transaction
// records. Functions here have no side effects and are cheap enough to
// re-run on every request.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"budget-server/src/models"
)

// The trend chart shows at most the last 6 distinct months present in the
// data; the breakdown chart shows at most the top 8 expense categories.
const (
	trendMonths         = 6
	breakdownCategories = 8
)

type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type MonthBucket struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// FilterByDateRange keeps the records whose Date falls inside [from, to],
// inclusive on both ends. Either bound may be empty, leaving that side
// open; with both empty the input is returned as-is, including records
// whose Date would not parse. Bounds and dates compare lexicographically,
// which is correct for ISO yyyy-MM-dd strings.
func FilterByDateRange(txns []models.Transaction, from, to string) []models.Transaction {
	if from == "" && to == "" {
		return txns
	}
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if from != "" && t.Date < from {
			continue
		}
		if to != "" && t.Date > to {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ComputeTotals sums income and expense amounts in input order and returns
// net = income - expenses. Empty input yields all zeros.
func ComputeTotals(txns []models.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, tx := range txns {
		switch tx.Kind {
		case models.KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case models.KindExpense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Net = t.Income.Sub(t.Expenses)
	return t
}

// MonthlySeries groups records by the yyyy-MM prefix of their date and sums
// income and expenses per month. The result is ascending by month and
// holds only the last trendMonths distinct months present in the data:
// months without records are absent, not zero-filled. Records with an
// unparseable date are skipped.
func MonthlySeries(txns []models.Transaction) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	for _, tx := range txns {
		key, ok := monthKey(tx.Date)
		if !ok {
			continue
		}
		b := buckets[key]
		if b == nil {
			b = &MonthBucket{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			buckets[key] = b
		}
		switch tx.Kind {
		case models.KindIncome:
			b.Income = b.Income.Add(tx.Amount)
		case models.KindExpense:
			b.Expenses = b.Expenses.Add(tx.Amount)
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > trendMonths {
		months = months[len(months)-trendMonths:]
	}

	out := make([]MonthBucket, 0, len(months))
	for _, m := range months {
		out = append(out, *buckets[m])
	}
	return out
}

// CategoryBreakdown sums expense amounts per category and returns the top
// breakdownCategories of them, descending by amount. Ties keep the order
// in which the categories were first encountered. Income records are
// ignored.
func CategoryBreakdown(txns []models.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, tx := range txns {
		if tx.Kind != models.KindExpense {
			continue
		}
		if _, seen := sums[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, c := range order {
		out = append(out, CategoryTotal{Category: c, Amount: sums[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	if len(out) > breakdownCategories {
		out = out[:breakdownCategories]
	}
	return out
}

// monthKey returns the yyyy-MM prefix of a valid ISO date.
func monthKey(date string) (string, bool) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", false
	}
	return date[:7], true
}
