package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget-server/src/models"
)

func tx(kind, category, amount, date string) models.Transaction {
	return models.Transaction{
		Description: "test",
		Amount:      decimal.RequireFromString(amount),
		Kind:        kind,
		Category:    category,
		Date:        date,
	}
}

func sampleRecords() []models.Transaction {
	return []models.Transaction{
		tx(models.KindIncome, models.CategoryIncome, "1000", "2024-01-05"),
		tx(models.KindExpense, "Food", "200", "2024-01-10"),
		tx(models.KindExpense, "Food", "50", "2024-02-01"),
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(sampleRecords())

	assert.True(t, totals.Income.Equal(decimal.RequireFromString("1000")), "income = %s", totals.Income)
	assert.True(t, totals.Expenses.Equal(decimal.RequireFromString("250")), "expenses = %s", totals.Expenses)
	assert.True(t, totals.Net.Equal(decimal.RequireFromString("750")), "net = %s", totals.Net)
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil)

	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expenses.IsZero())
	assert.True(t, totals.Net.IsZero())
}

func TestComputeTotalsExactDecimals(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3, not a float approximation.
	records := []models.Transaction{
		tx(models.KindExpense, "Food", "0.1", "2024-01-01"),
		tx(models.KindExpense, "Food", "0.2", "2024-01-02"),
	}
	totals := ComputeTotals(records)
	assert.Equal(t, "0.3", totals.Expenses.String())
}

func TestFilterByDateRange(t *testing.T) {
	records := sampleRecords()

	tests := []struct {
		name string
		from string
		to   string
		want int
	}{
		{name: "no bounds is identity", from: "", to: "", want: 3},
		{name: "single day", from: "2024-02-01", to: "2024-02-01", want: 1},
		{name: "inclusive both ends", from: "2024-01-05", to: "2024-01-10", want: 2},
		{name: "only from", from: "2024-01-10", to: "", want: 2},
		{name: "only to", from: "", to: "2024-01-10", want: 2},
		{name: "empty window", from: "2024-03-01", to: "2024-03-31", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterByDateRange(records, tc.from, tc.to)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestFilterByDateRangeSingleDayTotals(t *testing.T) {
	records := sampleRecords()
	day := FilterByDateRange(records, "2024-02-01", "2024-02-01")
	require.Len(t, day, 1)

	totals := ComputeTotals(day)
	assert.True(t, totals.Expenses.Equal(decimal.RequireFromString("50")))
	assert.True(t, totals.Income.IsZero())
}

func TestFilterByDateRangeNoBoundsKeepsInvalidDates(t *testing.T) {
	records := []models.Transaction{tx(models.KindExpense, "Food", "10", "not-a-date")}
	assert.Len(t, FilterByDateRange(records, "", ""), 1)
}

func TestMonthlySeries(t *testing.T) {
	series := MonthlySeries(sampleRecords())
	require.Len(t, series, 2)

	assert.Equal(t, "2024-01", series[0].Month)
	assert.True(t, series[0].Income.Equal(decimal.RequireFromString("1000")))
	assert.True(t, series[0].Expenses.Equal(decimal.RequireFromString("200")))

	assert.Equal(t, "2024-02", series[1].Month)
	assert.True(t, series[1].Income.IsZero())
	assert.True(t, series[1].Expenses.Equal(decimal.RequireFromString("50")))
}

func TestMonthlySeriesKeepsLastSixMonths(t *testing.T) {
	var records []models.Transaction
	for m := 1; m <= 9; m++ {
		records = append(records, tx(models.KindExpense, "Food", "10", fmt.Sprintf("2024-%02d-15", m)))
	}

	series := MonthlySeries(records)
	require.Len(t, series, 6)
	assert.Equal(t, "2024-04", series[0].Month)
	assert.Equal(t, "2024-09", series[5].Month)
	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Month, series[i].Month, "months must be strictly increasing")
	}
}

func TestMonthlySeriesSkipsGapsAndBadDates(t *testing.T) {
	records := []models.Transaction{
		tx(models.KindExpense, "Food", "10", "2024-01-15"),
		tx(models.KindExpense, "Food", "10", "2024-05-15"), // months 02..04 absent, not zero-filled
		tx(models.KindExpense, "Food", "10", ""),
		tx(models.KindExpense, "Food", "10", "garbage"),
	}

	series := MonthlySeries(records)
	require.Len(t, series, 2)
	assert.Equal(t, "2024-01", series[0].Month)
	assert.Equal(t, "2024-05", series[1].Month)
}

func TestCategoryBreakdown(t *testing.T) {
	breakdown := CategoryBreakdown(sampleRecords())
	require.Len(t, breakdown, 1)
	assert.Equal(t, "Food", breakdown[0].Category)
	assert.True(t, breakdown[0].Amount.Equal(decimal.RequireFromString("250")))
}

func TestCategoryBreakdownTopEightDescending(t *testing.T) {
	var records []models.Transaction
	for i := 1; i <= 10; i++ {
		records = append(records, tx(models.KindExpense, fmt.Sprintf("cat-%02d", i), fmt.Sprintf("%d", i*10), "2024-01-01"))
	}
	// Income must never show up in the breakdown.
	records = append(records, tx(models.KindIncome, models.CategoryIncome, "9999", "2024-01-01"))

	breakdown := CategoryBreakdown(records)
	require.Len(t, breakdown, 8)
	assert.Equal(t, "cat-10", breakdown[0].Category)
	for i := 1; i < len(breakdown); i++ {
		assert.False(t, breakdown[i].Amount.GreaterThan(breakdown[i-1].Amount), "amounts must be non-increasing")
	}
}

func TestCategoryBreakdownTiesKeepFirstEncounteredOrder(t *testing.T) {
	records := []models.Transaction{
		tx(models.KindExpense, "Bills", "50", "2024-01-01"),
		tx(models.KindExpense, "Travel", "50", "2024-01-02"),
	}

	breakdown := CategoryBreakdown(records)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Bills", breakdown[0].Category)
	assert.Equal(t, "Travel", breakdown[1].Category)
}

func TestAggregationLeavesInputUntouched(t *testing.T) {
	records := sampleRecords()

	ComputeTotals(records)
	MonthlySeries(records)
	CategoryBreakdown(records)
	FilterByDateRange(records, "2024-01-01", "2024-12-31")

	require.Len(t, records, 3)
	assert.Equal(t, "2024-01-05", records[0].Date)
	assert.Equal(t, "2024-01-10", records[1].Date)
	assert.Equal(t, "2024-02-01", records[2].Date)
}
