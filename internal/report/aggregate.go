// Package report provides pure aggregation and data-quality functions
// over an immutable transaction set. Nothing in here keeps state, so
// every function is safe to call repeatedly and concurrently; results
// are always rebuilt from scratch.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

type (
	// CategoryTotal is one row of the category summary.
	CategoryTotal struct {
		Category string
		Amount   decimal.Decimal
	}

	// MonthRow is one row of the monthly summary. Balance is income
	// minus expense for that month.
	MonthRow struct {
		Month   string
		Income  decimal.Decimal
		Expense decimal.Decimal
		Balance decimal.Decimal
	}

	// Metrics are the whole-ledger totals.
	Metrics struct {
		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Balance      decimal.Decimal
	}

	// Statistics bundles the derived indicators shown on the
	// statistics view. SavingsRate is a percentage, 0 when there is
	// no income.
	Statistics struct {
		MonthlyAvgExpense decimal.Decimal
		MonthlyAvgIncome  decimal.Decimal

		AvgExpense         decimal.Decimal
		MaxExpense         decimal.Decimal
		MinExpense         decimal.Decimal
		LargestExpenseDesc string

		CategoryCount      int
		TopExpenseCategory string

		TotalIncome  decimal.Decimal
		TotalExpense decimal.Decimal
		Net          decimal.Decimal
		SavingsRate  float64

		ExpenseCount int
		IncomeCount  int
	}
)

// SummarizeByCategory sums absolute amounts of expense rows per
// category, sorted descending by amount. Ties break alphabetically so
// output is deterministic. Empty input yields an empty result.
func SummarizeByCategory(txns []core.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txns {
		if !tx.IsExpense() {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.AbsAmount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for category, amount := range sums {
		out = append(out, CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SummarizeByMonth pivots the ledger into per-month income, expense
// and balance. Every month between the earliest and latest transaction
// appears, with zero income or expense filled in, so time-series charts
// stay contiguous.
func SummarizeByMonth(txns []core.Transaction) []MonthRow {
	if len(txns) == 0 {
		return nil
	}

	income := make(map[string]decimal.Decimal)
	expense := make(map[string]decimal.Decimal)
	minDate, maxDate := txns[0].Date, txns[0].Date
	for _, tx := range txns {
		if tx.Date.Before(minDate) {
			minDate = tx.Date
		}
		if tx.Date.After(maxDate) {
			maxDate = tx.Date
		}
		if tx.IsExpense() {
			expense[tx.YearMonth] = expense[tx.YearMonth].Add(tx.AbsAmount)
		} else {
			income[tx.YearMonth] = income[tx.YearMonth].Add(tx.AbsAmount)
		}
	}

	var out []MonthRow
	cursor := time.Date(minDate.Year(), minDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(maxDate.Year(), maxDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		month := core.YearMonth(cursor)
		row := MonthRow{
			Month:   month,
			Income:  income[month],
			Expense: expense[month],
		}
		row.Balance = row.Income.Sub(row.Expense)
		out = append(out, row)
		cursor = cursor.AddDate(0, 1, 0)
	}
	return out
}

// SummaryMetrics computes total income, total expense and their
// difference across the whole set.
func SummaryMetrics(txns []core.Transaction) Metrics {
	var m Metrics
	for _, tx := range txns {
		if tx.IsExpense() {
			m.TotalExpense = m.TotalExpense.Add(tx.AbsAmount)
		} else {
			m.TotalIncome = m.TotalIncome.Add(tx.AbsAmount)
		}
	}
	m.Balance = m.TotalIncome.Sub(m.TotalExpense)
	return m
}

// ComputeStatistics derives the statistics bundle. An empty expense
// subset produces zeroed metrics, never an error.
func ComputeStatistics(txns []core.Transaction) Statistics {
	stats := Statistics{}
	metrics := SummaryMetrics(txns)
	stats.TotalIncome = metrics.TotalIncome
	stats.TotalExpense = metrics.TotalExpense
	stats.Net = metrics.Balance

	categories := make(map[string]bool)
	for _, tx := range txns {
		categories[tx.Category] = true
		if tx.IsExpense() {
			stats.ExpenseCount++
			if tx.AbsAmount.GreaterThan(stats.MaxExpense) {
				stats.MaxExpense = tx.AbsAmount
				stats.LargestExpenseDesc = tx.Description
			}
			if stats.MinExpense.IsZero() || tx.AbsAmount.LessThan(stats.MinExpense) {
				stats.MinExpense = tx.AbsAmount
			}
		} else {
			stats.IncomeCount++
		}
	}
	stats.CategoryCount = len(categories)

	if stats.ExpenseCount > 0 {
		stats.AvgExpense = stats.TotalExpense.DivRound(decimal.NewFromInt(int64(stats.ExpenseCount)), 2)
	}

	if months := SummarizeByMonth(txns); len(months) > 0 {
		n := decimal.NewFromInt(int64(len(months)))
		var incomeSum, expenseSum decimal.Decimal
		for _, row := range months {
			incomeSum = incomeSum.Add(row.Income)
			expenseSum = expenseSum.Add(row.Expense)
		}
		stats.MonthlyAvgIncome = incomeSum.DivRound(n, 2)
		stats.MonthlyAvgExpense = expenseSum.DivRound(n, 2)
	}

	if byCategory := SummarizeByCategory(txns); len(byCategory) > 0 {
		stats.TopExpenseCategory = byCategory[0].Category
	}

	if stats.TotalIncome.IsPositive() {
		rate := stats.TotalIncome.Sub(stats.TotalExpense).
			Div(stats.TotalIncome).
			Mul(decimal.NewFromInt(100))
		stats.SavingsRate, _ = rate.Round(2).Float64()
	}

	return stats
}

// FilterByDateRange returns the transactions dated within [from, to],
// bounds inclusive. A zero bound is open on that side.
func FilterByDateRange(txns []core.Transaction, from, to time.Time) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, tx := range txns {
		if !from.IsZero() && tx.Date.Before(from) {
			continue
		}
		if !to.IsZero() && tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}
