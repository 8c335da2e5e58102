package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// CategoryUncategorized is the sentinel category assigned when no
// category is known. Rows holding it are eligible for auto-assignment.
const CategoryUncategorized = "uncategorized"

// PlaceholderDescription is substituted when the source data carries no
// description, so keyword matching always has a string to work with.
const PlaceholderDescription = "(no description)"

type (
	// Direction tells whether a transaction is money in or money out,
	// derived from the sign of the amount.
	Direction string

	// Transaction is one canonical ledger row. Date, Description,
	// Amount, Category and Memo come from the source data; Direction,
	// AbsAmount and YearMonth are derived during normalization and
	// never persisted independently. Predicted records the category
	// the classifier proposed, kept alongside Category so machine
	// assignments stay auditable.
	Transaction struct {
		Date        time.Time
		Description string
		Amount      decimal.Decimal
		Category    string
		Memo        string

		Direction Direction
		AbsAmount decimal.Decimal
		YearMonth string

		Predicted string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrMissingColumn = errors.New("missing required column")
)

// Derive fills the computed fields from Date and Amount. It is called
// by the normalizer and again when rows are loaded back out of storage.
func (t *Transaction) Derive() {
	if t.Amount.IsPositive() {
		t.Direction = Income
	} else {
		t.Direction = Expense
	}
	t.AbsAmount = t.Amount.Abs()
	t.YearMonth = YearMonth(t.Date)
	if strings.TrimSpace(t.Description) == "" {
		t.Description = PlaceholderDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		t.Category = CategoryUncategorized
	}
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Direction == Expense
}

// Uncategorized reports whether the row still carries the sentinel
// category and is therefore a candidate for auto-categorization.
func (t Transaction) Uncategorized() bool {
	return t.Category == "" || t.Category == CategoryUncategorized
}

// YearMonth returns the "YYYY-MM" bucket for a date, the grouping key
// used by all time-series aggregation.
func YearMonth(d time.Time) string {
	return d.Format("2006-01")
}
