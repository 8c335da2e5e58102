package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionDerive(t *testing.T) {
	cases := []struct {
		name      string
		tx        Transaction
		direction Direction
		abs       string
		yearMonth string
	}{
		{
			name:      "negative amount is an expense",
			tx:        Transaction{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-4500)},
			direction: Expense,
			abs:       "4500",
			yearMonth: "2025-01",
		},
		{
			name:      "positive amount is income",
			tx:        Transaction{Date: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(2500000)},
			direction: Income,
			abs:       "2500000",
			yearMonth: "2025-12",
		},
		{
			name:      "zero amount counts as expense",
			tx:        Transaction{Date: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.Zero},
			direction: Expense,
			abs:       "0",
			yearMonth: "2024-06",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.tx.Derive()
			if tc.tx.Direction != tc.direction {
				t.Errorf("direction = %s, want %s", tc.tx.Direction, tc.direction)
			}
			if tc.tx.AbsAmount.String() != tc.abs {
				t.Errorf("abs amount = %s, want %s", tc.tx.AbsAmount, tc.abs)
			}
			if tc.tx.YearMonth != tc.yearMonth {
				t.Errorf("year month = %s, want %s", tc.tx.YearMonth, tc.yearMonth)
			}
		})
	}
}

func TestTransactionDeriveDefaults(t *testing.T) {
	tx := Transaction{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-100)}
	tx.Derive()

	if tx.Description != PlaceholderDescription {
		t.Errorf("description = %q, want placeholder", tx.Description)
	}
	if tx.Category != CategoryUncategorized {
		t.Errorf("category = %q, want sentinel", tx.Category)
	}
	if !tx.Uncategorized() {
		t.Error("expected Uncategorized() to be true")
	}

	tx.Category = "dining"
	if tx.Uncategorized() {
		t.Error("real category should not be uncategorized")
	}
}
