package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func TestReadCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"date,description,amount,category,memo",
		"2025-01-03,lunch place,-12000,dining,",
		"2025-01-02,coffee-chain-x,-4500,,",
		"2025-01-10,january salary,\"2,500,000\",salary,payday",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)
	assert.Equal(t, 0, result.Dropped)

	// sorted ascending by date
	assert.Equal(t, "coffee-chain-x", result.Transactions[0].Description)
	assert.Equal(t, "lunch place", result.Transactions[1].Description)
	assert.Equal(t, "january salary", result.Transactions[2].Description)

	// derived fields present on every row
	for _, tx := range result.Transactions {
		assert.NotEmpty(t, tx.Direction)
		assert.NotEmpty(t, tx.YearMonth)
		assert.False(t, tx.AbsAmount.IsNegative())
	}

	first := result.Transactions[0]
	assert.Equal(t, core.Expense, first.Direction)
	assert.Equal(t, "4500", first.AbsAmount.String())
	assert.Equal(t, "2025-01", first.YearMonth)
	assert.Equal(t, core.CategoryUncategorized, first.Category)

	salary := result.Transactions[2]
	assert.Equal(t, core.Income, salary.Direction)
	assert.Equal(t, "2500000", salary.Amount.String())
	assert.Equal(t, "payday", salary.Memo)
}

func TestReadCSVMissingColumns(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"no amount column", "date,description\n2025-01-01,thing"},
		{"no date column", "description,amount\nthing,-100"},
		{"empty input", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMissingColumn))
		})
	}
}

func TestReadCSVBadDateIsFatal(t *testing.T) {
	csvData := "date,amount\n2025-01-01,-100\nnot-a-date,-200\n"
	_, err := ReadCSV(strings.NewReader(csvData))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidDate))
	assert.Contains(t, err.Error(), "not-a-date")
}

func TestReadCSVBadAmountDropsRow(t *testing.T) {
	csvData := strings.Join([]string{
		"date,amount",
		"2025-01-01,-100",
		"2025-01-02,n/a",
		"2025-01-03,-300",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, 1, result.Dropped)
}

func TestReadCSVColumnAliases(t *testing.T) {
	// Korean bank export headers with a BOM prefix
	csvData := "\uFEFF날짜,적요,금액,분류\n2025-02-01,스타벅스,-6000,카페\n"

	result, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, "스타벅스", tx.Description)
	assert.Equal(t, "카페", tx.Category)
	assert.Equal(t, "-6000", tx.Amount.String())
}

func TestReadCSVMissingDescriptionGetsPlaceholder(t *testing.T) {
	csvData := "date,amount\n2025-01-01,-100\n"
	result, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, core.PlaceholderDescription, result.Transactions[0].Description)
}

func TestReadCSVDateFormats(t *testing.T) {
	for _, date := range []string{"2025-03-01", "2025/03/01", "2025.03.01", "20250301", "2025-03-01 09:30:00"} {
		t.Run(date, func(t *testing.T) {
			result, err := ReadCSV(strings.NewReader("date,amount\n" + date + ",-100\n"))
			require.NoError(t, err)
			require.Len(t, result.Transactions, 1)
			assert.Equal(t, "2025-03", result.Transactions[0].YearMonth)
		})
	}
}

func TestReadCSVStableSortPreservesInputOrderWithinDay(t *testing.T) {
	csvData := strings.Join([]string{
		"date,description,amount",
		"2025-01-01,first,-100",
		"2025-01-01,second,-200",
		"2025-01-01,third,-300",
	}, "\n")

	result, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)
	assert.Equal(t, "first", result.Transactions[0].Description)
	assert.Equal(t, "second", result.Transactions[1].Description)
	assert.Equal(t, "third", result.Transactions[2].Description)
}
