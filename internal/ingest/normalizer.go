// Package ingest parses raw tabular ledgers into canonical transactions.
//
// Date corruption is fatal for the whole batch because downstream
// aggregation depends on chronological order; amount corruption only
// drops the affected row.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
)

// Result is the outcome of normalizing one raw batch.
type Result struct {
	Transactions []core.Transaction
	Dropped      int // rows discarded for unparseable amounts
}

// dateLayouts are the accepted textual date encodings, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	time.RFC3339,
}

// columnAliases maps recognized header spellings onto canonical column
// names. The Korean spellings match the export format of the banking
// apps this tool was originally written for.
var columnAliases = map[string]string{
	"date":        "date",
	"날짜":          "date",
	"description": "description",
	"desc":        "description",
	"적요":          "description",
	"amount":      "amount",
	"금액":          "amount",
	"category":    "category",
	"분류":          "category",
	"memo":        "memo",
	"메모":          "memo",
}

// ReadCSV parses a CSV ledger and normalizes it into transactions.
//
// The first record is the header; date and amount columns are required
// and their absence aborts the batch. Output is stably sorted ascending
// by date, and every transaction has its derived fields populated.
func ReadCSV(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: %w", core.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++

		tx, ok, err := normalizeRow(record, columns, row)
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Dropped++
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	if result.Dropped > 0 {
		slog.Warn("Dropped rows with unparseable amounts",
			applog.FieldComponent, applog.ComponentIngest,
			applog.FieldOperation, applog.OpNormalize,
			applog.FieldDropped, result.Dropped)
	}

	sort.SliceStable(result.Transactions, func(i, j int) bool {
		return result.Transactions[i].Date.Before(result.Transactions[j].Date)
	})

	return result, nil
}

// resolveColumns maps canonical column names onto header positions.
// Missing date or amount columns abort the batch.
func resolveColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			// utf-8-sig exports prefix a BOM to the first header cell
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		name := strings.ToLower(strings.TrimSpace(h))
		if canonical, ok := columnAliases[name]; ok {
			if _, dup := columns[canonical]; !dup {
				columns[canonical] = i
			}
		}
	}

	var missing []string
	for _, required := range []string{"date", "amount"} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return columns, nil
}

// normalizeRow builds a transaction from one record. The second return
// value is false when the row must be dropped (bad amount); an error is
// returned only for fatal conditions (bad date).
func normalizeRow(record []string, columns map[string]int, row int) (core.Transaction, bool, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("row %d: %w: %q", row, core.ErrInvalidDate, field("date"))
	}

	amount, err := core.ParseAmount(field("amount"))
	if err != nil {
		return core.Transaction{}, false, nil
	}

	tx := core.Transaction{
		Date:        date,
		Description: field("description"),
		Amount:      amount,
		Category:    field("category"),
		Memo:        field("memo"),
	}
	tx.Derive()
	return tx, true, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, core.ErrInvalidDate
}
