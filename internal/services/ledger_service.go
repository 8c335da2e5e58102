package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/classify"
	"bilancio/internal/core"
	"bilancio/internal/ingest"
	applog "bilancio/internal/log"
	"bilancio/internal/report"
	"bilancio/internal/storage"
)

// ImportResult summarizes a CSV import.
type ImportResult struct {
	BatchID  string
	Imported int
	Dropped  int
}

// CategorizeResult summarizes an auto-categorization pass.
type CategorizeResult struct {
	Total      int
	Backfilled int
	Fallback   int
}

// Report bundles the aggregation views over a ledger.
type Report struct {
	Categories []report.CategoryTotal
	Months     []report.MonthRow
	Metrics    report.Metrics
}

// LedgerService orchestrates ledger operations across storage and the classifier
type LedgerService struct {
	store       storage.Store
	classifier  *classify.Classifier
	concurrency int
}

func NewLedgerService(store storage.Store, classifier *classify.Classifier, concurrency int) *LedgerService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LedgerService{
		store:       store,
		classifier:  classifier,
		concurrency: concurrency,
	}
}

// ImportCSV normalizes the CSV stream and replaces the stored ledger with it.
func (s *LedgerService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	result, err := ingest.ReadCSV(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv: %w", err)
	}

	batchID := uuid.NewString()
	if err := s.store.SaveLedger(ctx, batchID, result.Transactions); err != nil {
		return ImportResult{}, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Imported ledger",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpImport,
		applog.FieldBatchID, batchID,
		"imported", len(result.Transactions),
		"dropped", result.Dropped)

	return ImportResult{
		BatchID:  batchID,
		Imported: len(result.Transactions),
		Dropped:  result.Dropped,
	}, nil
}

// Ledger returns the stored ledger.
func (s *LedgerService) Ledger(ctx context.Context) ([]core.Transaction, error) {
	return s.store.LoadLedger(ctx)
}

// AutoCategorize fills in missing categories on the stored ledger and persists
// the result. Already-categorized rows are left untouched.
func (s *LedgerService) AutoCategorize(ctx context.Context) (CategorizeResult, error) {
	txns, err := s.store.LoadLedger(ctx)
	if err != nil {
		return CategorizeResult{}, fmt.Errorf("load ledger: %w", err)
	}

	categorized, err := classify.AutoCategorize(ctx, s.classifier, txns, s.concurrency)
	if err != nil {
		return CategorizeResult{}, fmt.Errorf("auto categorize: %w", err)
	}

	if err := s.store.SaveLedger(ctx, uuid.NewString(), categorized); err != nil {
		return CategorizeResult{}, fmt.Errorf("save ledger: %w", err)
	}

	res := CategorizeResult{Total: len(categorized)}
	for i := range categorized {
		if txns[i].Uncategorized() && !categorized[i].Uncategorized() {
			res.Backfilled++
		}
		if categorized[i].Uncategorized() {
			res.Fallback++
		}
	}

	slog.InfoContext(ctx, "Auto-categorized ledger",
		applog.FieldComponent, applog.ComponentClassify,
		applog.FieldOperation, applog.OpCategorize,
		"total", res.Total,
		"backfilled", res.Backfilled,
		"fallback", res.Fallback)

	return res, nil
}

// Train fits the model on the categorized rows of the stored ledger.
func (s *LedgerService) Train(ctx context.Context) (int, error) {
	txns, err := s.store.LoadLedger(ctx)
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}

	samples := classify.SamplesFromTransactions(txns)
	if err := s.classifier.Train(samples); err != nil {
		if errors.Is(err, classify.ErrNoTrainingData) || errors.Is(err, classify.ErrTooFewCategories) {
			return 0, err
		}
		return 0, fmt.Errorf("train model: %w", err)
	}
	return len(samples), nil
}

// Evaluate scores the model against the categorized rows of the stored ledger.
func (s *LedgerService) Evaluate(ctx context.Context) (classify.Evaluation, error) {
	txns, err := s.store.LoadLedger(ctx)
	if err != nil {
		return classify.Evaluation{}, fmt.Errorf("load ledger: %w", err)
	}
	return s.classifier.Evaluate(classify.SamplesFromTransactions(txns)), nil
}

// BuildReport aggregates the stored ledger, optionally restricted to a date
// range. Zero bounds leave that side open.
func (s *LedgerService) BuildReport(ctx context.Context, from, to time.Time) (Report, error) {
	txns, err := s.store.LoadLedger(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load ledger: %w", err)
	}
	txns = report.FilterByDateRange(txns, from, to)

	return Report{
		Categories: report.SummarizeByCategory(txns),
		Months:     report.SummarizeByMonth(txns),
		Metrics:    report.SummaryMetrics(txns),
	}, nil
}

// Statistics computes descriptive statistics over the stored ledger.
func (s *LedgerService) Statistics(ctx context.Context, from, to time.Time) (report.Statistics, error) {
	txns, err := s.store.LoadLedger(ctx)
	if err != nil {
		return report.Statistics{}, fmt.Errorf("load ledger: %w", err)
	}
	return report.ComputeStatistics(report.FilterByDateRange(txns, from, to)), nil
}

// Validate runs the data quality checks over the stored ledger.
func (s *LedgerService) Validate(ctx context.Context) (report.ValidationReport, error) {
	txns, err := s.store.LoadLedger(ctx)
	if err != nil {
		return report.ValidationReport{}, fmt.Errorf("load ledger: %w", err)
	}
	return report.ValidateLedger(txns, time.Now()), nil
}

// Close releases the underlying store.
func (s *LedgerService) Close() error {
	return s.store.Close()
}
