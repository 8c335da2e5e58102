package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"bilancio/internal/core"
)

const (
	SeverityCritical Severity = "critical"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type (
	// Severity ranks how much an issue should worry the user.
	Severity string

	// Issue is one data-quality finding.
	Issue struct {
		Type     string
		Message  string
		Severity Severity
	}

	// ValidationReport groups findings by weight: warnings deserve
	// a look, suggestions are hints.
	ValidationReport struct {
		Warnings    []Issue
		Suggestions []Issue
	}
)

// TotalIssues counts every finding in the report.
func (r ValidationReport) TotalIssues() int {
	return len(r.Warnings) + len(r.Suggestions)
}

// ValidateLedger runs the non-fatal data-quality checks over a
// normalized ledger. Structural problems (missing columns, bad dates)
// never reach this point; the normalizer rejects those batches.
func ValidateLedger(txns []core.Transaction, now time.Time) ValidationReport {
	var r ValidationReport
	r.checkFutureDates(txns, now)
	r.checkZeroAmounts(txns)
	r.checkLargeAmounts(txns)
	r.checkDuplicates(txns)
	r.checkOutliers(txns)
	r.checkMissingValues(txns)
	r.checkCategories(txns)
	return r
}

func (r *ValidationReport) warn(issueType, message string, severity Severity) {
	r.Warnings = append(r.Warnings, Issue{Type: issueType, Message: message, Severity: severity})
}

func (r *ValidationReport) suggest(issueType, message string) {
	r.Suggestions = append(r.Suggestions, Issue{Type: issueType, Message: message, Severity: SeverityLow})
}

func (r *ValidationReport) checkFutureDates(txns []core.Transaction, now time.Time) {
	count := 0
	for _, tx := range txns {
		if tx.Date.After(now) {
			count++
		}
	}
	if count > 0 {
		r.warn("future_dates", fmt.Sprintf("%d transactions dated in the future", count), SeverityMedium)
	}
}

func (r *ValidationReport) checkZeroAmounts(txns []core.Transaction) {
	count := 0
	for _, tx := range txns {
		if tx.Amount.IsZero() {
			count++
		}
	}
	if count > 0 {
		r.warn("zero_amounts", fmt.Sprintf("%d transactions with a zero amount", count), SeverityLow)
	}
}

// checkLargeAmounts flags expenses more than three standard deviations
// above the mean expense. Needs at least two expenses for a sample
// deviation to exist.
func (r *ValidationReport) checkLargeAmounts(txns []core.Transaction) {
	var amounts []float64
	for _, tx := range txns {
		if tx.IsExpense() {
			v, _ := tx.AbsAmount.Float64()
			amounts = append(amounts, v)
		}
	}
	if len(amounts) < 2 {
		return
	}

	var sum float64
	for _, v := range amounts {
		sum += v
	}
	mean := sum / float64(len(amounts))

	var sqDiff float64
	for _, v := range amounts {
		sqDiff += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(sqDiff / float64(len(amounts)-1))

	threshold := mean + 3*stddev
	count := 0
	for _, v := range amounts {
		if v > threshold {
			count++
		}
	}
	if count > 0 {
		r.warn("large_amounts", fmt.Sprintf("%d abnormally large expenses (above %.0f)", count, threshold), SeverityMedium)
	}
}

func (r *ValidationReport) checkDuplicates(txns []core.Transaction) {
	seen := make(map[string]int)
	for _, tx := range txns {
		key := tx.Date.Format("2006-01-02") + "|" + tx.Description + "|" + tx.Amount.String()
		seen[key]++
	}
	count := 0
	for _, n := range seen {
		if n > 1 {
			count += n - 1
		}
	}
	if count > 0 {
		r.warn("duplicates", fmt.Sprintf("%d possible duplicate transactions (same date, description and amount)", count), SeverityMedium)
	}
}

// checkOutliers flags expenses outside the Tukey fences
// (1.5×IQR beyond the quartiles). Skipped for small samples where
// quartiles are meaningless.
func (r *ValidationReport) checkOutliers(txns []core.Transaction) {
	var amounts []float64
	for _, tx := range txns {
		if tx.IsExpense() {
			v, _ := tx.AbsAmount.Float64()
			amounts = append(amounts, v)
		}
	}
	if len(amounts) <= 10 {
		return
	}
	sort.Float64s(amounts)

	q1 := quantile(amounts, 0.25)
	q3 := quantile(amounts, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range amounts {
		if v < lower || v > upper {
			count++
		}
	}
	if count > 0 {
		r.suggest("statistical_outliers", fmt.Sprintf("%d expenses fall outside the usual spending range", count))
	}
}

func (r *ValidationReport) checkMissingValues(txns []core.Transaction) {
	missingDesc := 0
	missingCat := 0
	for _, tx := range txns {
		if tx.Description == core.PlaceholderDescription {
			missingDesc++
		}
		if tx.Uncategorized() {
			missingCat++
		}
	}
	if missingDesc > 0 {
		r.suggest("missing_descriptions", fmt.Sprintf("%d transactions without a description; classification works better with one", missingDesc))
	}
	if missingCat > 0 {
		r.suggest("missing_categories", fmt.Sprintf("%d transactions without a category; run auto-categorization or label them", missingCat))
	}
}

func (r *ValidationReport) checkCategories(txns []core.Transaction) {
	categories := make(map[string]bool)
	for _, tx := range txns {
		if !tx.Uncategorized() {
			categories[tx.Category] = true
		}
	}
	if len(categories) > 20 {
		r.suggest("too_many_categories", fmt.Sprintf("%d categories in use; merging some would sharpen the analysis", len(categories)))
	}

	names := make([]string, 0, len(categories))
	for c := range categories {
		names = append(names, c)
	}
	sort.Strings(names)

	pairs := similarCategories(names)
	if len(pairs) > 0 {
		r.suggest("similar_categories", fmt.Sprintf("possibly duplicated categories: %s", strings.Join(pairs, ", ")))
	}
}

// similarCategories pairs category names where one contains the other.
// Substring containment is a blunt heuristic and misfires on very short
// names; capped at five pairs to keep reports readable.
func similarCategories(names []string) []string {
	var pairs []string
	for i, a := range names {
		for _, b := range names[i+1:] {
			la, lb := strings.ToLower(a), strings.ToLower(b)
			if strings.Contains(la, lb) || strings.Contains(lb, la) {
				pairs = append(pairs, a+"/"+b)
				if len(pairs) == 5 {
					return pairs
				}
			}
		}
	}
	return pairs
}

// quantile computes a linearly interpolated quantile over sorted data.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
