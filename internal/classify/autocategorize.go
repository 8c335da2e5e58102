package classify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
)

// AutoCategorize classifies every row of a ledger and merges the
// predictions: a row keeps its existing category unless that category
// is absent or the sentinel, in which case the prediction replaces it.
// The raw prediction is always retained on the row for audit. The
// operation is idempotent.
//
// Rows are classified independently, so the batch fans out over a
// bounded worker group; results land by index and output order matches
// input order. concurrency values below 1 are treated as 1.
func AutoCategorize(ctx context.Context, c *Classifier, txns []core.Transaction, concurrency int) ([]core.Transaction, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	out := make([]core.Transaction, len(txns))
	copy(out, txns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range out {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pred := c.Predict(out[i].Description)
			out[i].Predicted = pred.Category
			if out[i].Uncategorized() {
				out[i].Category = pred.Category
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
