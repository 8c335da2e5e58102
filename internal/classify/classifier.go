// Package classify resolves transaction descriptions to categories.
//
// Resolution is a fixed fallback chain: the keyword rule table is
// consulted first, then a TF-IDF naive-Bayes model trained on labeled
// history, and finally the sentinel category when neither applies. Every
// prediction is tagged with the stage that produced it.
package classify

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jbrukh/bayesian"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
)

const (
	SourceKeyword  Source = "keyword"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

type (
	// Source tags which stage of the fallback chain produced a
	// prediction, so callers can assert why a category was chosen.
	Source string

	// Prediction is the ephemeral result of classifying one
	// description. It only ever flows into the merge step.
	Prediction struct {
		Description string
		Category    string
		Source      Source
	}

	// Sample is one labeled (description, category) training pair.
	Sample struct {
		Description string
		Category    string
	}

	// Evaluation reports element-wise accuracy of the fallback chain
	// over a labeled set.
	Evaluation struct {
		Accuracy float64
		Correct  int
		Total    int
		Status   string
	}
)

var (
	ErrNoTrainingData    = errors.New("no labeled training data")
	ErrTooFewCategories  = errors.New("training data must span at least two categories")
	ErrModelNotAvailable = errors.New("no trained model available")
)

// Classifier owns the keyword table and the persisted model slot.
// Construct one per model path; instances are safe for concurrent
// prediction but concurrent training from multiple processes is not
// coordinated (last writer wins).
type Classifier struct {
	modelPath string
	keywords  *KeywordTable
	cache     *cache.LRUCache[string]

	mu    sync.Mutex
	model *bayesian.Classifier
}

// NewClassifier creates a classifier backed by the model file at
// modelPath. The model is loaded lazily on first prediction.
func NewClassifier(modelPath string, keywords *KeywordTable) *Classifier {
	if keywords == nil {
		keywords = DefaultKeywordTable()
	}
	return &Classifier{
		modelPath: modelPath,
		keywords:  keywords,
		cache:     cache.NewLRUCache[string](2048, time.Hour),
	}
}

// Train fits a fresh model on the labeled samples and persists it to
// the model slot, unconditionally overwriting any prior model.
func (c *Classifier) Train(samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoTrainingData
	}

	classes := distinctClasses(samples)
	if len(classes) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewCategories, len(classes))
	}

	model := bayesian.NewClassifierTfIdf(classes...)
	for _, s := range samples {
		model.Learn(tokenize(s.Description), bayesian.Class(s.Category))
	}
	model.ConvertTermsFreqToTfIdf()

	if err := os.MkdirAll(filepath.Dir(c.modelPath), 0755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	if err := model.WriteToFile(c.modelPath); err != nil {
		return fmt.Errorf("persist model: %w", err)
	}

	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
	c.cache.Purge()

	slog.Info("Classifier trained",
		applog.FieldComponent, applog.ComponentClassify,
		applog.FieldOperation, applog.OpTrain,
		applog.FieldRowCount, len(samples),
		"categories", len(classes),
		applog.FieldModelPath, c.modelPath)
	return nil
}

// Load reads the persisted model into memory. It returns
// ErrModelNotAvailable when the slot is empty.
func (c *Classifier) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Classifier) loadLocked() error {
	if c.model != nil {
		return nil
	}
	model, err := bayesian.NewClassifierFromFile(c.modelPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrModelNotAvailable
		}
		return fmt.Errorf("load model: %w", err)
	}
	c.model = model
	return nil
}

// Predict resolves a single description. The keyword table short-
// circuits the model; with no keyword match and no trained model the
// sentinel category is returned rather than an error.
func (c *Classifier) Predict(description string) Prediction {
	if category, ok := c.keywords.Match(description); ok {
		return Prediction{Description: description, Category: category, Source: SourceKeyword}
	}

	if category, ok := c.cache.Get(description); ok {
		return Prediction{Description: description, Category: category, Source: SourceModel}
	}

	c.mu.Lock()
	err := c.loadLocked()
	model := c.model
	c.mu.Unlock()
	if err != nil || model == nil {
		return Prediction{Description: description, Category: core.CategoryUncategorized, Source: SourceFallback}
	}

	_, inx, _ := model.LogScores(tokenize(description))
	category := string(model.Classes[inx])
	c.cache.Set(description, category)
	return Prediction{Description: description, Category: category, Source: SourceModel}
}

// PredictBatch applies Predict to each description independently,
// preserving input order.
func (c *Classifier) PredictBatch(descriptions []string) []Prediction {
	out := make([]Prediction, len(descriptions))
	for i, d := range descriptions {
		out[i] = c.Predict(d)
	}
	return out
}

// Evaluate runs the full fallback chain over a labeled set and compares
// predictions against the true categories. An empty set reports
// accuracy 0 with an explanatory status instead of dividing by zero.
func (c *Classifier) Evaluate(samples []Sample) Evaluation {
	if len(samples) == 0 {
		return Evaluation{Status: "no labeled data to evaluate"}
	}

	correct := 0
	for _, s := range samples {
		if c.Predict(s.Description).Category == s.Category {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(samples))
	return Evaluation{
		Accuracy: accuracy,
		Correct:  correct,
		Total:    len(samples),
		Status:   fmt.Sprintf("accuracy %.1f%% (%d/%d)", accuracy*100, correct, len(samples)),
	}
}

// SamplesFromTransactions extracts labeled pairs from a ledger,
// skipping rows that still carry the sentinel category.
func SamplesFromTransactions(txns []core.Transaction) []Sample {
	samples := make([]Sample, 0, len(txns))
	for _, tx := range txns {
		if tx.Uncategorized() {
			continue
		}
		samples = append(samples, Sample{Description: tx.Description, Category: tx.Category})
	}
	return samples
}

func distinctClasses(samples []Sample) []bayesian.Class {
	seen := make(map[string]bool)
	classes := make([]bayesian.Class, 0, len(samples))
	for _, s := range samples {
		if !seen[s.Category] {
			seen[s.Category] = true
			classes = append(classes, bayesian.Class(s.Category))
		}
	}
	return classes
}

// tokenize splits a description into character unigrams and bigrams.
// Sub-word features matter here: descriptions are short merchant
// strings, often in languages without whitespace-delimited tokens.
func tokenize(s string) []string {
	runes := []rune(strings.ToLower(strings.TrimSpace(s)))
	if len(runes) == 0 {
		return []string{""}
	}
	terms := make([]string, 0, len(runes)*2)
	for i := range runes {
		terms = append(terms, string(runes[i]))
		if i+1 < len(runes) {
			terms = append(terms, string(runes[i:i+2]))
		}
	}
	return terms
}
