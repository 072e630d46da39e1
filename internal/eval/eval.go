// Package eval measures ranking quality against a labeled query set and
// produces batch predictions for unlabeled queries.
package eval

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/recommender"
	"go.uber.org/zap"
)

// Recommender is the engine surface the evaluator depends on.
type Recommender interface {
	Recommend(ctx context.Context, rawQuery string, nResults int) (*recommender.Recommendation, error)
}

// LabeledQuery pairs a free-text query with the assessments a human marked
// relevant for it.
type LabeledQuery struct {
	Query    string
	Relevant []string
}

// LoadLabeledSet reads a long-format CSV (Query,Assessment_url — one row per
// relevant assessment) and groups the rows by query, preserving first-seen
// order.
func LoadLabeledSet(path string) ([]LabeledQuery, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening labeled set: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading labeled set: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("labeled set is empty")
	}

	// Tolerate a header row.
	if strings.EqualFold(strings.TrimSpace(records[0][0]), "query") {
		records = records[1:]
	}

	index := make(map[string]int)
	var set []LabeledQuery
	for _, rec := range records {
		q := strings.TrimSpace(rec[0])
		url := strings.TrimSpace(rec[1])
		if q == "" || url == "" {
			continue
		}

		i, ok := index[q]
		if !ok {
			i = len(set)
			index[q] = i
			set = append(set, LabeledQuery{Query: q})
		}
		set[i].Relevant = append(set[i].Relevant, url)
	}

	return set, nil
}

// RecallAtK is the fraction of the relevant assessments found in the top k
// predictions. Both sides are compared by catalogue id, so URLs and ids mix
// freely.
func RecallAtK(predicted, relevant []string, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	if k > len(predicted) {
		k = len(predicted)
	}

	top := make(map[string]struct{}, k)
	for _, p := range predicted[:k] {
		top[relevantKey(p)] = struct{}{}
	}

	truth := make(map[string]struct{}, len(relevant))
	for _, r := range relevant {
		truth[relevantKey(r)] = struct{}{}
	}

	hits := 0
	for key := range truth {
		if _, ok := top[key]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

func relevantKey(s string) string {
	if strings.Contains(s, "/") {
		return catalogue.IDFromURL(s)
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Report summarizes one evaluation run.
type Report struct {
	// Queries is the number of labeled queries that produced a ranking.
	Queries int
	// MeanRecall maps each requested cutoff k to the mean Recall@k.
	MeanRecall map[int]float64
}

// Evaluator runs labeled queries through the engine and aggregates recall.
type Evaluator struct {
	engine Recommender
	logger *zap.Logger
}

func NewEvaluator(engine Recommender, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{engine: engine, logger: logger}
}

// Evaluate computes the mean Recall@k over the labeled set for every cutoff
// in ks. A query whose recommendation call fails is logged and skipped, so a
// flaky upstream shrinks the sample instead of aborting the run.
func (e *Evaluator) Evaluate(ctx context.Context, set []LabeledQuery, ks []int) (*Report, error) {
	if len(set) == 0 {
		return nil, errors.New("labeled set is empty")
	}
	if len(ks) == 0 {
		ks = []int{10}
	}

	maxK := 0
	for _, k := range ks {
		if k <= 0 {
			return nil, fmt.Errorf("recall cutoff must be positive, got %d", k)
		}
		if k > maxK {
			maxK = k
		}
	}

	sums := make(map[int]float64, len(ks))
	evaluated := 0

	for _, lq := range set {
		if len(lq.Relevant) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := e.engine.Recommend(ctx, lq.Query, maxK)
		if err != nil {
			e.logger.Warn("skipping query, recommendation failed",
				zap.String("query", lq.Query),
				zap.Error(err),
			)
			continue
		}

		predicted := make([]string, 0, len(rec.Results))
		for _, res := range rec.Results {
			predicted = append(predicted, res.Item.ID)
		}

		for _, k := range ks {
			sums[k] += RecallAtK(predicted, lq.Relevant, k)
		}
		evaluated++

		e.logger.Debug("query evaluated",
			zap.String("query", lq.Query),
			zap.Int("relevant", len(lq.Relevant)),
			zap.Int("predicted", len(predicted)),
		)
	}

	if evaluated == 0 {
		return nil, errors.New("no labeled query could be evaluated")
	}

	report := &Report{Queries: evaluated, MeanRecall: make(map[int]float64, len(ks))}
	for _, k := range ks {
		report.MeanRecall[k] = sums[k] / float64(evaluated)
	}
	return report, nil
}

// WritePredictions runs every query through the engine and writes the ranked
// assessment URLs as long-format CSV (Query,Assessment_url — one row per
// recommendation). It returns the number of data rows written.
func (e *Evaluator) WritePredictions(ctx context.Context, w io.Writer, queries []string, nResults int) (int, error) {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Query", "Assessment_url"}); err != nil {
		return 0, err
	}

	rows := 0
	for _, q := range queries {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rows, err
		}

		rec, err := e.engine.Recommend(ctx, q, nResults)
		if err != nil {
			e.logger.Warn("skipping query, recommendation failed",
				zap.String("query", q),
				zap.Error(err),
			)
			continue
		}

		for _, res := range rec.Results {
			if res.Item.URL == "" {
				continue
			}
			if err := writer.Write([]string{q, res.Item.URL}); err != nil {
				return rows, err
			}
			rows++
		}
	}

	writer.Flush()
	return rows, writer.Error()
}
