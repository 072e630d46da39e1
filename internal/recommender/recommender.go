// Package recommender wires query interpretation, the three relevance
// signals, and the ensemble ranker into the single recommendation entry
// point.
package recommender

import (
	"context"
	"strings"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/query"
	"github.com/ChiragAJain/shl-recommender/internal/ranking"
	"go.uber.org/zap"
)

// Options tune the optional ranking behaviours.
type Options struct {
	// ExpandSynonyms widens query skill tokens with the synonym table.
	ExpandSynonyms bool
	// BalanceTestTypes interleaves K- and P-typed results when the query
	// wants both.
	BalanceTestTypes bool
	// DurationOverageFactor bounds the duration falloff, default 2x.
	DurationOverageFactor float64
	// Concurrency bounds parallel per-item semantic lookups.
	Concurrency int
}

// Analysis echoes the interpreted requirements and degradation state of one
// recommendation call.
type Analysis struct {
	Role                string   `json:"role,omitempty"`
	JobLevel            string   `json:"job_level,omitempty"`
	RequiredSkills      []string `json:"required_skills,omitempty"`
	RequiredTestTypes   []string `json:"required_test_types,omitempty"`
	DurationHintMinutes int      `json:"duration_hint_minutes,omitempty"`

	InterpreterDegraded bool `json:"interpreter_degraded,omitempty"`
	SemanticDegraded    int  `json:"semantic_degraded,omitempty"`
}

// Recommendation is the outcome of one query.
type Recommendation struct {
	Query    string            `json:"query"`
	Analysis Analysis          `json:"analysis"`
	Results  []*ranking.Result `json:"recommendations"`
}

// Engine is the recommendation core. The catalogue snapshot is read-only and
// shared across concurrent calls; each call is stateless and independent.
type Engine struct {
	catalogue   *catalogue.Catalogue
	interpreter query.Interpreter
	ranker      *ranking.Ranker
	opts        Options
	logger      *zap.Logger
}

// New builds an engine. The interpreter and semantic scorer may be nil; the
// engine then operates permanently in the corresponding degraded mode.
func New(cat *catalogue.Catalogue, interpreter query.Interpreter, semantic ranking.SemanticScorer, weights ranking.Weights, opts Options, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var synonyms map[string][]string
	if opts.ExpandSynonyms {
		synonyms = ranking.DefaultSynonyms()
	}

	ranker, err := ranking.NewRanker(
		weights,
		ranking.NewKeywordScorer(synonyms),
		ranking.NewMetadataScorer(opts.DurationOverageFactor),
		semantic,
		opts.Concurrency,
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &Engine{
		catalogue:   cat,
		interpreter: interpreter,
		ranker:      ranker,
		opts:        opts,
		logger:      logger,
	}, nil
}

// Recommend returns the ranked recommendation list for a free-text query.
// Upstream failures degrade the result instead of aborting it; only invalid
// configuration (non-positive nResults) is an error.
func (e *Engine) Recommend(ctx context.Context, rawQuery string, nResults int) (*Recommendation, error) {
	rawQuery = strings.TrimSpace(rawQuery)

	sq, interpreterDegraded := e.interpret(ctx, rawQuery)

	if sq.DurationHintMinutes == 0 {
		sq.DurationHintMinutes = query.ExtractDurationHint(rawQuery)
	}

	rankN := nResults
	if e.opts.BalanceTestTypes && nResults > 0 {
		// Balancing picks from the full ordering, so rank everything
		// first and truncate after the interleave.
		rankN = e.catalogue.Len()
		if rankN < nResults {
			rankN = nResults
		}
	}

	results, err := e.ranker.Rank(ctx, sq, e.catalogue.Items(), rankN)
	if err != nil {
		return nil, err
	}

	if e.opts.BalanceTestTypes {
		results = ranking.BalanceTestTypes(results, sq.RequiredTestTypes, nResults)
	}

	degraded := 0
	for _, res := range results {
		if res.SemanticDegraded {
			degraded++
		}
	}

	e.logger.Info("recommendation computed",
		zap.String("query", rawQuery),
		zap.Int("candidates", e.catalogue.Len()),
		zap.Int("returned", len(results)),
		zap.Int("semantic_degraded", degraded),
		zap.Bool("interpreter_degraded", interpreterDegraded),
	)

	return &Recommendation{
		Query: rawQuery,
		Analysis: Analysis{
			Role:                sq.Role,
			JobLevel:            sq.JobLevel,
			RequiredSkills:      sq.RequiredSkills,
			RequiredTestTypes:   sq.RequiredTestTypes,
			DurationHintMinutes: sq.DurationHintMinutes,
			InterpreterDegraded: interpreterDegraded,
			SemanticDegraded:    degraded,
		},
		Results: results,
	}, nil
}

// interpret runs the query interpreter and falls back to the documented
// degraded query on any failure.
func (e *Engine) interpret(ctx context.Context, rawQuery string) (*query.StructuredQuery, bool) {
	if e.interpreter == nil {
		return query.Fallback(rawQuery), true
	}

	sq, err := e.interpreter.Interpret(ctx, rawQuery)
	if err != nil || sq == nil {
		e.logger.Warn("query interpretation failed, using fallback", zap.Error(err))
		return query.Fallback(rawQuery), true
	}

	sq.Raw = rawQuery
	return sq, false
}
