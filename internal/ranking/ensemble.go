package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/query"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Ranker combines the three relevance signals into the final ordered
// recommendation list. A Ranker is stateless across calls and safe for
// concurrent use.
type Ranker struct {
	weights     Weights
	keyword     *KeywordScorer
	metadata    *MetadataScorer
	semantic    SemanticScorer
	concurrency int
	logger      *zap.Logger
}

// NewRanker validates the weight triple and builds a ranker. A nil semantic
// scorer is allowed: every result then carries the neutral semantic score and
// a degraded flag.
func NewRanker(weights Weights, keyword *KeywordScorer, metadata *MetadataScorer, semantic SemanticScorer, concurrency int, logger *zap.Logger) (*Ranker, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if keyword == nil {
		keyword = NewKeywordScorer(nil)
	}
	if metadata == nil {
		metadata = NewMetadataScorer(0)
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ranker{
		weights:     weights,
		keyword:     keyword,
		metadata:    metadata,
		semantic:    semantic,
		concurrency: concurrency,
		logger:      logger,
	}, nil
}

// Rank scores every candidate, sorts by the weighted final score, and
// truncates to nResults. Per-item semantic lookups run concurrently; the sort
// waits for all of them. On context cancellation no partial result is
// returned. A semantic failure for an item degrades that item to the neutral
// score instead of failing the call.
func (r *Ranker) Rank(ctx context.Context, q *query.StructuredQuery, items []*catalogue.Item, nResults int) ([]*Result, error) {
	if nResults <= 0 {
		return nil, fmt.Errorf("%w: n_results must be positive, got %d", ErrConfig, nResults)
	}
	if q == nil {
		q = query.Fallback("")
	}
	if len(items) == 0 {
		return []*Result{}, nil
	}

	results := make([]*Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			scores := ScoreComponents{
				Keyword:  clamp01(r.keyword.Score(q, item)),
				Metadata: clamp01(r.metadata.Score(q, item)),
			}

			degraded := true
			if r.semantic != nil {
				sim, err := r.semantic.Similarity(gctx, q.Raw, item)
				switch {
				case gctx.Err() != nil:
					return gctx.Err()
				case err != nil:
					r.logger.Debug("semantic score unavailable, using neutral fallback",
						zap.String("item_id", item.ID),
						zap.Error(err),
					)
				default:
					scores.Semantic = clamp01(sim)
					degraded = false
				}
			}
			if degraded {
				scores.Semantic = NeutralSemanticScore
			}

			results[i] = &Result{
				Item:             item,
				Scores:           scores,
				FinalScore:       r.weights.Final(scores),
				SemanticDegraded: degraded,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortResults(results)

	if nResults < len(results) {
		results = results[:nResults]
	}
	for rank, res := range results {
		res.Rank = rank + 1
	}

	return results, nil
}

// Final computes the weighted linear combination of the score components. It
// is a pure function of the components and the weight triple.
func (w Weights) Final(s ScoreComponents) float64 {
	return w.Semantic*s.Semantic + w.Keyword*s.Keyword + w.Metadata*s.Metadata
}

// SortResults establishes the total order: final score descending, then
// keyword score, then semantic score, then item id ascending as the stable
// deterministic fallback.
func SortResults(results []*Result) {
	sort.Slice(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		if ra.FinalScore != rb.FinalScore {
			return ra.FinalScore > rb.FinalScore
		}
		if ra.Scores.Keyword != rb.Scores.Keyword {
			return ra.Scores.Keyword > rb.Scores.Keyword
		}
		if ra.Scores.Semantic != rb.Scores.Semantic {
			return ra.Scores.Semantic > rb.Scores.Semantic
		}
		return ra.Item.ID < rb.Item.ID
	})
}
