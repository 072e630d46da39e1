// Package ranking implements the multi-signal ranking core: a keyword scorer,
// a metadata scorer, and the ensemble ranker that combines them with the
// semantic signal into a single deterministic ordering.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
)

// ErrConfig marks invalid ranking configuration. It is the only failure that
// aborts a ranking call before any scoring begins.
var ErrConfig = errors.New("invalid ranking configuration")

// NeutralSemanticScore substitutes for the semantic signal when the upstream
// scorer fails or is not configured. Affected results carry a degraded flag.
const NeutralSemanticScore = 0.0

// SemanticScorer is the external collaborator providing embedding similarity
// in [0,1] between the raw query and a catalogue item.
type SemanticScorer interface {
	Similarity(ctx context.Context, rawQuery string, item *catalogue.Item) (float64, error)
}

// Weights is the named ensemble weight triple. The weights must sum to 1.0.
type Weights struct {
	Semantic float64 `json:"semantic"`
	Keyword  float64 `json:"keyword"`
	Metadata float64 `json:"metadata"`
}

// DefaultWeights returns the tuned production weights.
func DefaultWeights() Weights {
	return Weights{Semantic: 0.35, Keyword: 0.45, Metadata: 0.20}
}

const weightSumTolerance = 1e-9

func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Keyword < 0 || w.Metadata < 0 {
		return fmt.Errorf("%w: weights must be non-negative, got %+v", ErrConfig, w)
	}
	if sum := w.Semantic + w.Keyword + w.Metadata; math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %.6f", ErrConfig, sum)
	}
	return nil
}

// ScoreComponents holds the three independent relevance signals for one
// (query, item) pair, each in [0,1].
type ScoreComponents struct {
	Semantic float64 `json:"semantic"`
	Keyword  float64 `json:"keyword"`
	Metadata float64 `json:"metadata"`
}

// Result is one ranked recommendation. Rank is 1-based and unique within a
// ranking call.
type Result struct {
	Item             *catalogue.Item `json:"item"`
	Scores           ScoreComponents `json:"scores"`
	FinalScore       float64         `json:"final_score"`
	Rank             int             `json:"rank"`
	SemanticDegraded bool            `json:"semantic_degraded,omitempty"`
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
