package ranking

import (
	"strings"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/query"
)

const (
	// NeutralMetadataScore is returned when the query carries no metadata
	// signal at all: absent constraints neither penalize an item nor count
	// as a perfect match.
	NeutralMetadataScore = 0.5

	defaultOverageFactor = 2.0
)

// MetadataScorer computes the compatibility between the structured
// requirements and an item's metadata. Each sub-check (test types, job level,
// duration) contributes equally and is skipped when the query provides no
// signal for that dimension.
type MetadataScorer struct {
	// OverageFactor bounds how far an item's duration may exceed the
	// query's time budget before scoring zero. At 2.0 an item twice as
	// long as the hint no longer fits at all.
	OverageFactor float64
}

func NewMetadataScorer(overageFactor float64) *MetadataScorer {
	if overageFactor <= 1 {
		overageFactor = defaultOverageFactor
	}
	return &MetadataScorer{OverageFactor: overageFactor}
}

// Score is a pure function of its inputs, returning a value in [0,1].
func (s *MetadataScorer) Score(q *query.StructuredQuery, item *catalogue.Item) float64 {
	var total float64
	applicable := 0

	if len(q.RequiredTestTypes) > 0 {
		total += testTypeFraction(q.RequiredTestTypes, item)
		applicable++
	}

	if q.JobLevel != "" {
		total += jobLevelMatch(q.JobLevel, item)
		applicable++
	}

	// An item with an unknown duration provides no signal for the duration
	// check rather than a mismatch.
	if q.DurationHintMinutes > 0 && item.DurationMinutes > 0 {
		total += s.durationFit(q.DurationHintMinutes, item.DurationMinutes)
		applicable++
	}

	if applicable == 0 {
		return NeutralMetadataScore
	}

	return total / float64(applicable)
}

// testTypeFraction returns the fraction of required test types the item covers.
func testTypeFraction(required []string, item *catalogue.Item) float64 {
	matched := 0
	for _, code := range required {
		if item.HasTestType(code) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

// jobLevelMatch reports 1.0 when the query level overlaps any of the item's
// level tags and 0.0 on an explicit mismatch. Comparison is on normalized
// tokens so "Entry Level" matches the tag "Entry-Level".
func jobLevelMatch(level string, item *catalogue.Item) float64 {
	if len(item.JobLevels) == 0 {
		// Item declares no levels: treat as compatible rather than a
		// mismatch.
		return 1.0
	}

	want := levelTokens(level)
	for _, tag := range item.JobLevels {
		for _, token := range levelTokens(tag) {
			for _, w := range want {
				if token == w {
					return 1.0
				}
			}
		}
	}
	return 0.0
}

func levelTokens(s string) []string {
	lower := strings.ToLower(s)
	raw := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == ','
	})

	// "level" appears in almost every tag and would match everything.
	tokens := raw[:0]
	for _, t := range raw {
		if t != "level" && t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// durationFit is 1.0 when the item fits the time budget, falls off linearly
// past it, and reaches 0.0 at OverageFactor times the hint.
func (s *MetadataScorer) durationFit(hint, duration int) float64 {
	if duration <= hint {
		return 1.0
	}

	limit := float64(hint) * s.OverageFactor
	if float64(duration) >= limit {
		return 0.0
	}

	return (limit - float64(duration)) / (limit - float64(hint))
}
