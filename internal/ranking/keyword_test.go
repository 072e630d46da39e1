package ranking

import (
	"testing"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/query"
)

func TestKeywordScorerWordBoundaries(t *testing.T) {
	scorer := NewKeywordScorer(nil)
	q := &query.StructuredQuery{RequiredSkills: []string{"Java"}}

	javascript := &catalogue.Item{
		Name:        "JavaScript (New)",
		Description: "Measures knowledge of JavaScript programming",
		Skills:      []string{"JavaScript"},
	}
	if got := scorer.Score(q, javascript); got != 0 {
		t.Fatalf("expected Java to not match JavaScript, got %f", got)
	}

	java := &catalogue.Item{
		Name:   "Java 8 (New)",
		Skills: []string{"Java"},
	}
	if got := scorer.Score(q, java); got != 1.0 {
		t.Fatalf("expected Java to match item skill Java, got %f", got)
	}
}

func TestKeywordScorerOverlapFraction(t *testing.T) {
	scorer := NewKeywordScorer(nil)
	q := &query.StructuredQuery{RequiredSkills: []string{"Java", "collaboration"}}

	tests := []struct {
		name   string
		item   *catalogue.Item
		expect float64
	}{
		{
			name:   "all skills matched",
			item:   &catalogue.Item{Skills: []string{"Java", "collaboration"}},
			expect: 1.0,
		},
		{
			name:   "half matched",
			item:   &catalogue.Item{Skills: []string{"Java", "Programming"}},
			expect: 0.5,
		},
		{
			name:   "none matched",
			item:   &catalogue.Item{Skills: []string{"Python"}},
			expect: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.Score(q, tt.item); got != tt.expect {
				t.Fatalf("expected %f, got %f", tt.expect, got)
			}
		})
	}
}

func TestKeywordScorerEmptyQuery(t *testing.T) {
	scorer := NewKeywordScorer(nil)

	q := &query.StructuredQuery{}
	item := &catalogue.Item{Name: "Anything", Skills: []string{"Java"}}

	if got := scorer.Score(q, item); got != 0 {
		t.Fatalf("expected empty query to score 0, got %f", got)
	}
}

func TestKeywordScorerRawQueryFallback(t *testing.T) {
	scorer := NewKeywordScorer(nil)

	// No structured fields at all: tokens come from the raw text.
	q := &query.StructuredQuery{Raw: "need a java assessment"}
	item := &catalogue.Item{Name: "Java 8", Skills: []string{"Java"}}

	if got := scorer.Score(q, item); got == 0 {
		t.Fatalf("expected raw query tokens to produce a match")
	}
}

func TestKeywordScorerInterpreterFallback(t *testing.T) {
	scorer := NewKeywordScorer(nil)

	// The degraded query carries only the synthetic role; the whole raw
	// text must drive keyword overlap, vocabulary or not.
	q := query.Fallback("administrative assistant for banking operations")

	tests := []struct {
		name   string
		item   *catalogue.Item
		expect float64
	}{
		{
			name: "all raw tokens matched",
			item: &catalogue.Item{
				Name:        "Administrative Assistant Test",
				Description: "Covers banking operations support tasks",
			},
			expect: 1.0,
		},
		{
			name:   "half matched",
			item:   &catalogue.Item{Name: "Banking Operations"},
			expect: 0.5,
		},
		{
			name:   "none matched",
			item:   &catalogue.Item{Name: "Python (New)", Skills: []string{"Python"}},
			expect: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.Score(q, tt.item); got != tt.expect {
				t.Fatalf("expected %f, got %f", tt.expect, got)
			}
		})
	}

	if got := scorer.Score(query.Fallback(""), tests[0].item); got != 0 {
		t.Fatalf("expected empty degraded query to score 0, got %f", got)
	}
}

func TestKeywordScorerDetectsSkillsInRawQuery(t *testing.T) {
	scorer := NewKeywordScorer(nil)

	// "python" is only in the raw text, not in the structured skills.
	q := &query.StructuredQuery{
		Role:           "Data Analyst",
		RequiredSkills: []string{"SQL"},
		Raw:            "Data Analyst with SQL and python experience",
	}
	item := &catalogue.Item{Name: "Python (New)", Skills: []string{"Python"}}

	if got := scorer.Score(q, item); got == 0 {
		t.Fatalf("expected skill-like raw token to contribute")
	}
}

func TestKeywordScorerSynonymExpansion(t *testing.T) {
	q := &query.StructuredQuery{RequiredSkills: []string{"teamwork"}}
	item := &catalogue.Item{Name: "Collaboration Styles", Skills: []string{"collaboration"}}

	baseline := NewKeywordScorer(nil)
	if got := baseline.Score(q, item); got != 0 {
		t.Fatalf("expected no match without expansion, got %f", got)
	}

	expanded := NewKeywordScorer(DefaultSynonyms())
	if got := expanded.Score(q, item); got == 0 {
		t.Fatalf("expected synonym expansion to match collaboration")
	}
}

func TestKeywordScorerShortSkillNames(t *testing.T) {
	scorer := NewKeywordScorer(nil)
	q := &query.StructuredQuery{RequiredSkills: []string{"Go", "R"}}

	item := &catalogue.Item{Name: "Go (New)", Skills: []string{"Go"}}
	if got := scorer.Score(q, item); got != 0.5 {
		t.Fatalf("expected Go to match as a standalone token, got %f", got)
	}

	// Substrings do not count: "go" must not match "Google".
	google := &catalogue.Item{Name: "Google Cloud Fundamentals"}
	if got := scorer.Score(q, google); got != 0 {
		t.Fatalf("expected no match against Google, got %f", got)
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input  string
		expect []string
	}{
		{"Java, SQL and C++", []string{"java", "sql", "c++"}},
		{"Go and R programming", []string{"go", "r", "programming"}},
		{"the quick test", []string{"quick", "test"}},
		{"a an of", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.input)
		if len(got) != len(tt.expect) {
			t.Fatalf("Tokenize(%q) = %v, expected %v", tt.input, got, tt.expect)
		}
		for i := range got {
			if got[i] != tt.expect[i] {
				t.Fatalf("Tokenize(%q) = %v, expected %v", tt.input, got, tt.expect)
			}
		}
	}
}
