package recommender

import (
	"context"
	"errors"
	"testing"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/query"
	"github.com/ChiragAJain/shl-recommender/internal/ranking"
	"go.uber.org/zap"
)

type stubInterpreter struct {
	sq  *query.StructuredQuery
	err error
}

func (s *stubInterpreter) Interpret(context.Context, string) (*query.StructuredQuery, error) {
	return s.sq, s.err
}

type stubSemantic struct {
	scores map[string]float64
	err    error
}

func (s *stubSemantic) Similarity(_ context.Context, _ string, item *catalogue.Item) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[item.ID], nil
}

func testCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	return catalogue.New([]*catalogue.Item{
		{
			Name:      "Java Developer Test",
			Skills:    []string{"Java", "Spring"},
			TestTypes: []string{"K"},
			URL:       "https://example.com/catalog/java-developer-test/",
		},
		{
			Name:      "Teamwork Questionnaire",
			Skills:    []string{"collaboration", "communication"},
			TestTypes: []string{"P"},
			URL:       "https://example.com/catalog/teamwork-questionnaire/",
		},
		{
			Name:      "Python Coding Assessment",
			Skills:    []string{"Python"},
			TestTypes: []string{"K"},
			URL:       "https://example.com/catalog/python-coding-assessment/",
		},
	})
}

func newTestEngine(t *testing.T, interpreter query.Interpreter, semantic ranking.SemanticScorer, opts Options) *Engine {
	t.Helper()
	engine, err := New(testCatalogue(t), interpreter, semantic, ranking.DefaultWeights(), opts, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return engine
}

func TestRecommendHappyPath(t *testing.T) {
	interp := &stubInterpreter{sq: &query.StructuredQuery{
		Role:              "Java Developer",
		RequiredSkills:    []string{"Java"},
		RequiredTestTypes: []string{"K"},
		SearchQuery:       "Java developer assessment",
	}}
	engine := newTestEngine(t, interp, &stubSemantic{scores: map[string]float64{}}, Options{})

	rec, err := engine.Recommend(context.Background(), "  Looking for a Java developer assessment  ", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Query != "Looking for a Java developer assessment" {
		t.Fatalf("expected trimmed query echo, got %q", rec.Query)
	}
	if rec.Analysis.InterpreterDegraded {
		t.Fatalf("did not expect interpreter degradation")
	}
	if rec.Analysis.Role != "Java Developer" {
		t.Fatalf("expected analysis to echo the role, got %q", rec.Analysis.Role)
	}
	if len(rec.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rec.Results))
	}
	if rec.Results[0].Item.ID != "java-developer-test" {
		t.Fatalf("expected the Java assessment first, got %s", rec.Results[0].Item.ID)
	}
}

func TestRecommendInterpreterFailureFallsBack(t *testing.T) {
	tests := []struct {
		name        string
		interpreter query.Interpreter
	}{
		{"interpreter error", &stubInterpreter{err: errors.New("model unavailable")}},
		{"interpreter nil result", &stubInterpreter{}},
		{"no interpreter configured", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.interpreter, &stubSemantic{scores: map[string]float64{}}, Options{})

			rec, err := engine.Recommend(context.Background(), "Java developer", 3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !rec.Analysis.InterpreterDegraded {
				t.Fatalf("expected interpreter degradation flag")
			}
			if rec.Analysis.Role != "Unknown" {
				t.Fatalf("expected fallback role, got %q", rec.Analysis.Role)
			}
			if len(rec.Results) == 0 {
				t.Fatalf("expected a ranking despite interpreter failure")
			}
		})
	}
}

func TestRecommendExtractsDurationHint(t *testing.T) {
	interp := &stubInterpreter{sq: &query.StructuredQuery{
		Role:           "Analyst",
		RequiredSkills: []string{"Java"},
	}}
	engine := newTestEngine(t, interp, nil, Options{})

	rec, err := engine.Recommend(context.Background(), "Java test under 45 minutes", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Analysis.DurationHintMinutes != 45 {
		t.Fatalf("expected duration hint 45, got %d", rec.Analysis.DurationHintMinutes)
	}
}

func TestRecommendKeepsInterpreterDurationHint(t *testing.T) {
	interp := &stubInterpreter{sq: &query.StructuredQuery{
		Role:                "Analyst",
		DurationHintMinutes: 30,
	}}
	engine := newTestEngine(t, interp, nil, Options{})

	rec, err := engine.Recommend(context.Background(), "test under 60 minutes", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Analysis.DurationHintMinutes != 30 {
		t.Fatalf("expected interpreter hint to win, got %d", rec.Analysis.DurationHintMinutes)
	}
}

func TestRecommendCountsSemanticDegradation(t *testing.T) {
	engine := newTestEngine(t, &stubInterpreter{err: errors.New("down")},
		&stubSemantic{err: errors.New("embeddings down")}, Options{})

	rec, err := engine.Recommend(context.Background(), "Java developer", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Analysis.SemanticDegraded != len(rec.Results) {
		t.Fatalf("expected all %d results degraded, got %d",
			len(rec.Results), rec.Analysis.SemanticDegraded)
	}
}

func TestRecommendBalancesTestTypes(t *testing.T) {
	interp := &stubInterpreter{sq: &query.StructuredQuery{
		Role:              "Developer",
		RequiredSkills:    []string{"Java", "Python"},
		RequiredTestTypes: []string{"K", "P"},
	}}
	engine := newTestEngine(t, interp, nil, Options{BalanceTestTypes: true})

	rec, err := engine.Recommend(context.Background(), "Java and Python developer with teamwork", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(rec.Results))
	}

	gotK, gotP := false, false
	for _, res := range rec.Results {
		if res.Item.HasTestType(catalogue.TypeKnowledge) {
			gotK = true
		}
		if res.Item.HasTestType(catalogue.TypePersonality) {
			gotP = true
		}
	}
	if !gotK || !gotP {
		t.Fatalf("expected both test types in the window, got %s and %s",
			rec.Results[0].Item.ID, rec.Results[1].Item.ID)
	}
}

func TestRecommendInvalidNResults(t *testing.T) {
	engine := newTestEngine(t, nil, nil, Options{})

	if _, err := engine.Recommend(context.Background(), "Java", 0); !errors.Is(err, ranking.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewRejectsInvalidWeights(t *testing.T) {
	_, err := New(testCatalogue(t), nil, nil,
		ranking.Weights{Semantic: 1, Keyword: 1, Metadata: 1}, Options{}, zap.NewNop())
	if !errors.Is(err, ranking.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
