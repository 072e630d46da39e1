package semantic

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"go.uber.org/zap"
)

// stubEmbedder maps known substrings to fixed vectors.
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	for key, vec := range s.vectors {
		if strings.Contains(text, key) {
			return vec, nil
		}
	}
	return []float64{0, 0, 1}, nil
}

func testCatalogue() *catalogue.Catalogue {
	return catalogue.New([]*catalogue.Item{
		{ID: "java", Name: "Java 8", Description: "Java knowledge test", TestTypes: []string{"K"}},
		{ID: "teamwork", Name: "Teamwork Styles", Description: "collaboration preferences", TestTypes: []string{"P"}},
	})
}

func TestIndexSimilarity(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{
		"Java":     {1, 0, 0},
		"Teamwork": {0, 1, 0},
		"query":    {1, 0, 0},
	}}

	index := NewIndex(embedder, zap.NewNop())
	cat := testCatalogue()

	if err := index.Build(context.Background(), cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	javaSim, err := index.Similarity(context.Background(), "query about Java", cat.FindByID("java"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if javaSim != 1.0 {
		t.Fatalf("expected identical vectors to score 1.0, got %f", javaSim)
	}

	teamSim, err := index.Similarity(context.Background(), "query about Java", cat.FindByID("teamwork"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Orthogonal vectors land on the neutral midpoint of [0,1].
	if teamSim != 0.5 {
		t.Fatalf("expected orthogonal vectors to score 0.5, got %f", teamSim)
	}

	if javaSim <= teamSim {
		t.Fatalf("expected the matching item to outscore the other")
	}
}

func TestIndexQueryEmbeddingCached(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float64{"query": {1, 0, 0}}}
	index := NewIndex(embedder, zap.NewNop())
	cat := testCatalogue()

	if err := index.Build(context.Background(), cat); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	callsAfterBuild := embedder.calls

	for _, item := range cat.Items() {
		if _, err := index.Similarity(context.Background(), "same query", item); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if embedder.calls != callsAfterBuild+1 {
		t.Fatalf("expected one query embedding for the whole pass, got %d extra calls", embedder.calls-callsAfterBuild)
	}
}

func TestIndexSimilarityNotIndexed(t *testing.T) {
	index := NewIndex(&stubEmbedder{}, zap.NewNop())

	_, err := index.Similarity(context.Background(), "query", &catalogue.Item{ID: "ghost"})
	if !errors.Is(err, ErrNotIndexed) {
		t.Fatalf("expected ErrNotIndexed, got %v", err)
	}
}

func TestIndexBuildPropagatesEmbedderError(t *testing.T) {
	index := NewIndex(&stubEmbedder{err: errors.New("upstream unavailable")}, zap.NewNop())

	if err := index.Build(context.Background(), testCatalogue()); err == nil {
		t.Fatalf("expected build error")
	}
}

func TestDocument(t *testing.T) {
	item := &catalogue.Item{
		Name:            "Java 8 (New)",
		Description:     "Measures Java knowledge",
		JobLevels:       []string{"Mid-Professional"},
		TestTypes:       []string{"K"},
		Skills:          []string{"Java", "Programming"},
		DurationMinutes: 40,
	}

	doc := Document(item)
	expect := "Assessment: Java 8 (New) | Description: Measures Java knowledge | Job Level: Mid-Professional | Test Types: K | Skills: Java, Programming | Duration: 40 minutes"
	if doc != expect {
		t.Fatalf("unexpected document:\n got %q\nwant %q", doc, expect)
	}

	bare := Document(&catalogue.Item{Name: "X", Description: "Y"})
	if bare != "Assessment: X | Description: Y" {
		t.Fatalf("unexpected bare document: %q", bare)
	}
}
