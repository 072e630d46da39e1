// Package semantic provides the embedding-based relevance signal: an
// embeddings client, an in-memory cosine index over the catalogue, and the
// similarity lookup consumed by the ensemble ranker.
package semantic

import (
	"context"
	"fmt"
	"strings"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
)

// Embedder produces a vector representation of the provided text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Document renders a catalogue item into the text that gets embedded. The
// layout matches the indexed corpus, so query and item vectors stay comparable.
func Document(item *catalogue.Item) string {
	parts := []string{
		fmt.Sprintf("Assessment: %s", item.Name),
		fmt.Sprintf("Description: %s", item.Description),
	}
	if len(item.JobLevels) > 0 {
		parts = append(parts, fmt.Sprintf("Job Level: %s", strings.Join(item.JobLevels, ", ")))
	}
	if len(item.TestTypes) > 0 {
		parts = append(parts, fmt.Sprintf("Test Types: %s", strings.Join(item.TestTypes, ", ")))
	}
	if len(item.Skills) > 0 {
		parts = append(parts, fmt.Sprintf("Skills: %s", strings.Join(item.Skills, ", ")))
	}
	if item.DurationMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %d minutes", item.DurationMinutes))
	}

	return strings.Join(parts, " | ")
}
