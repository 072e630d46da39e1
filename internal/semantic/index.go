package semantic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"go.uber.org/zap"
)

// ErrNotIndexed is returned when similarity is requested for an item that was
// not part of the built index.
var ErrNotIndexed = errors.New("item is not indexed")

// Index is an in-memory brute-force cosine index over catalogue documents.
// Vectors are L2-normalized at build time so similarity reduces to a dot
// product. The index is built once and read-only afterwards; a small query
// cache keeps one ranking call down to a single query embedding.
type Index struct {
	embedder Embedder
	logger   *zap.Logger

	mu      sync.RWMutex
	vectors map[string][]float64

	queryMu   sync.Mutex
	queryText string
	queryVec  []float64
}

func NewIndex(embedder Embedder, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		embedder: embedder,
		logger:   logger,
		vectors:  make(map[string][]float64),
	}
}

// Build embeds every catalogue item document and stores the vectors.
func (ix *Index) Build(ctx context.Context, cat *catalogue.Catalogue) error {
	vectors := make(map[string][]float64, cat.Len())

	for _, item := range cat.Items() {
		vec, err := ix.embedder.Embed(ctx, Document(item))
		if err != nil {
			return fmt.Errorf("embedding item %s: %w", item.ID, err)
		}
		vectors[item.ID] = normalize(vec)
	}

	ix.mu.Lock()
	ix.vectors = vectors
	ix.mu.Unlock()

	ix.logger.Info("semantic index built", zap.Int("items", len(vectors)))
	return nil
}

// Similarity returns the normalized semantic similarity in [0,1] between the
// raw query text and the indexed item, via 1 - cosineDistance/2.
func (ix *Index) Similarity(ctx context.Context, rawQuery string, item *catalogue.Item) (float64, error) {
	ix.mu.RLock()
	itemVec, ok := ix.vectors[item.ID]
	ix.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotIndexed, item.ID)
	}

	queryVec, err := ix.queryVector(ctx, rawQuery)
	if err != nil {
		return 0, err
	}

	cos := dot(queryVec, itemVec)
	// cosine distance is 1-cos; map [-1,1] onto [0,1].
	sim := 1 - (1-cos)/2
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, nil
}

func (ix *Index) queryVector(ctx context.Context, rawQuery string) ([]float64, error) {
	ix.queryMu.Lock()
	defer ix.queryMu.Unlock()

	if rawQuery == ix.queryText && ix.queryVec != nil {
		return ix.queryVec, nil
	}

	vec, err := ix.embedder.Embed(ctx, rawQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	ix.queryText = rawQuery
	ix.queryVec = normalize(vec)
	return ix.queryVec, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
