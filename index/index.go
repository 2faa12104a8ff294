// Package index provides the persisted retrieval index: embedded text
// chunks searched by cosine similarity and stored as a JSON file in an
// index directory.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/kataras/golog"
)

// indexFile is the name of the persisted index inside the index
// directory.
const indexFile = "index.json"

// Embedder embeds texts into vectors. Satisfied by langchaingo's
// embeddings.Embedder.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Document is one indexed text chunk. Records are immutable once
// added.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding"`
}

// SearchResult pairs a document with its similarity score.
type SearchResult struct {
	Document Document
	Score    float64
}

// Index is an embedded chunk store with linear cosine search.
type Index struct {
	embedder Embedder
	cache    *EmbedCache
	docs     []Document
}

// Option configures an Index.
type Option func(*Index)

// WithCache attaches an embedding cache. A nil cache is ignored.
func WithCache(cache *EmbedCache) Option {
	return func(ix *Index) {
		ix.cache = cache
	}
}

// New creates an empty index backed by the given embedder.
func New(embedder Embedder, opts ...Option) *Index {
	ix := &Index{embedder: embedder}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Add embeds and stores the given documents. Documents that already
// carry an embedding are stored as is.
func (ix *Index) Add(ctx context.Context, docs []Document) error {
	var (
		texts     []string
		positions []int
	)
	for i, doc := range docs {
		if len(doc.Embedding) == 0 {
			texts = append(texts, doc.Content)
			positions = append(positions, i)
		}
	}

	if len(texts) > 0 {
		embeddings, err := ix.embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed documents: %w", err)
		}
		for j, pos := range positions {
			docs[pos].Embedding = embeddings[j]
		}
	}

	ix.docs = append(ix.docs, docs...)
	return nil
}

// Search returns the k most similar chunks for the query, best first.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if len(ix.docs) == 0 {
		return nil, nil
	}

	queryEmbedding, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]SearchResult, 0, len(ix.docs))
	for _, doc := range ix.docs {
		results = append(results, SearchResult{
			Document: doc,
			Score:    cosineSimilarity(queryEmbedding, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Save writes the index into dir as JSON, creating the directory when
// needed.
func (ix *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	data, err := json.Marshal(ix.docs)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	golog.Infof("saved index with %d chunks to %s", len(ix.docs), dir)
	return nil
}

// Load reads an index from dir. A missing index directory yields an
// empty index.
func Load(dir string, embedder Embedder, opts ...Option) (*Index, error) {
	ix := New(embedder, opts...)

	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return ix, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if err := json.Unmarshal(data, &ix.docs); err != nil {
		return nil, fmt.Errorf("failed to parse index in %s: %w", dir, err)
	}
	return ix, nil
}

// Exists reports whether dir contains a persisted index.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, indexFile))
	return err == nil
}

// embed resolves embeddings through the cache when one is attached.
func (ix *Index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if ix.cache == nil {
		return ix.embedder.EmbedDocuments(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	var (
		missing   []string
		positions []int
	)
	for i, text := range texts {
		if emb, ok := ix.cache.Get(ctx, text); ok {
			embeddings[i] = emb
			continue
		}
		missing = append(missing, text)
		positions = append(positions, i)
	}

	if len(missing) > 0 {
		fresh, err := ix.embedder.EmbedDocuments(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, pos := range positions {
			embeddings[pos] = fresh[j]
			ix.cache.Put(ctx, missing[j], fresh[j])
		}
	}
	return embeddings, nil
}

// cosineSimilarity computes the cosine of the angle between two
// vectors. Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float32
	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return float64(dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))))
}
