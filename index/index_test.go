package index

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectors[text]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{
		"revenue grew in 2022":     {1, 0, 0},
		"employees totalled 1.5M":  {0, 1, 0},
		"competition is intense":   {0, 0, 1},
		"how much revenue in 2022": {0.9, 0.1, 0},
	}}
}

func TestAddAndSearchOrdering(t *testing.T) {
	ctx := context.Background()
	embedder := newFakeEmbedder()
	ix := New(embedder)

	err := ix.Add(ctx, []Document{
		{ID: "1", Content: "revenue grew in 2022"},
		{ID: "2", Content: "employees totalled 1.5M"},
		{ID: "3", Content: "competition is intense"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())

	results, err := ix.Search(ctx, "how much revenue in 2022", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "1", results[0].Document.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New(newFakeEmbedder())
	results, err := ix.Search(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	embedder := newFakeEmbedder()
	dir := t.TempDir()

	ix := New(embedder)
	require.NoError(t, ix.Add(ctx, []Document{
		{ID: "1", Content: "revenue grew in 2022", Metadata: map[string]any{"page": 15}},
	}))
	require.NoError(t, ix.Save(dir))
	assert.True(t, Exists(dir))

	loaded, err := Load(dir, embedder)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())

	results, err := loaded.Search(ctx, "how much revenue in 2022", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Document.ID)
}

func TestLoadMissingDirectoryYieldsEmptyIndex(t *testing.T) {
	ix, err := Load(t.TempDir()+"/nope", newFakeEmbedder())
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())
	assert.False(t, Exists(t.TempDir()+"/nope"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}

func TestEmbedCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cache := NewEmbedCache(CacheOptions{Addr: mr.Addr()})
	defer cache.Close()

	ctx := context.Background()

	_, ok := cache.Get(ctx, "revenue grew in 2022")
	assert.False(t, ok)

	cache.Put(ctx, "revenue grew in 2022", []float32{1, 0, 0})
	emb, ok := cache.Get(ctx, "revenue grew in 2022")
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 0, 0}, emb)
}

func TestIndexUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cache := NewEmbedCache(CacheOptions{Addr: mr.Addr()})
	defer cache.Close()

	ctx := context.Background()
	embedder := newFakeEmbedder()

	ix := New(embedder, WithCache(cache))
	require.NoError(t, ix.Add(ctx, []Document{{ID: "1", Content: "revenue grew in 2022"}}))
	assert.Equal(t, 1, embedder.calls)

	// Second index over the same text hits the cache.
	ix2 := New(embedder, WithCache(cache))
	require.NoError(t, ix2.Add(ctx, []Document{{ID: "1", Content: "revenue grew in 2022"}}))
	assert.Equal(t, 1, embedder.calls)

	results, err := ix2.Search(ctx, "how much revenue in 2022", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].Document.ID)
}

func TestCacheDownIsAMiss(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache := NewEmbedCache(CacheOptions{Addr: mr.Addr()})
	defer cache.Close()

	mr.Close() // cache backend gone

	ctx := context.Background()
	embedder := newFakeEmbedder()
	ix := New(embedder, WithCache(cache))

	err = ix.Add(ctx, []Document{{ID: "1", Content: "revenue grew in 2022"}})
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)
}
