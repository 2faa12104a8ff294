package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAIEmbeddingsModel)
	assert.Equal(t, "data/index", cfg.IndexPath)
	assert.Equal(t, "data/entities.db", cfg.DBPath)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 200, cfg.ChunkOverlap)
	assert.Equal(t, 2, cfg.RetrievalK)
	assert.Equal(t, 20, cfg.MaxIterations)
	assert.NotEmpty(t, cfg.Question)
}

func TestApplyOverridesTakePrecedence(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	err = cfg.Apply(map[string]string{
		"question":     "What was the revenue of Amazon in 2022?",
		"openai_model": "gpt-4o",
		"db_path":      "/tmp/other.db",
		"retrieval_k":  "4",
	})
	require.NoError(t, err)

	assert.Equal(t, "What was the revenue of Amazon in 2022?", cfg.Question)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 4, cfg.RetrievalK)

	// Untouched keys keep their defaults.
	assert.Equal(t, "data/index", cfg.IndexPath)
}

func TestApplyUnknownKey(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	err = cfg.Apply(map[string]string{"no_such_key": "x"})
	assert.Error(t, err)
}

func TestApplyBadInteger(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	err = cfg.Apply(map[string]string{"chunk_size": "lots"})
	assert.Error(t, err)
}

func TestParseOverrides(t *testing.T) {
	overrides := ParseOverrides([]string{
		"question=What are the main risks for Amazon?",
		"db_path=/tmp/data.db",
		"malformed",
		"=empty_key",
		"redis_addr=localhost:6379",
	})

	assert.Equal(t, map[string]string{
		"question":   "What are the main risks for Amazon?",
		"db_path":    "/tmp/data.db",
		"redis_addr": "localhost:6379",
	}, overrides)
}
