package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageNumber(t *testing.T) {
	assert.Equal(t, 7, pageNumber(map[string]any{"page": 7}, 0))
	assert.Equal(t, 7, pageNumber(map[string]any{"page": float64(7)}, 0))
	assert.Equal(t, 3, pageNumber(map[string]any{}, 2))
}

func TestSortedFiles(t *testing.T) {
	results := map[string][]Page{
		"b.pdf": nil,
		"a.pdf": nil,
		"c.pdf": nil,
	}
	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, SortedFiles(results))
}

func TestSaveJSON(t *testing.T) {
	results := map[string][]Page{
		"report.pdf": {
			{Page: 1, Content: "net sales increased", Metadata: map[string]any{"source": "report.pdf"}},
		},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, SaveJSON(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded map[string][]Page
	require.NoError(t, json.Unmarshal(data, &loaded))
	require.Len(t, loaded["report.pdf"], 1)
	assert.Equal(t, "net sales increased", loaded["report.pdf"][0].Content)
}
