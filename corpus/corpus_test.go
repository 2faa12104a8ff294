package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mapping.yaml")
	content := `
Amazon:
  - doc_url: https://example.com/a.pdf
    year: "2022"
    pages: [1, 2, 3]
  - doc_url: ""
    year: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)
	require.Len(t, m["Amazon"], 2)
	assert.Equal(t, "https://example.com/a.pdf", m["Amazon"][0].URL)
	assert.Equal(t, []int{1, 2, 3}, m["Amazon"][0].Pages)
}

func TestDownload(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	mapping := Mapping{
		"Amazon": {
			{URL: srv.URL + "/report.pdf", Year: "2022"},
			{URL: "", Year: ""}, // skipped
		},
	}

	err := Download(context.Background(), srv.Client(), dir, mapping)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)

	path := filepath.Join(dir, "Amazon", "annual_report_2022.pdf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "%PDF")

	// A second run must not fetch again.
	err = Download(context.Background(), srv.Client(), dir, mapping)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestDownloadBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	mapping := Mapping{"Amazon": {{URL: srv.URL + "/report.pdf", Year: "2022"}}}
	err := Download(context.Background(), srv.Client(), t.TempDir(), mapping)
	assert.Error(t, err)
}

func TestPrepareCopiesWholeFileWithoutPages(t *testing.T) {
	rawDir := t.TempDir()
	preparedDir := t.TempDir()

	mapping := Mapping{"Amazon": {{URL: "https://example.com/a.pdf", Year: "2022"}}}
	companyDir := filepath.Join(rawDir, "Amazon")
	require.NoError(t, os.MkdirAll(companyDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(companyDir, "annual_report_2022.pdf"), []byte("%PDF-1.4 fake"), 0o644))

	metadata, err := Prepare(rawDir, preparedDir, mapping)
	require.NoError(t, err)
	require.Len(t, metadata, 1)

	assert.Equal(t, "Amazon", metadata[0].Company)
	assert.Equal(t, "2022", metadata[0].Year)
	assert.Empty(t, metadata[0].PagesKept)
	assert.FileExists(t, metadata[0].LocalPDFPath)

	// Round-trip through the persisted listing.
	loaded, err := LoadMetadata(filepath.Join(preparedDir, MetadataFile))
	require.NoError(t, err)
	assert.Equal(t, metadata, loaded)
}

func TestLoadMetadataMissing(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
