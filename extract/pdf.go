// Package extract turns prepared PDF documents into per-page text
// records ready for chunking and embedding.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kataras/golog"
	"github.com/tmc/langchaingo/documentloaders"
)

// Page is the text of a single PDF page.
type Page struct {
	Page     int            `json:"page"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// File extracts the text of every page of a PDF.
func File(ctx context.Context, path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	pages := make([]Page, 0, len(docs))
	for i, doc := range docs {
		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["source"] = path

		pages = append(pages, Page{
			Page:     pageNumber(doc.Metadata, i),
			Content:  doc.PageContent,
			Metadata: meta,
		})
	}
	return pages, nil
}

// Dir extracts every *.pdf file directly inside dir, keyed by file
// name.
func Dir(ctx context.Context, dir string) (map[string][]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	results := make(map[string][]Page)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		pages, err := File(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		golog.Infof("extracted %d pages from %s", len(pages), entry.Name())
		results[entry.Name()] = pages
	}
	return results, nil
}

// SaveJSON persists extraction results for inspection.
func SaveJSON(results map[string][]Page, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode extraction results: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// pageNumber pulls the page number out of loader metadata, falling
// back to the document position.
func pageNumber(meta map[string]any, position int) int {
	switch v := meta["page"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return position + 1
	}
}

// SortedFiles returns the file names of an extraction result in a
// stable order.
func SortedFiles(results map[string][]Page) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
