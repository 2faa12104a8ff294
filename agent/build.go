package agent

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/smallnest/ragsql/config"
	"github.com/smallnest/ragsql/corpus"
	"github.com/smallnest/ragsql/extract"
	"github.com/smallnest/ragsql/index"
)

func preparedDir(cfg *config.Config) string {
	return filepath.Join(cfg.DocumentsDir, "prepared")
}

// buildIndex runs the full ingestion pipeline: download the corpus,
// trim it to the relevant pages, extract per-page text, chunk, embed
// and persist the index.
func buildIndex(ctx context.Context, cfg *config.Config, ix *index.Index) ([]corpus.Metadata, error) {
	mapping := corpus.DefaultMapping()
	if cfg.MappingFile != "" {
		loaded, err := corpus.LoadMapping(cfg.MappingFile)
		if err != nil {
			return nil, err
		}
		mapping = loaded
	}

	if err := corpus.Download(ctx, nil, cfg.DocumentsDir, mapping); err != nil {
		return nil, err
	}

	metadata, err := corpus.Prepare(cfg.DocumentsDir, preparedDir(cfg), mapping)
	if err != nil {
		return nil, err
	}

	splitter := textsplitter.NewRecursiveCharacter()
	splitter.ChunkSize = cfg.ChunkSize
	splitter.ChunkOverlap = cfg.ChunkOverlap
	splitter.Separators = []string{"\n\n", "\n", ". ", " ", ""}

	var docs []index.Document
	for _, meta := range metadata {
		pages, err := extract.File(ctx, meta.LocalPDFPath)
		if err != nil {
			return nil, err
		}

		for _, page := range pages {
			chunks, err := splitter.SplitText(page.Content)
			if err != nil {
				return nil, fmt.Errorf("failed to split %s page %d: %w", meta.LocalPDFPath, page.Page, err)
			}
			for i, chunk := range chunks {
				docs = append(docs, index.Document{
					ID:      uuid.NewString(),
					Content: chunk,
					Metadata: map[string]any{
						"source":  meta.LocalPDFPath,
						"company": meta.Company,
						"year":    meta.Year,
						"page":    page.Page,
						"chunk":   i,
					},
				})
			}
		}
	}

	golog.Infof("embedding %d chunks from %d documents", len(docs), len(metadata))
	if err := ix.Add(ctx, docs); err != nil {
		return nil, err
	}
	if err := ix.Save(cfg.IndexPath); err != nil {
		return nil, err
	}
	return metadata, nil
}
