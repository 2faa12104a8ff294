package entities

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kataras/golog"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/ragsql/corpus"
	"github.com/smallnest/ragsql/index"
)

// Searcher is the slice of the retrieval index the extractor needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.SearchResult, error)
}

// Row is one aggregated entity_data row: everything extracted for a
// (company, year) pair. Nil pointers become SQL NULLs.
type Row struct {
	Company   string
	Year      int
	SourceDoc string

	Revenue              *float64
	RevenueReasoning     *string
	RevenueUnit          *string
	RevenueUnitReasoning *string

	Risks          *string
	RisksReasoning *string

	HumanCapital          *int64
	HumanCapitalReasoning *string
}

// record is one raw extraction result before aggregation.
type record struct {
	entity string
	result map[string]any
	meta   corpus.Metadata
}

// Extract runs entity extraction for every prepared document: for each
// entity of the catalog it retrieves the k best chunks for the
// entity's query, asks the model for a JSON payload, and aggregates
// the results into one row per (company, year). Payloads that fail to
// parse are skipped.
func Extract(ctx context.Context, model llms.Model, searcher Searcher, metadata []corpus.Metadata, k int) ([]Row, error) {
	var records []record

	for _, meta := range metadata {
		for _, def := range Catalog {
			golog.Infof("extracting %s for %s %s", def.Name, meta.Company, meta.Year)

			results, err := searcher.Search(ctx, def.Query(meta.Company, meta.Year), k)
			if err != nil {
				return nil, fmt.Errorf("retrieval for %s failed: %w", def.Name, err)
			}

			excerpts := make([]string, len(results))
			for i, result := range results {
				excerpts[i] = result.Document.Content
			}

			prompt, err := BuildPrompt(def, strings.Join(excerpts, "\n"), meta.Company, meta.Year)
			if err != nil {
				return nil, err
			}

			raw, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, llms.WithTemperature(0))
			if err != nil {
				return nil, fmt.Errorf("extraction of %s for %s %s failed: %w", def.Name, meta.Company, meta.Year, err)
			}

			payload, err := ParsePayload(raw)
			if err != nil {
				golog.Warnf("skipping %s for %s %s: %v", def.Name, meta.Company, meta.Year, err)
				continue
			}

			records = append(records, record{entity: def.Name, result: payload, meta: meta})
		}
	}

	return Aggregate(records), nil
}

// ParsePayload extracts the JSON object from a model response,
// stripping the <json></json> tags the prompt asks for.
func ParsePayload(raw string) (map[string]any, error) {
	s := raw
	if i := strings.Index(s, "<json>"); i >= 0 {
		s = s[i+len("<json>"):]
	}
	if i := strings.Index(s, "</json>"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)

	var payload map[string]any
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	return payload, nil
}

// Aggregate folds raw extraction records into one row per
// (company, year), preserving first-seen order.
func Aggregate(records []record) []Row {
	var (
		rows  []*Row
		byKey = make(map[string]*Row)
	)

	for _, rec := range records {
		key := rec.meta.Company + "\x00" + rec.meta.Year
		row, ok := byKey[key]
		if !ok {
			year, err := strconv.Atoi(rec.meta.Year)
			if err != nil {
				golog.Warnf("non-numeric year %q for %s", rec.meta.Year, rec.meta.Company)
			}
			source := rec.meta.DocURL
			if source == "" {
				source = rec.meta.LocalPDFPath
			}
			row = &Row{Company: rec.meta.Company, Year: year, SourceDoc: source}
			byKey[key] = row
			rows = append(rows, row)
		}

		switch rec.entity {
		case "revenue":
			row.Revenue = floatField(rec.result, "revenue")
			row.RevenueReasoning = stringField(rec.result, "revenue_reasoning")
			row.RevenueUnit = stringField(rec.result, "revenue_unit")
			row.RevenueUnitReasoning = stringField(rec.result, "revenue_unit_reasoning")
		case "risks":
			row.Risks = stringField(rec.result, "risks")
			row.RisksReasoning = stringField(rec.result, "risks_reasoning")
		case "human_capital":
			row.HumanCapital = intField(rec.result, "human_capital")
			row.HumanCapitalReasoning = stringField(rec.result, "human_capital_reasoning")
		}
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = *row
	}
	return out
}

func stringField(payload map[string]any, key string) *string {
	if v, ok := payload[key].(string); ok {
		return &v
	}
	return nil
}

func floatField(payload map[string]any, key string) *float64 {
	if v, ok := payload[key].(float64); ok {
		return &v
	}
	return nil
}

func intField(payload map[string]any, key string) *int64 {
	if v, ok := payload[key].(float64); ok {
		n := int64(v)
		return &n
	}
	return nil
}
