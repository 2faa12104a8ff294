package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/tools"

	"github.com/smallnest/ragsql/index"
)

// retriever is the slice of the index the semantic search tool needs.
type retriever interface {
	Search(ctx context.Context, query string, k int) ([]index.SearchResult, error)
}

// semanticSearchTool retrieves relevant document chunks for a query.
type semanticSearchTool struct {
	retriever retriever
	k         int
}

var _ tools.Tool = (*semanticSearchTool)(nil)

func (t *semanticSearchTool) Name() string {
	return "semantic_search"
}

func (t *semanticSearchTool) Description() string {
	return "Retrieve relevant documents based on semantic similarity."
}

func (t *semanticSearchTool) Call(ctx context.Context, input string) (string, error) {
	results, err := t.retriever.Search(ctx, input, t.k)
	if err != nil {
		return "", fmt.Errorf("semantic search failed: %w", err)
	}

	contents := make([]string, len(results))
	for i, result := range results {
		contents[i] = result.Document.Content
	}
	return strings.Join(contents, "\n"), nil
}

// sqlQueryTool answers questions by running the SQL database chain.
type sqlQueryTool struct {
	chain chains.Chain
}

var _ tools.Tool = (*sqlQueryTool)(nil)

func (t *sqlQueryTool) Name() string {
	return "query_sql"
}

func (t *sqlQueryTool) Description() string {
	return "Answer questions by querying the SQL database."
}

func (t *sqlQueryTool) Call(ctx context.Context, input string) (string, error) {
	out, err := chains.Call(ctx, t.chain, map[string]any{"query": input})
	if err != nil {
		return "", fmt.Errorf("SQL query failed: %w", err)
	}

	result, ok := out["result"].(string)
	if !ok {
		return "", fmt.Errorf("SQL chain returned no result")
	}
	return result, nil
}
