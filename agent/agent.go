// Package agent wires the retrieval index, the entity database and an
// LLM into a ReAct agent that routes questions to semantic search or
// SQL querying.
package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kataras/golog"
	"github.com/smallnest/langgraphgo/graph"
	"github.com/smallnest/langgraphgo/prebuilt"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/sqldatabase"
	_ "github.com/tmc/langchaingo/tools/sqldatabase/sqlite3"

	"github.com/smallnest/ragsql/config"
	"github.com/smallnest/ragsql/corpus"
	"github.com/smallnest/ragsql/entities"
	"github.com/smallnest/ragsql/index"
)

// Agent answers questions over the document index and the entity
// database. Build one with New, then Ask as many questions as needed;
// the index and database are reused across calls.
type Agent struct {
	cfg      *config.Config
	llm      llms.Model
	index    *index.Index
	sqlDB    *sqldatabase.SQLDatabase
	runnable *graph.StateRunnable[map[string]any]
}

// New builds an agent from the configuration. On the first run this
// downloads and prepares the corpus, builds and persists the retrieval
// index, and extracts the entity database; later runs load both from
// disk.
func New(ctx context.Context, cfg *config.Config) (*Agent, error) {
	llm, err := openai.New(
		openai.WithModel(cfg.OpenAIModel),
		openai.WithEmbeddingModel(cfg.OpenAIEmbeddingsModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	var indexOpts []index.Option
	if cfg.RedisAddr != "" {
		indexOpts = append(indexOpts, index.WithCache(index.NewEmbedCache(index.CacheOptions{Addr: cfg.RedisAddr})))
	}

	ix, metadata, err := ensureIndex(ctx, cfg, embedder, indexOpts...)
	if err != nil {
		return nil, err
	}

	if err := ensureDB(ctx, cfg, llm, ix, metadata); err != nil {
		return nil, err
	}

	sqlDB, err := sqldatabase.NewSQLDatabaseWithDSN("sqlite3", cfg.DBPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open entity database: %w", err)
	}
	sqlChain := chains.NewSQLDatabaseChain(llm, cfg.SQLTopK, sqlDB)

	a, err := newAgent(cfg, llm, ix, sqlChain)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	a.sqlDB = sqlDB
	return a, nil
}

// newAgent assembles the tool set and the agent graph around already
// built dependencies.
func newAgent(cfg *config.Config, llm llms.Model, retriever retriever, sqlChain chains.Chain) (*Agent, error) {
	agentTools := []tools.Tool{
		&semanticSearchTool{retriever: retriever, k: cfg.RetrievalK},
		&sqlQueryTool{chain: sqlChain},
	}

	runnable, err := prebuilt.CreateReactAgentMap(llm, agentTools, cfg.MaxIterations)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent graph: %w", err)
	}

	a := &Agent{cfg: cfg, llm: llm, runnable: runnable}
	if ix, ok := retriever.(*index.Index); ok {
		a.index = ix
	}
	return a, nil
}

// Ask answers one question. The question is embedded into the routing
// prompt that lets the model choose between the SQL and the semantic
// search tool.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	state := map[string]any{
		"messages": []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, routingPrompt(question)),
		},
	}

	res, err := a.runnable.Invoke(ctx, state)
	if err != nil {
		return "", fmt.Errorf("agent invocation failed: %w", err)
	}

	messages, ok := res["messages"].([]llms.MessageContent)
	if !ok {
		return "", fmt.Errorf("agent returned no messages")
	}

	answer := lastAIText(messages)
	if answer == "" {
		return "", fmt.Errorf("agent produced no final answer")
	}
	return answer, nil
}

// Close releases the entity database connection.
func (a *Agent) Close() error {
	if a.sqlDB != nil {
		return a.sqlDB.Close()
	}
	return nil
}

// lastAIText returns the text of the last AI message of a transcript.
func lastAIText(messages []llms.MessageContent) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llms.ChatMessageTypeAI {
			continue
		}
		for _, part := range messages[i].Parts {
			if text, ok := part.(llms.TextContent); ok && text.Text != "" {
				return text.Text
			}
		}
	}
	return ""
}

// ensureIndex loads the persisted index, building it from the corpus
// first when it does not exist yet. The prepared-corpus metadata is
// returned when a build happened.
func ensureIndex(ctx context.Context, cfg *config.Config, embedder index.Embedder, opts ...index.Option) (*index.Index, []corpus.Metadata, error) {
	if index.Exists(cfg.IndexPath) {
		golog.Infof("loading index from %s", cfg.IndexPath)
		ix, err := index.Load(cfg.IndexPath, embedder, opts...)
		if err != nil {
			return nil, nil, err
		}
		return ix, nil, nil
	}

	ix := index.New(embedder, opts...)
	metadata, err := buildIndex(ctx, cfg, ix)
	if err != nil {
		return nil, nil, err
	}
	return ix, metadata, nil
}

// ensureDB extracts the entity database when the SQLite file is
// missing.
func ensureDB(ctx context.Context, cfg *config.Config, llm llms.Model, ix *index.Index, metadata []corpus.Metadata) error {
	if _, err := os.Stat(cfg.DBPath); err == nil {
		return nil
	}

	if metadata == nil {
		loaded, err := corpus.LoadMetadata(filepath.Join(preparedDir(cfg), corpus.MetadataFile))
		if err != nil {
			return fmt.Errorf("no prepared corpus metadata; rebuild the index first: %w", err)
		}
		metadata = loaded
	}

	rows, err := entities.Extract(ctx, llm, ix, metadata, cfg.EntitySearchK)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := entities.SaveSQLite(cfg.DBPath, rows); err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := entities.Export(rows, cfg.ReportPath); err != nil {
			return fmt.Errorf("failed to export entity report: %w", err)
		}
	}
	return nil
}
