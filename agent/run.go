package agent

import (
	"context"

	"github.com/smallnest/ragsql/config"
)

// Run is the one-call API: it merges overrides over the embedded
// defaults, builds an agent (running the ingestion pipeline on the
// first run) and answers the question. Use New plus Ask directly when
// asking several questions.
func Run(ctx context.Context, question string, overrides map[string]string) (string, error) {
	cfg, err := config.Default()
	if err != nil {
		return "", err
	}
	if err := cfg.Apply(overrides); err != nil {
		return "", err
	}

	a, err := New(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer a.Close()

	return a.Ask(ctx, question)
}
