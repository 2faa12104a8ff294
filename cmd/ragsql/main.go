// Command ragsql answers questions over a corpus of annual reports.
//
// On the first run it downloads the corpus, builds the retrieval index
// and extracts the entity database; later runs reuse both. Every
// configuration key can be overridden on the command line:
//
//	ragsql question="What was the revenue of Amazon in 2021?" retrieval_k=4
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/kataras/golog"

	"github.com/smallnest/ragsql/agent"
	"github.com/smallnest/ragsql/config"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

const usage = `Usage: ragsql [key=value ...]

Overrides are applied on top of the embedded defaults. Common keys:

  question                  the question to answer
  openai_model              chat model name
  openai_embeddings_model   embeddings model name
  documents_dir             where PDFs are downloaded and prepared
  index_path                where the retrieval index is persisted
  db_path                   path of the entity SQLite database
  report_path               entity report output (.csv or .xlsx)
  mapping_file              YAML corpus mapping (defaults built in)
  retrieval_k               chunks returned per semantic search
  redis_addr                optional Redis address for embedding cache
  log_level                 debug, info, warn or error

The OPENAI_API_KEY environment variable must be set; a .env file in the
working directory is loaded if present.`

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "help" || os.Args[1] == "-h" || os.Args[1] == "--help") {
		fmt.Println(usage)
		return
	}

	if err := godotenv.Load(); err == nil {
		golog.Debugf("loaded environment from .env")
	}

	cfg, err := config.Default()
	if err != nil {
		fatal(err)
	}
	if err := cfg.Apply(config.ParseOverrides(os.Args[1:])); err != nil {
		fatal(err)
	}
	golog.SetLevel(cfg.LogLevel)

	ctx := context.Background()
	a, err := agent.New(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer a.Close()

	answer, err := a.Ask(ctx, cfg.Question)
	if err != nil {
		fatal(err)
	}

	fmt.Println(questionStyle.Render("Q: " + cfg.Question))
	fmt.Println(answerStyle.Render("A: " + answer))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("ragsql: "+err.Error()))
	os.Exit(1)
}
