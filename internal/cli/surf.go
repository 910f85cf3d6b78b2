package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pnadel/llmsurfer/internal/llm"
	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/pipeline"
)

var (
	goalFile   string
	promptFile string
	schemaFile string
	noCache    bool
	noExport   bool
)

// surfCmd represents the surf command
var surfCmd = &cobra.Command{
	Use:   "surf <query>",
	Short: "Search, read, and classify documents for a research query",
	Long: `Surf runs the full pipeline for one query:
- Search the selected backend and collect up to --max-results documents
- Extract full text (HTML or PDF)
- Rank each document's passages against the query with embeddings
- Ask the language model for a structured relevancy verdict
- Write one spreadsheet row per classified document

Examples:
  llmsurfer surf '"climate adaptation" OR "resilience"'
  llmsurfer surf "flood insurance" --engine keyword --max-results 10
  llmsurfer surf "sea level rise" --engine openalex --goal-file goal.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runSurf,
}

func init() {
	rootCmd.AddCommand(surfCmd)

	// Search flags
	surfCmd.Flags().String("engine", "congress", "search backend (congress, openalex, keyword)")
	surfCmd.Flags().Int("max-results", 5, "documents to collect and classify")

	// Retrieval flags
	surfCmd.Flags().Int("top-k", 5, "relevant chunks per document")
	surfCmd.Flags().Int("chunk-size", 200, "tokens per chunk window")
	surfCmd.Flags().Int("chunk-overlap", 50, "token overlap between windows")
	surfCmd.Flags().Int("max-chunk-words", 200, "word cap per chunk")

	// Model flags
	surfCmd.Flags().String("model", "gpt-4o-mini", "classification model")
	surfCmd.Flags().String("embedding-model", "text-embedding-3-small", "embedding model")

	// Prompt flags
	surfCmd.Flags().StringVar(&goalFile, "goal-file", "", "file with the research goal (default: built-in)")
	surfCmd.Flags().StringVar(&promptFile, "prompt-file", "", "file with the prompt template (default: built-in)")
	surfCmd.Flags().StringVar(&schemaFile, "schema-file", "", "file with the response JSON schema (default: built-in)")
	surfCmd.Flags().String("schema-name", pipeline.DefaultSchemaName, "name of the response schema")

	// Storage flags
	surfCmd.Flags().String("data-dir", "./data", "embedding cache directory")
	surfCmd.Flags().String("out-dir", "./saved_searches", "spreadsheet output directory")
	surfCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding cache")
	surfCmd.Flags().BoolVar(&noExport, "no-export", false, "skip the spreadsheet export")

	// HTTP flags
	surfCmd.Flags().Duration("timeout", 60*time.Second, "per-request HTTP timeout")
	surfCmd.Flags().String("ua", "llmsurfer/0.2 (+https://github.com/pnadel/llmsurfer)", "HTTP User-Agent")
	surfCmd.Flags().Int64("max-bytes", 8_000_000, "max response bytes to read")

	// Bind flags to their config-file keys. A flag set on the command
	// line overrides the file value; an unset flag yields to it.
	for key, name := range map[string]string{
		"search.backend":      "engine",
		"search.max_results":  "max-results",
		"rag.top_k":           "top-k",
		"rag.chunk_size":      "chunk-size",
		"rag.chunk_overlap":   "chunk-overlap",
		"rag.max_chunk_words": "max-chunk-words",
		"llm.model":           "model",
		"llm.embedding_model": "embedding-model",
		"prompt.schema_name":  "schema-name",
		"cache.dir":           "data-dir",
		"export.dir":          "out-dir",
		"http.timeout":        "timeout",
		"http.user_agent":     "ua",
		"http.max_body_bytes": "max-bytes",
	} {
		_ = viper.BindPFlag(key, surfCmd.Flags().Lookup(name))
	}
}

func runSurf(cmd *cobra.Command, args []string) error {
	cfg, err := surfConfig(args[0])
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("create LLM provider: %w", err)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	callbacks := pipeline.Callbacks{
		SearchProgress: func(index, total int) {
			fmt.Fprintf(os.Stderr, "Reading document %d of %d\r", index+1, total)
		},
		EmbedProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "Embedding batch %d of %d\r", done+1, total)
		},
		ResultReady: func(index, total int, title string, rec *model.Record) {
			relevancy, _ := rec.Get("relevancy")
			fmt.Fprintf(os.Stderr, "\n[%d/%d] %s: %v\n", index+1, total, title, relevancy)
		},
	}

	surfer, err := pipeline.NewSurfer(cfg, provider, callbacks, logger)
	if err != nil {
		return err
	}
	defer surfer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, path, err := surfer.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%d documents classified\n", records.Len())
	if path != "" {
		fmt.Printf("Results saved to %s\n", path)
	}
	return nil
}

// surfConfig assembles the run configuration from defaults, the config
// file, the environment, and flags, in ascending priority.
func surfConfig(query string) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("apply configuration: %w", err)
	}

	cfg.Search.Query = query
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noExport {
		cfg.Export.Enabled = false
	}

	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	cfg.Search.CongressAPIKey = os.Getenv("CONGRESS_API_KEY")
	if cfg.Search.Backend == "congress" && cfg.Search.CongressAPIKey == "" {
		return nil, fmt.Errorf("CONGRESS_API_KEY environment variable not set (required for the congress backend)")
	}

	if cfg.Prompt.ResearchGoal == "" {
		cfg.Prompt.ResearchGoal = pipeline.DefaultResearchGoal
	}
	if cfg.Prompt.BasePrompt == "" {
		cfg.Prompt.BasePrompt = pipeline.DefaultBasePrompt
	}
	if cfg.Prompt.SchemaName == "" {
		cfg.Prompt.SchemaName = pipeline.DefaultSchemaName
	}
	cfg.Prompt.Schema = pipeline.DefaultSchema

	if goalFile != "" {
		goal, err := os.ReadFile(goalFile)
		if err != nil {
			return nil, fmt.Errorf("read goal file: %w", err)
		}
		cfg.Prompt.ResearchGoal = string(goal)
	}
	if promptFile != "" {
		prompt, err := os.ReadFile(promptFile)
		if err != nil {
			return nil, fmt.Errorf("read prompt file: %w", err)
		}
		cfg.Prompt.BasePrompt = string(prompt)
	}
	if schemaFile != "" {
		schema, err := os.ReadFile(schemaFile)
		if err != nil {
			return nil, fmt.Errorf("read schema file: %w", err)
		}
		if !json.Valid(schema) {
			return nil, fmt.Errorf("schema file %s is not valid JSON", schemaFile)
		}
		cfg.Prompt.Schema = json.RawMessage(schema)
	}

	return cfg, nil
}
