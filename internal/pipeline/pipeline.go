// Package pipeline orchestrates the full run: search, acquisition,
// retrieval-augmented classification, and export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pnadel/llmsurfer/internal/cache"
	"github.com/pnadel/llmsurfer/internal/llm"
	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/rag"
	"github.com/pnadel/llmsurfer/internal/retrieve"
	"github.com/pnadel/llmsurfer/internal/scrape"
	"github.com/pnadel/llmsurfer/internal/search"
)

// Callbacks surface run progress to a front end. All are optional and
// observability only; they must not affect control flow.
type Callbacks struct {
	// SearchProgress fires once per acquisition queue item.
	SearchProgress retrieve.ProgressFunc

	// EmbedProgress fires once per embedding batch, or once on a warm
	// cache.
	EmbedProgress rag.ProgressFunc

	// ResultReady fires after each document's record is stored.
	ResultReady func(index, total int, title string, rec *model.Record)
}

// Surfer runs the classification pipeline for one query.
type Surfer struct {
	cfg       *model.Config
	acquirer  *retrieve.Acquirer
	provider  llm.Provider
	builder   *rag.Builder
	callbacks Callbacks
	logger    zerolog.Logger
	closeFn   func()
}

// NewSurfer wires the pipeline from configuration. The provider is
// passed in so credentials stay with the caller. Close must be called
// after the run.
func NewSurfer(cfg *model.Config, provider llm.Provider, callbacks Callbacks, logger zerolog.Logger) (*Surfer, error) {
	backend, err := search.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create search backend: %w", err)
	}
	extractor := scrape.NewExtractor(cfg, logger)

	var vc cache.VectorCache
	if cfg.Cache.Enabled {
		vc = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir)
	}
	builder := rag.NewBuilder(rag.NewChunker(cfg.RAG), provider, vc, cfg.RAG.BatchSize, logger)

	return &Surfer{
		cfg:       cfg,
		acquirer:  retrieve.NewAcquirer(backend, extractor, callbacks.SearchProgress, logger),
		provider:  provider,
		builder:   builder,
		callbacks: callbacks,
		logger:    logger,
		closeFn:   extractor.Close,
	}, nil
}

// Close releases pipeline resources.
func (s *Surfer) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Run executes the pipeline: acquire documents, classify each one, and
// export the records. Per-document failures are logged skips; the
// returned path is empty when export was disabled or nothing was
// recorded.
func (s *Surfer) Run(ctx context.Context) (*model.RecordSet, string, error) {
	query := s.cfg.Search.Query
	s.logger.Info().Str("backend", s.cfg.Search.Backend).Str("query", query).Msg("collecting links")

	docs, err := s.acquirer.Acquire(ctx, query, s.cfg.Search.MaxResults)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Int("collected", len(docs)).Int("requested", s.cfg.Search.MaxResults).Msg("links collected")

	records := model.NewRecordSet()
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = doc.URL
		}
		if records.Has(title) {
			s.logger.Info().Str("title", title).Msg("skipping duplicate title")
			continue
		}

		rec, err := s.classify(ctx, doc, title)
		if err != nil {
			if errors.Is(err, llm.ErrEmptyVerdict) {
				s.logger.Warn().Str("url", doc.URL).Msg("no verdict, skipping")
			} else {
				s.logger.Warn().Str("url", doc.URL).Err(err).Msg("classification failed, skipping")
			}
			continue
		}

		records.Add(title, rec)
		if s.callbacks.ResultReady != nil {
			s.callbacks.ResultReady(i, len(docs), title, rec)
		}
	}

	var path string
	if s.cfg.Export.Enabled {
		path, err = Export(records, s.cfg.Export.Dir, query, s.cfg.Search.MaxResults, time.Now())
		if err != nil {
			return records, "", fmt.Errorf("export: %w", err)
		}
	}
	return records, path, nil
}

// classify builds the document's embedding index, retrieves the top
// chunks for the query, and asks the provider for a structured verdict.
func (s *Surfer) classify(ctx context.Context, doc model.Document, title string) (*model.Record, error) {
	idx, err := s.builder.Build(ctx, doc, s.callbacks.EmbedProgress)
	if err != nil {
		return nil, err
	}
	top, err := idx.Query(ctx, s.cfg.Search.Query, s.cfg.RAG.TopK)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(top))
	for i, c := range top {
		texts[i] = c.Text
	}
	prompt := FillPrompt(s.cfg.Prompt.BasePrompt, s.cfg.Prompt.ResearchGoal, title, doc.URL, strings.Join(texts, "\n"))

	verdict, err := s.provider.Classify(ctx, llm.ClassifyRequest{
		Prompt: prompt,
		Schema: llm.Schema{
			Name:       s.cfg.Prompt.SchemaName,
			Definition: s.cfg.Prompt.Schema,
			Strict:     true,
		},
	})
	if err != nil {
		return nil, err
	}

	relevancy, _ := verdict.GetString("relevancy")
	comment, _ := verdict.GetString("comment")
	s.logger.Info().Str("title", title).Str("relevancy", relevancy).Str("comment", comment).Msg("classified")

	rec := model.NewRecord()
	rec.Set("title", title)
	rec.Set("url", doc.URL)
	rec.Set("relevancy", relevancy)
	rec.Set("llm_comment", comment)
	if s.cfg.Search.Backend == "congress" {
		rec.Set("year", doc.Year)
		rec.Set("alternative_title", doc.AltTitle)
	}
	for _, f := range verdict.Fields {
		switch f.Key {
		case "title", "url", "relevancy", "comment":
			continue
		}
		rec.Set(f.Key, f.Value)
	}
	for i := 0; i < s.cfg.RAG.TopK; i++ {
		key := fmt.Sprintf("Most Relevant Chunk %d", i+1)
		if i < len(top) {
			rec.Set(key, top[i].Text)
		} else {
			rec.Set(key, model.NoMoreChunks)
		}
	}
	return rec, nil
}
