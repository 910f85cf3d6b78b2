// Package retrieve drives search and content extraction together,
// collecting up to the requested number of non-empty documents and
// substituting replacement candidates where the backend allows it.
package retrieve

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/search"
)

// Fetcher extracts the full text of one candidate.
type Fetcher interface {
	Fetch(ctx context.Context, cand model.Candidate) (model.Document, error)
}

// ProgressFunc is invoked once per queue item examined (not per
// success) with the current index and total queue length. Observability
// only; it must not affect control flow.
type ProgressFunc func(index, total int)

// Acquirer collects documents for a query.
type Acquirer struct {
	backend  search.Backend
	fetcher  Fetcher
	progress ProgressFunc
	logger   zerolog.Logger
}

// NewAcquirer creates an acquirer. progress may be nil.
func NewAcquirer(backend search.Backend, fetcher Fetcher, progress ProgressFunc, logger zerolog.Logger) *Acquirer {
	return &Acquirer{
		backend:  backend,
		fetcher:  fetcher,
		progress: progress,
		logger:   logger,
	}
}

// Acquire searches for the query and fetches candidates until
// maxResults documents are collected or candidates run out. Empty
// extractions on substitution-capable backends pull one untried
// candidate from the full result set onto the queue tail; on other
// backends they are a hard skip. Returned documents have unique URLs.
func (a *Acquirer) Acquire(ctx context.Context, query string, maxResults int) ([]model.Document, error) {
	candidates, err := a.backend.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", a.backend.Name(), err)
	}

	queue := candidates
	if len(queue) > maxResults {
		queue = queue[:maxResults]
	}
	queued := make(map[string]bool, len(queue))
	for _, c := range queue {
		queued[c.Key()] = true
	}

	var docs []model.Document
	seenURLs := make(map[string]bool)

	for i := 0; i < len(queue); i++ {
		if a.progress != nil {
			a.progress(i, len(queue))
		}
		if len(docs) >= maxResults {
			break
		}

		cand := queue[i]
		doc, err := a.fetcher.Fetch(ctx, cand)
		if err != nil {
			a.logger.Warn().Str("candidate", cand.Key()).Err(err).Msg("extraction failed, skipping")
			continue
		}
		if doc.Text == "" {
			a.logger.Info().Str("candidate", cand.Key()).Msg("no text found, skipping")
			if a.backend.SupportsSubstitution() {
				if next, ok := a.nextUntried(candidates, queued); ok {
					queue = append(queue, next)
					queued[next.Key()] = true
					a.logger.Info().Str("candidate", next.Key()).Msg("replacement candidate added")
				}
			}
			continue
		}
		if seenURLs[doc.URL] {
			a.logger.Info().Str("url", doc.URL).Msg("duplicate URL, skipping")
			continue
		}

		seenURLs[doc.URL] = true
		docs = append(docs, doc)
	}

	return docs, nil
}

// nextUntried returns the first candidate from the full result set that
// has not yet been queued.
func (a *Acquirer) nextUntried(candidates []model.Candidate, queued map[string]bool) (model.Candidate, bool) {
	for _, c := range candidates {
		if !queued[c.Key()] {
			return c, true
		}
	}
	return model.Candidate{}, false
}
