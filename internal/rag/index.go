package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pnadel/llmsurfer/internal/cache"
	"github.com/pnadel/llmsurfer/internal/model"
)

// Embedder produces embedding vectors. Satisfied by llm.Provider.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ProgressFunc reports embedding progress as (batch done, total batches).
type ProgressFunc func(done, total int)

// ErrNoChunks is returned when a document yields no usable chunks.
var ErrNoChunks = errors.New("document produced no chunks")

// Index holds one document's chunks and their embedding vectors, in
// chunk order.
type Index struct {
	chunks   []model.Chunk
	vectors  [][]float32
	embedder Embedder
}

// Chunks returns the indexed chunks in document order.
func (idx *Index) Chunks() []model.Chunk {
	return idx.chunks
}

// Builder constructs per-document indexes, consulting the vector cache
// before calling the embedder.
type Builder struct {
	chunker   *Chunker
	embedder  Embedder
	cache     cache.VectorCache
	batchSize int
	logger    zerolog.Logger
}

// NewBuilder creates an index builder. vc may be nil to disable caching.
func NewBuilder(chunker *Chunker, embedder Embedder, vc cache.VectorCache, batchSize int, logger zerolog.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Builder{
		chunker:   chunker,
		embedder:  embedder,
		cache:     vc,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Build chunks the document and embeds every chunk. Cached vectors are
// reused when the chunk content is unchanged; a cache hit reports a
// single progress event.
func (b *Builder) Build(ctx context.Context, doc model.Document, progress ProgressFunc) (*Index, error) {
	chunks, err := b.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %q: %w", doc.Title, err)
	}
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	key := cache.NewKey(doc.Title, texts)

	if b.cache != nil {
		if vectors, found := b.cache.Get(key); found {
			b.logger.Debug().Str("title", doc.Title).Int("chunks", len(chunks)).Msg("embeddings from cache")
			if progress != nil {
				progress(0, 1)
			}
			return &Index{chunks: chunks, vectors: vectors, embedder: b.embedder}, nil
		}
	}

	vectors, err := b.embed(ctx, texts, progress)
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", doc.Title, err)
	}

	if b.cache != nil {
		if err := b.cache.Set(key, vectors); err != nil {
			b.logger.Warn().Err(err).Str("title", doc.Title).Msg("persist embeddings failed")
		}
	}
	return &Index{chunks: chunks, vectors: vectors, embedder: b.embedder}, nil
}

// embed runs batched embedding calls, reporting one progress event per
// batch, and concatenates the results in input order.
func (b *Builder) embed(ctx context.Context, texts []string, progress ProgressFunc) ([][]float32, error) {
	total := (len(texts) + b.batchSize - 1) / b.batchSize
	vectors := make([][]float32, 0, len(texts))

	for i := 0; i < total; i++ {
		if progress != nil {
			progress(i, total)
		}
		lo := i * b.batchSize
		hi := lo + b.batchSize
		if hi > len(texts) {
			hi = len(texts)
		}
		batch, err := b.embedder.EmbedBatch(ctx, texts[lo:hi])
		if err != nil {
			return nil, err
		}
		if len(batch) != hi-lo {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), hi-lo)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// Query embeds the query text and returns the top-k chunks by dot
// product, highest first. Ties keep document order. Fewer than k chunks
// are returned when the document is short.
func (idx *Index) Query(ctx context.Context, query string, k int) ([]model.Chunk, error) {
	qv, err := idx.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scores := make([]float64, len(idx.vectors))
	for i, vec := range idx.vectors {
		scores[i] = dot(vec, qv)
	}

	order := make([]int, len(idx.chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	top := make([]model.Chunk, 0, k)
	for _, i := range order[:k] {
		top = append(top, idx.chunks[i])
	}
	return top, nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
