package rag

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pnadel/llmsurfer/internal/cache"
	"github.com/pnadel/llmsurfer/internal/model"
)

// fakeEmbedder assigns preset vectors by text and counts batch calls.
type fakeEmbedder struct {
	vectors     map[string][]float32
	queryVector []float32
	batchCalls  int
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.queryVector, nil
}

// sentenceChunker builds chunks where every sentence is its own window.
func sentenceChunker(t *testing.T) *Chunker {
	t.Helper()
	return NewChunkerWithSplit(ragConfig(200), func(text string) ([]string, error) {
		return SplitSentences(text), nil
	})
}

func testDoc() model.Document {
	return model.Document{
		Title: "Doc",
		Text:  "Alpha one. Beta two. Gamma three.",
	}
}

func testEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		vectors: map[string][]float32{
			"Alpha one.":   {1, 0},
			"Beta two.":    {3, 0},
			"Gamma three.": {1, 0},
		},
		queryVector: []float32{1, 0},
	}
}

func TestQueryRanksByDotProductWithStableTies(t *testing.T) {
	emb := testEmbedder()
	b := NewBuilder(sentenceChunker(t), emb, nil, 2048, zerolog.Nop())

	idx, err := b.Build(context.Background(), testDoc(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	top, err := idx.Query(context.Background(), "query", 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	// Beta scores 3; Alpha and Gamma tie at 1 and keep document order.
	want := []string{"Beta two.", "Alpha one.", "Gamma three."}
	if len(top) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(top), len(want))
	}
	for i, w := range want {
		if top[i].Text != w {
			t.Errorf("rank %d = %q, want %q", i, top[i].Text, w)
		}
	}
}

func TestQueryShortDocumentReturnsFewerThanK(t *testing.T) {
	emb := testEmbedder()
	b := NewBuilder(sentenceChunker(t), emb, nil, 2048, zerolog.Nop())

	idx, err := b.Build(context.Background(), testDoc(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	top, err := idx.Query(context.Background(), "query", 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(top) != 3 {
		t.Errorf("got %d chunks, want all 3", len(top))
	}
}

func TestBuildBatchesWithProgress(t *testing.T) {
	emb := testEmbedder()
	b := NewBuilder(sentenceChunker(t), emb, nil, 2, zerolog.Nop())

	var events [][2]int
	_, err := b.Build(context.Background(), testDoc(), func(done, total int) {
		events = append(events, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// 3 chunks at batch size 2 means two batches.
	want := [][2]int{{0, 2}, {1, 2}}
	if len(events) != len(want) {
		t.Fatalf("got %d progress events %v, want %d", len(events), events, len(want))
	}
	for i, w := range want {
		if events[i] != w {
			t.Errorf("event %d = %v, want %v", i, events[i], w)
		}
	}
	if emb.batchCalls != 2 {
		t.Errorf("batch calls = %d, want 2", emb.batchCalls)
	}
}

func TestBuildWarmCacheSkipsEmbedder(t *testing.T) {
	vc := cache.NewDiskCache(t.TempDir())

	first := testEmbedder()
	if _, err := NewBuilder(sentenceChunker(t), first, vc, 2048, zerolog.Nop()).
		Build(context.Background(), testDoc(), nil); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if first.batchCalls != 1 {
		t.Fatalf("cold build batch calls = %d, want 1", first.batchCalls)
	}

	second := testEmbedder()
	var events [][2]int
	idx, err := NewBuilder(sentenceChunker(t), second, vc, 2048, zerolog.Nop()).
		Build(context.Background(), testDoc(), func(done, total int) {
			events = append(events, [2]int{done, total})
		})
	if err != nil {
		t.Fatalf("warm Build: %v", err)
	}

	if second.batchCalls != 0 {
		t.Errorf("warm build called the embedder %d times", second.batchCalls)
	}
	if len(events) != 1 || events[0] != [2]int{0, 1} {
		t.Errorf("warm build progress = %v, want one (0,1) event", events)
	}

	top, err := idx.Query(context.Background(), "query", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(top) != 1 || top[0].Text != "Beta two." {
		t.Errorf("warm query top = %+v, want Beta two.", top)
	}
}

func TestBuildChangedContentMissesCache(t *testing.T) {
	vc := cache.NewDiskCache(t.TempDir())

	first := testEmbedder()
	if _, err := NewBuilder(sentenceChunker(t), first, vc, 2048, zerolog.Nop()).
		Build(context.Background(), testDoc(), nil); err != nil {
		t.Fatalf("first Build: %v", err)
	}

	second := testEmbedder()
	second.vectors["Delta four."] = []float32{0, 1}
	changed := model.Document{Title: "Doc", Text: "Alpha one. Beta two. Delta four."}
	if _, err := NewBuilder(sentenceChunker(t), second, vc, 2048, zerolog.Nop()).
		Build(context.Background(), changed, nil); err != nil {
		t.Fatalf("changed Build: %v", err)
	}

	if second.batchCalls != 1 {
		t.Errorf("changed content did not re-embed: %d batch calls", second.batchCalls)
	}
}

func TestBuildEmptyDocumentIsError(t *testing.T) {
	b := NewBuilder(sentenceChunker(t), testEmbedder(), nil, 2048, zerolog.Nop())
	_, err := b.Build(context.Background(), model.Document{Title: "Empty", Text: "  "}, nil)
	if err == nil {
		t.Fatal("expected an error for an empty document")
	}
}
