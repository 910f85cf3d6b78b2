package rag

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/pnadel/llmsurfer/internal/model"
)

// SplitFunc divides text into token windows.
type SplitFunc func(text string) ([]string, error)

// Chunker turns a document into sentence-aligned, word-capped chunks.
// Token windows fix the coarse boundaries; each window is then widened
// to the contiguous run of full sentences it touches, so no chunk
// starts or ends mid-sentence.
type Chunker struct {
	maxWords int
	split    SplitFunc
}

// NewChunker creates a chunker using a tiktoken-based token splitter.
func NewChunker(cfg model.RAGConfig) *Chunker {
	splitter := textsplitter.NewTokenSplitter(
		textsplitter.WithChunkSize(cfg.ChunkSize),
		textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
	)
	return NewChunkerWithSplit(cfg, splitter.SplitText)
}

// NewChunkerWithSplit creates a chunker with a caller-supplied token
// window function.
func NewChunkerWithSplit(cfg model.RAGConfig, split SplitFunc) *Chunker {
	return &Chunker{
		maxWords: cfg.MaxChunkWords,
		split:    split,
	}
}

// Chunk splits the document text. Chunk indices follow window order and
// are preserved across the empty-chunk filter.
func (c *Chunker) Chunk(doc model.Document) ([]model.Chunk, error) {
	windows, err := c.split(doc.Text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	sentences := SplitSentences(doc.Text)

	var chunks []model.Chunk
	for i, window := range windows {
		text := c.align(window, sentences)
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunks = append(chunks, model.Chunk{
			Title: doc.Title,
			Index: i,
			Text:  text,
		})
	}
	return chunks, nil
}

// align widens a token window to whole sentences and applies the word
// cap. Windows containing no sentence at all pass through verbatim.
func (c *Chunker) align(window string, sentences []string) string {
	winSents := SplitSentences(window)
	if len(winSents) == 0 {
		return c.capWords(window)
	}

	start := findContaining(sentences, winSents[0], 0)
	if start < 0 {
		return c.capWords(strings.TrimSpace(window))
	}
	end := findContaining(sentences, winSents[len(winSents)-1], start)
	if end < start {
		end = start
	}

	chunk := strings.Join(sentences[start:end+1], " ")
	if wordCount(chunk) <= c.maxWords {
		return chunk
	}

	// Over the cap: keep leading sentences while they fit.
	var kept []string
	words := 0
	for _, s := range sentences[start : end+1] {
		n := wordCount(s)
		if words+n > c.maxWords {
			break
		}
		kept = append(kept, s)
		words += n
	}
	return strings.Join(kept, " ")
}

// capWords trims verbatim text to the word cap.
func (c *Chunker) capWords(text string) string {
	fields := strings.Fields(text)
	if len(fields) <= c.maxWords {
		return text
	}
	return strings.Join(fields[:c.maxWords], " ")
}

// findContaining returns the index of the first sentence at or after
// from that contains fragment, or -1.
func findContaining(sentences []string, fragment string, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(sentences); i++ {
		if strings.Contains(sentences[i], fragment) {
			return i
		}
	}
	return -1
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
