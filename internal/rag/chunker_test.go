package rag

import (
	"strings"
	"testing"

	"github.com/pnadel/llmsurfer/internal/model"
)

func ragConfig(maxWords int) model.RAGConfig {
	return model.RAGConfig{
		ChunkSize:     200,
		ChunkOverlap:  50,
		MaxChunkWords: maxWords,
		TopK:          5,
		BatchSize:     2048,
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain sentences",
			text: "First sentence here. Second sentence follows. Third one ends.",
			want: []string{
				"First sentence here.",
				"Second sentence follows.",
				"Third one ends.",
			},
		},
		{
			name: "initials do not split",
			text: "H. R. 1319 was passed. It matters.",
			want: []string{"H. R. 1319 was passed.", "It matters."},
		},
		{
			name: "abbreviation does not split",
			text: "See Sec. 4 for details. More text.",
			want: []string{"See Sec. 4 for details.", "More text."},
		},
		{
			name: "unterminated tail kept",
			text: "Complete one. trailing fragment",
			want: []string{"Complete one.", "trailing fragment"},
		},
		{
			name: "whitespace only",
			text: "   \n\t ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sentences %q, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkAlignsWindowsToSentences(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one ends."
	// Windows cut mid-sentence, as a token splitter would.
	split := func(string) ([]string, error) {
		return []string{
			"First sentence here. Second",
			"sentence follows. Third one ends.",
		}, nil
	}

	c := NewChunkerWithSplit(ragConfig(200), split)
	chunks, err := c.Chunk(model.Document{Title: "Doc", Text: text})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}

	want := []string{
		"First sentence here. Second sentence follows.",
		"Second sentence follows. Third one ends.",
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
		if chunks[i].Title != "Doc" {
			t.Errorf("chunk %d title = %q", i, chunks[i].Title)
		}
	}
}

func TestChunkWordCapKeepsLeadingSentences(t *testing.T) {
	text := "One two three four. Five six seven. Eight nine ten eleven."
	split := func(string) ([]string, error) {
		return []string{text}, nil
	}

	c := NewChunkerWithSplit(ragConfig(7), split)
	chunks, err := c.Chunk(model.Document{Title: "Doc", Text: text})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	// 4 + 3 words fit under 7; the third sentence would overflow.
	want := "One two three four. Five six seven."
	if chunks[0].Text != want {
		t.Errorf("chunk = %q, want %q", chunks[0].Text, want)
	}
	if n := len(strings.Fields(chunks[0].Text)); n > 7 {
		t.Errorf("chunk has %d words, cap is 7", n)
	}
}

func TestChunkDropsEmptyWindowsKeepsIndices(t *testing.T) {
	split := func(string) ([]string, error) {
		return []string{"", "   ", "Real sentence."}, nil
	}

	c := NewChunkerWithSplit(ragConfig(200), split)
	chunks, err := c.Chunk(model.Document{Title: "Doc", Text: "Real sentence."})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Index != 2 {
		t.Errorf("chunk index = %d, want 2", chunks[0].Index)
	}
}

func TestChunkVerbatimWindowNotInText(t *testing.T) {
	// A window the sentence list does not contain passes through as-is.
	split := func(string) ([]string, error) {
		return []string{"synthesized tokens not in source"}, nil
	}

	c := NewChunkerWithSplit(ragConfig(200), split)
	chunks, err := c.Chunk(model.Document{Title: "Doc", Text: "Completely different text."})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "synthesized tokens not in source" {
		t.Fatalf("got %+v, want the verbatim window", chunks)
	}
}
