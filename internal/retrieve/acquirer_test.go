package retrieve

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pnadel/llmsurfer/internal/model"
)

type fakeBackend struct {
	candidates  []model.Candidate
	substitutes bool
}

func (b *fakeBackend) Name() string               { return "fake" }
func (b *fakeBackend) SupportsSubstitution() bool { return b.substitutes }
func (b *fakeBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Candidate, error) {
	return b.candidates, nil
}

type fakeFetcher struct {
	// empty marks URLs whose extraction yields no text
	empty map[string]bool
	// canonical rewrites a candidate URL to the fetched document URL,
	// the way a redirect does
	canonical map[string]string
	calls     []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, cand model.Candidate) (model.Document, error) {
	f.calls = append(f.calls, cand.URL)
	finalURL := cand.URL
	if c, ok := f.canonical[cand.URL]; ok {
		finalURL = c
	}
	if f.empty[cand.URL] {
		return model.Document{URL: finalURL, Title: cand.Title}, nil
	}
	return model.Document{URL: finalURL, Title: cand.Title, Text: "some text"}, nil
}

func candidates(n int) []model.Candidate {
	out := make([]model.Candidate, n)
	for i := range out {
		out[i] = model.Candidate{
			Title:   fmt.Sprintf("Doc %d", i),
			URL:     fmt.Sprintf("https://example.org/%d", i),
			Backend: "fake",
		}
	}
	return out
}

func TestAcquire_CapsAtMaxResults(t *testing.T) {
	backend := &fakeBackend{candidates: candidates(10), substitutes: true}
	fetcher := &fakeFetcher{}
	a := NewAcquirer(backend, fetcher, nil, zerolog.Nop())

	docs, err := a.Acquire(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	seen := make(map[string]bool)
	for _, d := range docs {
		if seen[d.URL] {
			t.Errorf("duplicate URL %s", d.URL)
		}
		seen[d.URL] = true
	}
}

func TestAcquire_DropsDuplicateFinalURLs(t *testing.T) {
	backend := &fakeBackend{candidates: candidates(4)}
	fetcher := &fakeFetcher{canonical: map[string]string{
		"https://example.org/0": "https://example.org/report",
		"https://example.org/1": "https://example.org/report",
		"https://example.org/2": "https://example.org/report",
	}}
	a := NewAcquirer(backend, fetcher, nil, zerolog.Nop())

	docs, err := a.Acquire(context.Background(), "q", 4)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents after URL dedup, got %d", len(docs))
	}
	if docs[0].URL != "https://example.org/report" {
		t.Errorf("unexpected first URL %s", docs[0].URL)
	}
	if docs[1].URL != "https://example.org/3" {
		t.Errorf("unexpected second URL %s", docs[1].URL)
	}
}

func TestAcquire_SubstitutesDeadLinks(t *testing.T) {
	backend := &fakeBackend{candidates: candidates(6), substitutes: true}
	fetcher := &fakeFetcher{empty: map[string]bool{
		"https://example.org/1": true,
	}}
	a := NewAcquirer(backend, fetcher, nil, zerolog.Nop())

	docs, err := a.Acquire(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents after substitution, got %d", len(docs))
	}
	// The replacement is the first untried candidate: index 3
	if docs[2].URL != "https://example.org/3" {
		t.Errorf("expected substituted candidate, got %s", docs[2].URL)
	}
}

func TestAcquire_NoSubstitutionIsHardSkip(t *testing.T) {
	backend := &fakeBackend{candidates: candidates(6), substitutes: false}
	fetcher := &fakeFetcher{empty: map[string]bool{
		"https://example.org/0": true,
	}}
	a := NewAcquirer(backend, fetcher, nil, zerolog.Nop())

	docs, err := a.Acquire(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents with hard skip, got %d", len(docs))
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("expected 3 fetches (no replacements), got %d", len(fetcher.calls))
	}
}

func TestAcquire_ProgressFiresPerQueueItem(t *testing.T) {
	backend := &fakeBackend{candidates: candidates(5), substitutes: true}
	fetcher := &fakeFetcher{empty: map[string]bool{
		"https://example.org/0": true,
	}}

	var events [][2]int
	progress := func(i, total int) { events = append(events, [2]int{i, total}) }
	a := NewAcquirer(backend, fetcher, progress, zerolog.Nop())

	if _, err := a.Acquire(context.Background(), "q", 3); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	// Queue grows from 3 to 4 after the substitution, and progress fires
	// once per examined item including the dead one
	if len(events) != 4 {
		t.Fatalf("expected 4 progress events, got %d", len(events))
	}
	if events[0] != [2]int{0, 3} {
		t.Errorf("unexpected first event %v", events[0])
	}
	if events[3] != [2]int{3, 4} {
		t.Errorf("unexpected final event %v", events[3])
	}
}

func TestAcquire_QueueExhaustion(t *testing.T) {
	backend := &fakeBackend{candidates: candidates(2), substitutes: true}
	fetcher := &fakeFetcher{empty: map[string]bool{
		"https://example.org/0": true,
		"https://example.org/1": true,
	}}
	a := NewAcquirer(backend, fetcher, nil, zerolog.Nop())

	docs, err := a.Acquire(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}
