package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func openAlexFixture(count, perPage, offset int) []byte {
	page := map[string]any{
		"meta": map[string]any{"per_page": perPage},
	}
	results := make([]map[string]any, count)
	for i := range results {
		results[i] = map[string]any{
			"title": fmt.Sprintf("Work %d", offset+i),
			"locations": []map[string]any{
				{"landing_page_url": fmt.Sprintf("https://example.org/work/%d", offset+i)},
			},
		}
	}
	page["results"] = results
	data, _ := json.Marshal(page)
	return data
}

func TestScholarlyBackend_StopsOnShortPage(t *testing.T) {
	const perPage = 5
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			_, _ = w.Write(openAlexFixture(perPage, perPage, 0))
		default:
			// Short page ends the harvest
			_, _ = w.Write(openAlexFixture(2, perPage, perPage))
		}
	}))
	defer server.Close()

	backend := &ScholarlyBackend{fetcher: testFetcher(), baseURL: server.URL, pageLimit: 10000}
	candidates, err := backend.Search(context.Background(), "climate", 100)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(candidates) != 7 {
		t.Errorf("expected 7 candidates, got %d", len(candidates))
	}
}

func TestScholarlyBackend_StopsAtHarvestCeiling(t *testing.T) {
	const perPage = 25
	var pagesServed int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		_, _ = w.Write(openAlexFixture(perPage, perPage, pagesServed*perPage))
	}))
	defer server.Close()

	backend := &ScholarlyBackend{fetcher: testFetcher(), baseURL: server.URL, pageLimit: 10000}
	// maxResults=1 caps the harvest at >20 results, i.e. the first page
	// past 20
	candidates, err := backend.Search(context.Background(), "climate", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(candidates) <= 20 {
		t.Errorf("expected harvest past 20, got %d", len(candidates))
	}
	if pagesServed > 2 {
		t.Errorf("expected harvest to stop after 2 pages, served %d", pagesServed)
	}
}

func TestScholarlyBackend_StopsAtPaginationCeiling(t *testing.T) {
	const perPage = 50
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(openAlexFixture(perPage, perPage, 0))
	}))
	defer server.Close()

	// A tiny ceiling stops after the first page even though every page is full
	backend := &ScholarlyBackend{fetcher: testFetcher(), baseURL: server.URL, pageLimit: perPage}
	candidates, err := backend.Search(context.Background(), "climate", 1000)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(candidates) != perPage {
		t.Errorf("expected %d candidates, got %d", perPage, len(candidates))
	}
}

func TestScholarlyBackend_SkipsWorksWithoutLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meta":{"per_page":25},"results":[
			{"title":"Has location","locations":[{"landing_page_url":"https://example.org/1"}]},
			{"title":"No location","locations":[]}
		]}`))
	}))
	defer server.Close()

	backend := &ScholarlyBackend{fetcher: testFetcher(), baseURL: server.URL, pageLimit: 10000}
	candidates, err := backend.Search(context.Background(), "climate", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].URL != "https://example.org/1" {
		t.Errorf("unexpected URL %q", candidates[0].URL)
	}
}
