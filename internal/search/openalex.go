package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pnadel/llmsurfer/internal/model"
)

// ScholarlyBackend pages through the OpenAlex works index. Harvesting
// stops at the first of: a short page, 20x the requested result count,
// or the provider's pagination ceiling.
type ScholarlyBackend struct {
	fetcher   *fetcher
	baseURL   string
	pageLimit int // provider pagination ceiling, 10,000 results
}

type openAlexPage struct {
	Results []struct {
		Title     string `json:"title"`
		Locations []struct {
			LandingPageURL string `json:"landing_page_url"`
		} `json:"locations"`
	} `json:"results"`
	Meta struct {
		PerPage int `json:"per_page"`
	} `json:"meta"`
}

// Name returns the backend name.
func (b *ScholarlyBackend) Name() string {
	return "openalex"
}

// SupportsSubstitution reports that dead landing pages may be replaced.
func (b *ScholarlyBackend) SupportsSubstitution() bool {
	return true
}

// Search harvests open-access works matching the query, sorted by
// relevance score.
func (b *ScholarlyBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Candidate, error) {
	base := fmt.Sprintf("%s/works?filter=default.search:%s,open_access.is_oa:true&sort=relevance_score:desc",
		b.baseURL, url.QueryEscape(query))

	pageLimit := b.pageLimit
	if pageLimit <= 0 {
		pageLimit = 10000
	}

	var candidates []model.Candidate
	page := 1
	for {
		body, err := b.fetcher.get(ctx, fmt.Sprintf("%s&page=%d", base, page))
		if err != nil {
			return nil, err
		}

		var parsed openAlexPage
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decode openalex page %d: %w", page, err)
		}

		for _, r := range parsed.Results {
			if len(r.Locations) == 0 {
				continue
			}
			candidates = append(candidates, model.Candidate{
				Title:   r.Title,
				URL:     r.Locations[0].LandingPageURL,
				Backend: "openalex",
			})
		}

		if len(parsed.Results) == 0 || len(candidates) > maxResults*20 {
			break
		}
		page++
		if len(parsed.Results) < parsed.Meta.PerPage || parsed.Meta.PerPage*page > pageLimit {
			break
		}
	}

	return candidates, nil
}
