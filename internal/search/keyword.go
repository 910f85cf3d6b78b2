package search

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/util"
)

// KeywordBackend delegates to the DuckDuckGo HTML endpoint, capped at
// maxResults.
type KeywordBackend struct {
	fetcher *fetcher
	baseURL string
}

// Name returns the backend name.
func (b *KeywordBackend) Name() string {
	return "keyword"
}

// SupportsSubstitution reports that dead links may be replaced.
func (b *KeywordBackend) SupportsSubstitution() bool {
	return true
}

// Search runs a keyword web search and returns up to maxResults candidates.
func (b *KeywordBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Candidate, error) {
	searchURL := strings.TrimRight(b.baseURL, "/") + "/?q=" + url.QueryEscape(query)

	body, err := b.fetcher.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	doc, err := util.ParseHTML(string(body))
	if err != nil {
		return nil, err
	}

	candidates := parseKeywordResults(doc)
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

// parseKeywordResults extracts result links from a DuckDuckGo HTML page.
// Each organic result renders its title as an <a class="result__a">.
func parseKeywordResults(doc *html.Node) []model.Candidate {
	var candidates []model.Candidate

	anchors := util.FindAll(doc, func(n *html.Node) bool {
		return util.IsElement(n, "a") && util.HasClass(n, "result__a")
	})
	for _, a := range anchors {
		href := resolveRedirect(util.Attr(a, "href"))
		title := util.NodeText(a)
		if href == "" || title == "" {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Title:   title,
			URL:     href,
			Backend: "keyword",
		})
	}

	return candidates
}

// resolveRedirect unwraps the uddg redirect parameter the HTML endpoint
// wraps external links in. Unwrapped links pass through untouched.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
