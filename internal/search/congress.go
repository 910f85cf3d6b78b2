package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/util"
)

const congressPageSize = 100

// CongressBackend searches the congress.gov legislative record. Result
// pages are HTML; the displayed total-result count drives pagination at
// 100 results per page.
type CongressBackend struct {
	fetcher *fetcher
	baseURL string
}

// Name returns the backend name.
func (b *CongressBackend) Name() string {
	return "congress"
}

// SupportsSubstitution reports that failed bills are skipped, never
// substituted: the result set is already filtered to enacted laws and a
// replacement would change the sampled population.
func (b *CongressBackend) SupportsSubstitution() bool {
	return false
}

// Search pages through congress.gov results for the query. maxResults is
// advisory here: the full result set is returned so the orchestrator can
// report totals, and the acquirer takes its head.
func (b *CongressBackend) Search(ctx context.Context, query string, maxResults int) ([]model.Candidate, error) {
	searchURL := b.baseURL + buildCongressQuery(query)

	body, err := b.fetcher.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	doc, err := util.ParseHTML(string(body))
	if err != nil {
		return nil, err
	}

	total, err := parseResultCount(doc)
	if err != nil {
		return nil, fmt.Errorf("parse result count: %w", err)
	}
	maxPages := total/congressPageSize + 1

	candidates := parseCongressResults(doc)
	for page := 2; page <= maxPages; page++ {
		body, err := b.fetcher.get(ctx, fmt.Sprintf("%s&page=%d", searchURL, page))
		if err != nil {
			return nil, err
		}
		doc, err := util.ParseHTML(string(body))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, parseCongressResults(doc)...)
	}

	return candidates, nil
}

// buildCongressQuery derives the search query parameter. Queries joined
// by the literal token OR become an escaped-quote OR expression; plain
// queries become a single +-joined term. Both restrict to enacted laws.
func buildCongressQuery(query string) string {
	if strings.Contains(query, "OR") {
		parts := strings.Split(query, "OR")
		var b strings.Builder
		for i, q := range parts {
			part := strings.ReplaceAll(strings.TrimSpace(q), `"`, "")
			part = strings.ReplaceAll(part, " ", "+")
			b.WriteString(`%5C%22` + part + `%5C%22+`)
			if i != len(parts)-1 {
				b.WriteString("OR+")
			}
		}
		return `/search?q=%7B%22congress%22%3A%22all%22%2C%22search%22%3A%22` + b.String() + `%22%2C%22bill-status%22%3A%22law%22%7D`
	}

	term := strings.Join(strings.Fields(query), "+")
	return `/search?q=%7B%22congress%22%3A%22all%22%2C%22source%22%3A%22all%22%2C%22search%22%3A%22` + term + `%22%2C%22bill-status%22%3A%22law%22%7D`
}

// parseResultCount reads the displayed total from the last
// "results-number" element, e.g. "1-100 of 1,234".
func parseResultCount(doc *html.Node) (int, error) {
	nodes := util.FindAll(doc, func(n *html.Node) bool {
		return util.HasClass(n, "results-number")
	})
	if len(nodes) == 0 {
		return 0, fmt.Errorf("no results-number element")
	}

	text := util.NodeText(nodes[len(nodes)-1])
	idx := strings.LastIndex(text, "of")
	if idx < 0 {
		return 0, fmt.Errorf("malformed results-number text %q", text)
	}

	raw := strings.ReplaceAll(strings.TrimSpace(text[idx+len("of"):]), ",", "")
	total, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse total %q: %w", raw, err)
	}
	return total, nil
}

// parseCongressResults extracts one candidate per expanded result row.
func parseCongressResults(doc *html.Node) []model.Candidate {
	var candidates []model.Candidate

	ol := util.FindFirst(doc, func(n *html.Node) bool {
		return util.IsElement(n, "ol")
	})
	if ol == nil {
		return nil
	}

	rows := util.FindAll(ol, func(n *html.Node) bool {
		return util.IsElement(n, "li") && util.HasClass(n, "expanded")
	})
	for _, row := range rows {
		if c, ok := parseCongressRow(row); ok {
			candidates = append(candidates, c)
		}
	}

	return candidates
}

// parseCongressRow reads one result row. The heading reads "H.R.1319 —
// American Rescue Plan" for House bills and "S.1260 — ..." for Senate
// bills: more than two dot-separated segments means House.
func parseCongressRow(row *html.Node) (model.Candidate, bool) {
	heading := util.FindFirst(row, func(n *html.Node) bool {
		return util.IsElement(n, "span") && util.HasClass(n, "result-heading")
	})
	titleNode := util.FindFirst(row, func(n *html.Node) bool {
		return util.IsElement(n, "span") && util.HasClass(n, "result-title")
	})
	link := util.FindFirst(row, func(n *html.Node) bool {
		return util.IsElement(n, "a")
	})
	if heading == nil || titleNode == nil || link == nil {
		return model.Candidate{}, false
	}

	chamber := "s"
	if len(strings.Split(util.NodeText(heading), ".")) > 2 {
		chamber = "hr"
	}

	// href shape: /bill/117th-congress/house-bill/1319?s=1&r=2
	href := util.Attr(link, "href")
	segments := strings.Split(href, "/")
	if len(segments) < 3 || len(segments[2]) < 3 {
		return model.Candidate{}, false
	}
	congress := segments[2][:3]

	path := strings.SplitN(href, "?", 2)[0]
	pathSegments := strings.Split(path, "/")
	number := pathSegments[len(pathSegments)-1]

	return model.Candidate{
		Title:   strings.TrimSpace(util.NodeText(titleNode)),
		Backend: "congress",
		Bill: &model.BillRef{
			Congress: congress,
			Number:   number,
			Chamber:  chamber,
		},
	}, true
}
