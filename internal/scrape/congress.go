package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/util"
	"github.com/pnadel/llmsurfer/internal/worker"
)

var (
	anActTitleRe  = regexp.MustCompile(`(?s)An Act(.*?\.)`)
	billNoTitleRe = regexp.MustCompile(`(?s)H\. R\.\s+\d+(.*?\.)`)
)

// CongressClient reads bill full text from the legislative API. Unlike
// generic page fetches, any failure here is a hard error: legislative
// candidates are skipped, never substituted.
type CongressClient struct {
	client    *http.Client
	limiter   *worker.Limiter
	baseURL   string
	apiKey    string
	userAgent string
	maxBytes  int64
	logger    zerolog.Logger
}

type billTextResponse struct {
	TextVersions []struct {
		Date    string `json:"date"`
		Formats []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"formats"`
	} `json:"textVersions"`
}

// FetchBillText retrieves the most recent text version of a bill,
// preferring XML/HTML formats over PDF, and resolves a title and year.
func (c *CongressClient) FetchBillText(ctx context.Context, bill model.BillRef, resultTitle string) (model.Document, error) {
	congress := strings.TrimRightFunc(bill.Congress, func(r rune) bool {
		return !unicode.IsDigit(r)
	})

	listURL := fmt.Sprintf("%s/bill/%s/%s/%s/text?format=json", c.baseURL, congress, bill.Chamber, bill.Number)
	body, err := c.get(ctx, listURL)
	if err != nil {
		return model.Document{}, fmt.Errorf("bill text listing: %w", err)
	}

	var listing billTextResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return model.Document{}, fmt.Errorf("decode bill text listing: %w", err)
	}

	// Most recent version that has at least one available format
	var versions []int
	for i, v := range listing.TextVersions {
		if len(v.Formats) > 0 {
			versions = append(versions, i)
		}
	}
	if len(versions) == 0 {
		return model.Document{}, fmt.Errorf("bill %s/%s/%s: no text versions with formats", congress, bill.Chamber, bill.Number)
	}
	latest := listing.TextVersions[versions[len(versions)-1]]

	var markup []string
	for _, f := range latest.Formats {
		if strings.HasSuffix(f.URL, "xml") || strings.HasSuffix(f.URL, "htm") {
			markup = append(markup, f.URL)
		}
	}

	var text, altTitle string
	if len(markup) > 0 {
		text, altTitle, err = c.fetchMarkupText(ctx, markup)
	} else {
		pdfURL := latest.Formats[len(latest.Formats)-1].URL
		text, altTitle, err = c.fetchPDFText(ctx, pdfURL)
	}
	if err != nil {
		return model.Document{}, err
	}

	year := strings.SplitN(latest.Date, "-", 2)[0]
	return model.Document{
		URL:      latest.Formats[len(latest.Formats)-1].URL,
		Title:    resultTitle,
		AltTitle: altTitle,
		Text:     text,
		Year:     year,
	}, nil
}

// fetchMarkupText reads the preferred XML/HTML format. If the chosen
// page resolves to a "Page Not Found" placeholder, the first format is
// fetched instead of the last.
func (c *CongressClient) fetchMarkupText(ctx context.Context, urls []string) (text string, title string, err error) {
	body, err := c.get(ctx, urls[len(urls)-1])
	if err != nil {
		return "", "", fmt.Errorf("bill markup: %w", err)
	}

	root, err := util.ParseHTML(string(body))
	if err != nil {
		return "", "", fmt.Errorf("parse bill markup: %w", err)
	}
	text = util.NodeText(root)

	if strings.Contains(text, "Page Not Found") {
		c.logger.Debug().Str("url", urls[0]).Msg("placeholder page, falling back to first format")
		body, err = c.get(ctx, urls[0])
		if err != nil {
			return "", "", fmt.Errorf("bill markup fallback: %w", err)
		}
		root, err = util.ParseHTML(string(body))
		if err != nil {
			return "", "", fmt.Errorf("parse bill markup fallback: %w", err)
		}
		text = util.NodeText(root)
	}

	title, err = markupTitle(root, text)
	if err != nil {
		return "", "", err
	}
	return text, title, nil
}

// fetchPDFText reads a PDF-only bill and extracts a title from the text.
func (c *CongressClient) fetchPDFText(ctx context.Context, url string) (text string, title string, err error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return "", "", fmt.Errorf("bill pdf: %w", err)
	}

	text, err = pdfText(body)
	if err != nil {
		return "", "", fmt.Errorf("extract bill pdf: %w", err)
	}

	title, err = textTitle(text)
	if err != nil {
		return "", "", err
	}
	return text, title, nil
}

// markupTitle resolves a bill title from its markup: an explicit
// dc:title element, then an official-title element, then the text
// heuristics.
func markupTitle(root *html.Node, text string) (string, error) {
	if n := util.FindFirst(root, func(n *html.Node) bool {
		return util.IsElement(n, "dc:title")
	}); n != nil {
		return cleanTitle(util.NodeText(n)), nil
	}

	if n := util.FindFirst(root, func(n *html.Node) bool {
		return util.IsElement(n, "official-title")
	}); n != nil {
		return cleanTitle(util.NodeText(n)), nil
	}

	return textTitle(text)
}

// textTitle extracts the span following "An Act", or failing that
// "H. R. <number>", up to the next period.
func textTitle(text string) (string, error) {
	if m := anActTitleRe.FindStringSubmatch(text); m != nil {
		return cleanTitle(m[1]), nil
	}
	if m := billNoTitleRe.FindStringSubmatch(text); m != nil {
		return cleanTitle(m[1]), nil
	}
	return "", fmt.Errorf("no title found in bill text")
}

func cleanTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// get retrieves one API or content URL with the API key header set.
func (c *CongressClient) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
}
