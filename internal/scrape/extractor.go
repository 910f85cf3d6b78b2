// Package scrape retrieves and normalizes the full text of candidate
// documents: rendered HTML pages, PDF streams, and the legislative
// full-text API.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/util"
	"github.com/pnadel/llmsurfer/internal/worker"
)

// Extractor fetches candidate content over a single HTTP session, reused
// serially across all fetches in one run. Callers must Close it on every
// exit path.
type Extractor struct {
	client    *http.Client
	limiter   *worker.Limiter
	robots    *util.RobotsChecker
	congress  *CongressClient
	userAgent string
	maxBytes  int64
	logger    zerolog.Logger
}

// NewExtractor creates an extractor for one run.
func NewExtractor(cfg *model.Config, logger zerolog.Logger) *Extractor {
	client := &http.Client{
		Timeout: cfg.HTTP.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, 10*time.Second, 30*time.Minute)
	}

	limiter := worker.NewLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.Burst)

	return &Extractor{
		client:  client,
		limiter: limiter,
		robots:  robots,
		congress: &CongressClient{
			client:    client,
			limiter:   limiter,
			baseURL:   cfg.Search.CongressAPIURL,
			apiKey:    cfg.Search.CongressAPIKey,
			userAgent: cfg.HTTP.UserAgent,
			maxBytes:  cfg.HTTP.MaxBodyBytes,
			logger:    logger,
		},
		userAgent: cfg.HTTP.UserAgent,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		logger:    logger,
	}
}

// Close releases the HTTP session.
func (e *Extractor) Close() {
	e.client.CloseIdleConnections()
}

// Fetch retrieves the full text for a candidate. Generic candidates that
// time out or fail to navigate come back with empty text rather than an
// error; legislative candidates report failures as errors since they are
// never substituted.
func (e *Extractor) Fetch(ctx context.Context, cand model.Candidate) (model.Document, error) {
	if cand.Bill != nil {
		return e.congress.FetchBillText(ctx, *cand.Bill, cand.Title)
	}
	return e.fetchPage(ctx, cand), nil
}

// fetchPage retrieves a generic URL: PDF resources are read page by
// page; HTML pages prefer sectioned content and fall back to paragraphs.
func (e *Extractor) fetchPage(ctx context.Context, cand model.Candidate) model.Document {
	doc := model.Document{URL: cand.URL, Title: cand.Title, Year: "No date found"}

	if e.robots != nil && !e.robots.IsAllowed(ctx, cand.URL) {
		e.logger.Warn().Str("url", cand.URL).Msg("blocked by robots.txt")
		return doc
	}
	if err := e.limiter.Wait(ctx, cand.URL); err != nil {
		return doc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cand.URL, nil)
	if err != nil {
		return doc
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn().Str("url", cand.URL).Err(err).Msg("fetch failed")
		return doc
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.logger.Warn().Str("url", cand.URL).Int("status", resp.StatusCode).Msg("fetch failed")
		return doc
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return doc
	}
	doc.URL = resp.Request.URL.String()

	if isPDF(resp.Header.Get("Content-Type"), doc.URL) {
		text, err := pdfText(body)
		if err != nil {
			e.logger.Warn().Str("url", doc.URL).Err(err).Msg("pdf extraction failed")
			return doc
		}
		doc.Text = text
		return doc
	}

	doc.Text = extractPageText(string(body))
	return doc
}

// extractPageText prefers text inside elements tagged as content
// sections and falls back to all paragraphs when none exist.
func extractPageText(content string) string {
	root, err := util.ParseHTML(content)
	if err != nil {
		return ""
	}

	sections := util.FindAll(root, func(n *html.Node) bool {
		return util.IsElement(n, "div") && util.HasClass(n, "section")
	})
	text := joinNodeText(sections)
	if text == "" {
		paragraphs := util.FindAll(root, func(n *html.Node) bool {
			return util.IsElement(n, "p")
		})
		text = joinNodeText(paragraphs)
	}
	return text
}

func joinNodeText(nodes []*html.Node) string {
	var parts []string
	for _, n := range nodes {
		if t := strings.ReplaceAll(util.NodeText(n), "\n", " "); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func isPDF(contentType, url string) bool {
	return strings.Contains(contentType, "application/pdf") || strings.Contains(url, "pdf")
}
