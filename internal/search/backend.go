// Package search produces ordered candidate lists for a research query,
// abstracting over three backends: generic keyword web search, paginated
// legislative-record search, and a paginated scholarly index.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pnadel/llmsurfer/internal/model"
	"github.com/pnadel/llmsurfer/internal/util"
	"github.com/pnadel/llmsurfer/internal/worker"
)

// Backend defines the interface for search backends.
type Backend interface {
	// Name returns the backend name.
	Name() string

	// Search returns candidates for the query in relevance order. Network
	// or parsing errors during pagination propagate to the caller; no
	// page fetch is retried.
	Search(ctx context.Context, query string, maxResults int) ([]model.Candidate, error)

	// SupportsSubstitution reports whether the acquirer may substitute a
	// replacement candidate when a fetch yields no text.
	SupportsSubstitution() bool
}

// New creates the backend selected by the configuration.
func New(cfg *model.Config) (Backend, error) {
	fetcher := newFetcher(cfg.HTTP)

	switch strings.ToLower(cfg.Search.Backend) {
	case "keyword", "ddg":
		return &KeywordBackend{fetcher: fetcher, baseURL: cfg.Search.KeywordBaseURL}, nil

	case "congress":
		return &CongressBackend{fetcher: fetcher, baseURL: cfg.Search.CongressBaseURL}, nil

	case "openalex":
		return &ScholarlyBackend{fetcher: fetcher, baseURL: cfg.Search.OpenAlexBaseURL, pageLimit: cfg.Search.OpenAlexPageLimit}, nil

	default:
		return nil, fmt.Errorf("unknown search backend: %s (supported: keyword, congress, openalex)", cfg.Search.Backend)
	}
}

// fetcher is the shared rate-limited page getter used by all backends.
type fetcher struct {
	client    *http.Client
	limiter   *worker.Limiter
	userAgent string
	maxBytes  int64
}

func newFetcher(cfg model.HTTPConfig) *fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes == 0 {
		maxBytes = 8_000_000
	}

	return &fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		limiter:   worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
	}
}

// get retrieves one page, honoring the per-host rate limit.
func (f *fetcher) get(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx, url); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}
