package util

import (
	"net/http"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), target string) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		t.Fatal(err)
	}
	u, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if u == nil {
		return ""
	}
	return u.Host
}

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "http://sproxy.internal:3128")

	if got := proxyFor(t, fn, "https://example.org/doc"); got != "sproxy.internal:3128" {
		t.Errorf("https request routed to %q", got)
	}
	if got := proxyFor(t, fn, "http://example.org/doc"); got != "proxy.internal:3128" {
		t.Errorf("http request routed to %q", got)
	}
}

func TestNewProxyFunc_HTTPProxyCoversHTTPS(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "")

	if got := proxyFor(t, fn, "https://example.org/doc"); got != "proxy.internal:3128" {
		t.Errorf("https request routed to %q", got)
	}
}

func TestNewProxyFunc_UnconfiguredUsesEnvironment(t *testing.T) {
	// Environment handling never proxies loopback addresses
	fn := NewProxyFunc("", "")
	if got := proxyFor(t, fn, "http://127.0.0.1:8080/doc"); got != "" {
		t.Errorf("expected direct connection, got proxy %q", got)
	}
}
