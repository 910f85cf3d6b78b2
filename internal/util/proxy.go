package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds the Transport.Proxy hook for outbound document
// fetches. With neither proxy configured it defers to the standard
// HTTP_PROXY / HTTPS_PROXY environment handling; otherwise the https
// proxy covers https requests and the http proxy covers the rest.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
