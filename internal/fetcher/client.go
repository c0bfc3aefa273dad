package fetcher

import (
	"net/http"
	"time"
)

// Transport defaults for source fetching.
const (
	DefaultTimeout               = 30 * time.Second
	DefaultMaxIdleConns          = 100
	DefaultMaxIdleConnsPerHost   = 4
	DefaultIdleConnTimeout       = 90 * time.Second
	DefaultResponseHeaderTimeout = 20 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultMaxBodyBytes          = 10 << 20
	DefaultUserAgent             = "Mozilla/5.0 (compatible; North-Cloud-Headlines/1.0)"
)

// NewClient returns an http.Client whose overall Timeout bounds every fetch.
// Redirects are followed with the standard library's default policy.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          DefaultMaxIdleConns,
		MaxIdleConnsPerHost:   DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		TLSHandshakeTimeout:   DefaultTLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
