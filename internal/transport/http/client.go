package http

import (
	"net"
	"net/http"
	"time"

	"github.com/oshokin/vidstash/internal/utils"
)

// NewTransport returns the shared transport chain: User-Agent injection, then debug logging,
// then a pooled *http.Transport with dial and response-header timeouts.
func NewTransport(userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultDialTimeout,
			KeepAlive: DefaultDialTimeout,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       DefaultIdleConnTimeout,
		TLSHandshakeTimeout:   DefaultDialTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		ExpectContinueTimeout: time.Second,
	}

	return NewUserAgentInjector(NewLogTransport(base, 0), userAgentProvider)
}

// NewAPIClient returns a client for short request/response exchanges bounded by DefaultTimeout.
func NewAPIClient(transport http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: transport,
		Timeout:   DefaultTimeout,
	}
}

// NewStreamingClient returns a client without an overall timeout.
// Long media bodies are bounded by the caller's context instead.
func NewStreamingClient(transport http.RoundTripper) *http.Client {
	return &http.Client{
		Transport: transport,
	}
}
