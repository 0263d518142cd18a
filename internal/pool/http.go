package pool

import (
	"net"
	"net/http"
	"time"
)

// HTTPClientPool holds a pooled HTTP client for long-lived upstream streams
type HTTPClientPool struct {
	client    *http.Client
	transport *http.Transport
}

// NewHTTPClientPool creates a client tuned for relaying media. There is no
// overall request timeout: a stream lasts as long as the caller keeps reading,
// and cancellation comes from the request context.
func NewHTTPClientPool() *HTTPClientPool {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		// Connection pooling settings
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second, // Connection timeout
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,

		// Relay bytes exactly as the upstream encodes them
		DisableCompression: true,
	}

	return &HTTPClientPool{
		client:    &http.Client{Transport: transport},
		transport: transport,
	}
}

// Client returns the underlying HTTP client
func (p *HTTPClientPool) Client() *http.Client {
	return p.client
}

// Close closes all idle connections
func (p *HTTPClientPool) Close() {
	p.transport.CloseIdleConnections()
}
