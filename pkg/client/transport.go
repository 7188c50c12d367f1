package client

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

const (
	// DialTimeout is the maximum time to establish a TCP connection.
	DialTimeout = 3 * time.Second
	// KeepAlive is the interval between TCP keep-alive probes.
	KeepAlive = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time of the TLS handshake.
	TLSHandshakeTimeout = 5 * time.Second
	// IdleConnTimeout closes a pooled connection, if it is not used for the time.
	IdleConnTimeout = 90 * time.Second
	// MaxConnectionsPerHost limits open connections to one GraphQL endpoint.
	MaxConnectionsPerHost = 32
	// MaxIdleConnections limits pooled connections to all endpoints.
	MaxIdleConnections = 128
)

var sharedTransport = sync.OnceValue(DefaultTransport)

// SharedTransport returns the process-wide transport used by New.
// All clients created without WithTransport share one connection pool,
// so short-lived clients do not leave keep-alive connections behind.
func SharedTransport() http.RoundTripper {
	return sharedTransport()
}

// DefaultTransport creates a new transport with its own connection pool.
//
// The transport has no response timeout, a long-running GraphQL operation
// is limited only by the context of the request.
func DefaultTransport() http.RoundTripper {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         Dialer().DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: TLSHandshakeTimeout,
		IdleConnTimeout:     IdleConnTimeout,
		MaxIdleConns:        MaxIdleConnections,
		MaxConnsPerHost:     MaxConnectionsPerHost,
		MaxIdleConnsPerHost: MaxConnectionsPerHost,
	}
}

// HTTP2Transport creates a transport which speaks only HTTP/2 over TLS.
// Dead connections are detected by health-check pings.
func HTTP2Transport() http.RoundTripper {
	dialer := Dialer()
	return &http2.Transport{
		DialTLS: func(network, addr string, cfg *tls.Config) (net.Conn, error) {
			return tls.DialWithDialer(dialer, network, addr, cfg)
		},
		IdleConnTimeout:  IdleConnTimeout,
		ReadIdleTimeout:  15 * time.Second,
		PingTimeout:      5 * time.Second,
		WriteByteTimeout: 5 * time.Second,
	}
}

func Dialer() *net.Dialer {
	return &net.Dialer{Timeout: DialTimeout, KeepAlive: KeepAlive}
}
