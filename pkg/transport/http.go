package transport

import (
	"fmt"
	"net/http"

	"golang.org/x/net/http2"
)

// NewHTTPServer returns an *http.Server whose TLS settings come from c and
// which negotiates HTTP/2 over ALPN. The server is not started; callers use
// ListenAndServeTLS("", "") or ServeTLS with their own listener.
func NewHTTPServer(c ServerContext, handler http.Handler, opts ...StdOption) (*http.Server, error) {
	tlsConfig, err := NewStdConfig(c, opts...)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:   handler,
		TLSConfig: tlsConfig,
	}

	if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
		return nil, fmt.Errorf("failed to configure HTTP/2: %w", err)
	}

	return srv, nil
}
