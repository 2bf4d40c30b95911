package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// opensslCipherSuites maps OpenSSL cipher names to crypto/tls suites.
// Names without a Go implementation (DHE, static CBC3 etc.) are absent.
var opensslCipherSuites = map[string]uint16{
	"ECDHE-RSA-AES128-GCM-SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"ECDHE-RSA-AES256-GCM-SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"ECDHE-ECDSA-AES128-GCM-SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"ECDHE-ECDSA-AES256-GCM-SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"ECDHE-RSA-CHACHA20-POLY1305":   tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"ECDHE-ECDSA-CHACHA20-POLY1305": tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	"ECDHE-RSA-AES128-SHA256":       tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256,
	"ECDHE-ECDSA-AES128-SHA256":     tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256,
	"ECDHE-RSA-AES128-SHA":          tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
	"ECDHE-RSA-AES256-SHA":          tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
	"ECDHE-ECDSA-AES128-SHA":        tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
	"ECDHE-ECDSA-AES256-SHA":        tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
	"ECDHE-RSA-DES-CBC3-SHA":        tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA,

	"AES128-GCM-SHA256": tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
	"AES256-GCM-SHA384": tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	"AES128-SHA256":     tls.TLS_RSA_WITH_AES_128_CBC_SHA256,
	"AES128-SHA":        tls.TLS_RSA_WITH_AES_128_CBC_SHA,
	"AES256-SHA":        tls.TLS_RSA_WITH_AES_256_CBC_SHA,
	"DES-CBC3-SHA":      tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA,
}

// ParseCipherList converts an OpenSSL cipher list to crypto/tls suite ids.
// Exclusions ("!DSS"), keywords and ciphers Go does not implement are
// skipped. A nil result means the crypto/tls defaults apply.
func ParseCipherList(list string) []uint16 {
	var suites []uint16
	for _, name := range strings.FieldsFunc(list, func(r rune) bool {
		return r == ':' || r == ',' || r == ' '
	}) {
		suite, ok := opensslCipherSuites[name]
		if !ok {
			slog.Debug("skipping cipher not supported by crypto/tls", "cipher", name)
			continue
		}
		suites = append(suites, suite)
	}
	return suites
}

// StdOption customizes the crypto/tls binding built by NewStdConfig.
type StdOption func(*tls.Config)

// WithNextProtos sets the ALPN protocols offered during the handshake.
// Without it no protocol is negotiated.
func WithNextProtos(protos ...string) StdOption {
	return func(cfg *tls.Config) {
		cfg.NextProtos = slices.Clone(protos)
	}
}

// NewStdConfig binds a ServerContext to crypto/tls. CA material is read
// immediately; certificate key pairs are loaded on the first handshake.
func NewStdConfig(c ServerContext, opts ...StdOption) (*tls.Config, error) {
	if c.minVersion < VersionTLS12 {
		slog.Warn("TLS versions below 1.2 are considered insecure and not recommended",
			"min_version", c.minVersion)
	}

	cfg := &tls.Config{
		MinVersion:               c.minVersion.StdVersion(),
		CipherSuites:             ParseCipherList(c.Ciphers()),
		PreferServerCipherSuites: true,
		SessionTicketsDisabled:   true,
		ClientAuth:               tls.NoClientCert,
		Renegotiation:            tls.RenegotiateNever,
	}

	if c.verifyPeer {
		pool, err := loadCAPool(c)
		if err != nil {
			return nil, err
		}

		cfg.ClientAuth = tls.VerifyClientCertIfGiven
		cfg.ClientCAs = pool
		cfg.VerifyConnection = verifyConnection(c)
	}

	if c.defaultCertificate != nil || len(c.certificates) > 0 {
		store := newCertStore(c.defaultCertificate, c.certificates)
		cfg.GetCertificate = store.GetCertificate
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg, nil
}

func verifyConnection(c ServerContext) func(tls.ConnectionState) error {
	depth := c.verifyDepth
	peerName, hasPeerName := c.PeerName()

	return func(cs tls.ConnectionState) error {
		for _, chain := range cs.VerifiedChains {
			// the leaf sits at depth 0
			if len(chain)-1 > depth {
				return fmt.Errorf("peer certificate chain depth %d exceeds limit %d", len(chain)-1, depth)
			}
		}

		if hasPeerName && peerName != "" && len(cs.PeerCertificates) > 0 {
			if err := cs.PeerCertificates[0].VerifyHostname(peerName); err != nil {
				return fmt.Errorf("peer name mismatch: %w", err)
			}
		}
		return nil
	}
}

func loadCAPool(c ServerContext) (*x509.CertPool, error) {
	caFile, hasFile := c.CAFile()
	caPath, hasPath := c.CAPath()
	if !hasFile && !hasPath {
		return x509.SystemCertPool()
	}

	pool := x509.NewCertPool()
	files := make([]string, 0, 1)
	if hasFile {
		files = append(files, caFile)
	}

	if hasPath {
		for _, pattern := range []string{"*.pem", "*.crt"} {
			matches, err := filepath.Glob(filepath.Join(caPath, pattern))
			if err != nil {
				return nil, fmt.Errorf("failed to scan CA path %s: %w", caPath, err)
			}
			files = append(files, matches...)
		}
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}

		if !pool.AppendCertsFromPEM(data) {
			return nil, fmt.Errorf("no certificates found in CA file %s", file)
		}
	}

	return pool, nil
}

type loadedCerts struct {
	def *tls.Certificate
	sni []*tls.Certificate
}

// certStore resolves the certificate for a handshake. Key pairs are read
// on first use; a failed read is retried on the next handshake.
type certStore struct {
	def *Certificate
	sni []Certificate

	mu     sync.Mutex
	loaded *loadedCerts
}

func newCertStore(def *Certificate, sni []Certificate) *certStore {
	s := &certStore{sni: slices.Clone(sni)}
	if def != nil {
		clone := *def
		s.def = &clone
	}
	return s
}

func (s *certStore) load() (*loadedCerts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded != nil {
		return s.loaded, nil
	}

	loaded, err := loadCertificates(s.def, s.sni)
	if err != nil {
		return nil, err
	}

	s.loaded = loaded
	return loaded, nil
}

func loadCertificates(def *Certificate, sni []Certificate) (*loadedCerts, error) {
	loaded := &loadedCerts{sni: make([]*tls.Certificate, 0, len(sni))}
	if def != nil {
		cert, err := loadCertificate(*def)
		if err != nil {
			return nil, err
		}
		loaded.def = cert
	}

	for _, c := range sni {
		cert, err := loadCertificate(c)
		if err != nil {
			return nil, err
		}
		loaded.sni = append(loaded.sni, cert)
	}

	slog.Info("Loaded TLS certificates", "default", loaded.def != nil, "sni", len(loaded.sni))
	return loaded, nil
}

func loadCertificate(cert Certificate) (*tls.Certificate, error) {
	tlsCert, err := tls.LoadX509KeyPair(cert.CertFile(), cert.KeyFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair %s: %w", cert, err)
	}

	if tlsCert.Leaf == nil {
		leaf, err := x509.ParseCertificate(tlsCert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse x509 certificate %s: %w", cert.CertFile(), err)
		}
		tlsCert.Leaf = leaf
	}

	return &tlsCert, nil
}

// GetCertificate implements tls.Config.GetCertificate. An SNI certificate
// valid for the requested server name wins, then the default certificate,
// then the first SNI certificate.
func (s *certStore) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	loaded, err := s.load()
	if err != nil {
		return nil, err
	}

	if hello.ServerName != "" {
		for _, cert := range loaded.sni {
			if cert.Leaf.VerifyHostname(hello.ServerName) == nil {
				return cert, nil
			}
		}
	}

	if loaded.def != nil {
		return loaded.def, nil
	}

	if len(loaded.sni) > 0 {
		return loaded.sni[0], nil
	}

	return nil, fmt.Errorf("no certificate available for %q", hello.ServerName)
}
