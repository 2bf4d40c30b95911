package transport

import (
	"fmt"
	"slices"
)

const defaultVerifyDepth = 10

// ServerContext holds the TLS parameters for server-side connections.
//
// A ServerContext is an immutable value: every With* and Without* method
// returns a modified copy and leaves the receiver untouched, so a context may
// be shared between goroutines without locking. Methods that validate their
// argument return an error and the unchanged receiver on failure.
type ServerContext struct {
	minVersion         Version
	peerName           *string
	verifyPeer         bool
	verifyDepth        int
	ciphers            *string
	caFile             *string
	caPath             *string
	capturePeer        bool
	defaultCertificate *Certificate
	certificates       []Certificate
	engine             Engine
}

// NewServerContext returns a context with default settings: TLS 1.0 and
// above, no peer verification, a verification depth of 10 and the engine's
// default cipher list.
func NewServerContext() ServerContext {
	return ServerContext{
		minVersion:  VersionTLS10,
		verifyDepth: defaultVerifyDepth,
		engine:      OpenSSLEngine,
	}
}

// WithMinimumVersion sets the lowest protocol version the server accepts.
func (c ServerContext) WithMinimumVersion(version Version) (ServerContext, error) {
	if !version.Valid() {
		return c, fmt.Errorf("%w: minimum version %s, only TLSv1.0, TLSv1.1 or TLSv1.2 allowed",
			ErrInvalidArgument, version)
	}

	c.minVersion = version
	return c, nil
}

func (c ServerContext) MinimumVersion() Version {
	return c.minVersion
}

// WithPeerName sets the name expected in the peer certificate.
func (c ServerContext) WithPeerName(peerName string) ServerContext {
	c.peerName = &peerName
	return c
}

func (c ServerContext) WithoutPeerName() ServerContext {
	c.peerName = nil
	return c
}

// PeerName returns the expected peer name and whether one is set.
func (c ServerContext) PeerName() (string, bool) {
	return deref(c.peerName)
}

func (c ServerContext) WithPeerVerification() ServerContext {
	c.verifyPeer = true
	return c
}

func (c ServerContext) WithoutPeerVerification() ServerContext {
	c.verifyPeer = false
	return c
}

func (c ServerContext) HasPeerVerification() bool {
	return c.verifyPeer
}

// WithVerificationDepth sets the maximum depth of a peer certificate chain.
func (c ServerContext) WithVerificationDepth(depth int) (ServerContext, error) {
	if depth < 0 {
		return c, fmt.Errorf("%w: verification depth (%d), must be greater than or equal to 0",
			ErrInvalidArgument, depth)
	}

	c.verifyDepth = depth
	return c, nil
}

func (c ServerContext) VerificationDepth() int {
	return c.verifyDepth
}

// WithCiphers sets an explicit cipher list in OpenSSL format.
func (c ServerContext) WithCiphers(ciphers string) ServerContext {
	c.ciphers = &ciphers
	return c
}

// WithoutCiphers drops the explicit cipher list; the engine default applies.
func (c ServerContext) WithoutCiphers() ServerContext {
	c.ciphers = nil
	return c
}

// Ciphers returns the effective cipher list.
func (c ServerContext) Ciphers() string {
	if c.ciphers != nil {
		return *c.ciphers
	}
	return c.engine.defaultCiphers()
}

func (c ServerContext) WithCAFile(caFile string) ServerContext {
	c.caFile = &caFile
	return c
}

func (c ServerContext) WithoutCAFile() ServerContext {
	c.caFile = nil
	return c
}

func (c ServerContext) CAFile() (string, bool) {
	return deref(c.caFile)
}

func (c ServerContext) WithCAPath(caPath string) ServerContext {
	c.caPath = &caPath
	return c
}

func (c ServerContext) WithoutCAPath() ServerContext {
	c.caPath = nil
	return c
}

func (c ServerContext) CAPath() (string, bool) {
	return deref(c.caPath)
}

// WithPeerCapturing asks the engine to keep the peer certificate and chain
// after the handshake.
func (c ServerContext) WithPeerCapturing() ServerContext {
	c.capturePeer = true
	return c
}

func (c ServerContext) WithoutPeerCapturing() ServerContext {
	c.capturePeer = false
	return c
}

func (c ServerContext) HasPeerCapturing() bool {
	return c.capturePeer
}

// WithDefaultCertificate sets the certificate used when no SNI certificate
// matches. A nil certificate clears it; a certificate not built by
// NewCertificate is rejected.
func (c ServerContext) WithDefaultCertificate(cert *Certificate) (ServerContext, error) {
	if cert == nil {
		c.defaultCertificate = nil
		return c, nil
	}

	if err := cert.validate(); err != nil {
		return c, fmt.Errorf("default certificate: %w", err)
	}

	clone := *cert
	c.defaultCertificate = &clone
	return c, nil
}

func (c ServerContext) DefaultCertificate() *Certificate {
	if c.defaultCertificate == nil {
		return nil
	}

	clone := *c.defaultCertificate
	return &clone
}

// WithCertificates replaces the certificates offered by SNI name. Order is
// kept and duplicates are not removed.
func (c ServerContext) WithCertificates(certs ...Certificate) (ServerContext, error) {
	if err := checkCertificates(c.engine, certs); err != nil {
		return c, err
	}

	c.certificates = slices.Clone(certs)
	return c, nil
}

// Certificates returns a copy of the SNI certificate list.
func (c ServerContext) Certificates() []Certificate {
	return slices.Clone(c.certificates)
}

// WithEngine selects the engine the context is rendered for. It fails if the
// current certificate list needs a capability the engine lacks.
func (c ServerContext) WithEngine(engine Engine) (ServerContext, error) {
	if err := checkCertificates(engine, c.certificates); err != nil {
		return c, err
	}

	c.engine = engine
	return c, nil
}

func (c ServerContext) Engine() Engine {
	return c.engine
}

// CryptoMethod returns the bitmask of protocol versions the server negotiates.
func (c ServerContext) CryptoMethod() CryptoMethod {
	return c.minVersion.CryptoMethod()
}

func checkCertificates(engine Engine, certs []Certificate) error {
	for i, cert := range certs {
		if err := cert.validate(); err != nil {
			return fmt.Errorf("certificate %d: %w", i, err)
		}

		if !engine.SplitKeyFiles && !cert.IsCombined() {
			return fmt.Errorf("certificate %d (%s): %w: engine %q cannot load a key from a separate file, use a combined PEM file",
				i, cert.CertFile(), ErrUnsupportedEnvironment, engine.Name)
		}
	}
	return nil
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
