package conf

// TLSConfig represents the TLS settings of one server context
type TLSConfig struct {
	// MinVersion minimum TLS version: "1.0", "1.1" or "1.2" (default "1.0")
	MinVersion string `yaml:"min_version,omitempty"`

	// PeerName is the name expected in the peer certificate
	PeerName *string `yaml:"peer_name,omitempty"`

	// VerifyPeer enables verification of the peer certificate and name
	VerifyPeer bool `yaml:"verify_peer"`

	// VerifyDepth is the maximum certificate chain depth (default 10)
	VerifyDepth *int `yaml:"verify_depth,omitempty"`

	// Ciphers is an OpenSSL cipher list (empty = engine default)
	Ciphers string `yaml:"ciphers,omitempty"`

	// CAFile path to a PEM bundle of trusted certificates
	CAFile string `yaml:"ca_file,omitempty"`

	// CAPath path to a directory of trusted certificates
	CAPath string `yaml:"ca_path,omitempty"`

	// CapturePeer keeps the peer certificate and chain after the handshake
	CapturePeer bool `yaml:"capture_peer"`

	// DefaultCertificate is served when no SNI certificate matches
	DefaultCertificate *CertificateConfig `yaml:"default_certificate,omitempty"`

	// Certificates is the list of certificates selectable by SNI name
	Certificates []CertificateConfig `yaml:"certificates,omitempty"`
}

// CertificateConfig represents a single certificate configuration
type CertificateConfig struct {
	// CertFile path to certificate file
	CertFile string `yaml:"cert_file"`

	// KeyFile path to private key file (empty = key is in cert_file)
	KeyFile string `yaml:"key_file,omitempty"`
}
