package transport

import (
	"fmt"
)

// Certificate names the files holding a server identity. The certificate and
// the private key may live in one combined PEM file or in two files.
// Only NewCertificate builds a valid Certificate; the zero value is rejected
// wherever a certificate is required.
type Certificate struct {
	certFile string
	keyFile  string
}

// NewCertificate returns a Certificate for the given files. An empty keyFile
// means the key is stored in certFile.
func NewCertificate(certFile, keyFile string) (Certificate, error) {
	if certFile == "" {
		return Certificate{}, fmt.Errorf("%w: certificate file is required", ErrInvalidCertificate)
	}

	if keyFile == "" {
		keyFile = certFile
	}

	return Certificate{certFile: certFile, keyFile: keyFile}, nil
}

// CertFile returns the path of the certificate file
func (c Certificate) CertFile() string { return c.certFile }

// KeyFile returns the path of the private key file
func (c Certificate) KeyFile() string { return c.keyFile }

// IsCombined reports whether the certificate and key share one file.
func (c Certificate) IsCombined() bool {
	return c.certFile == c.keyFile
}

func (c Certificate) validate() error {
	if c.certFile == "" || c.keyFile == "" {
		return fmt.Errorf("%w: certificate was not built with NewCertificate", ErrInvalidCertificate)
	}
	return nil
}

func (c Certificate) String() string {
	if c.IsCombined() {
		return c.certFile
	}
	return c.certFile + "+" + c.keyFile
}
