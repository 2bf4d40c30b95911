package transport

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// writeSelfSigned generates a self-signed certificate for domains and writes
// it under dir. With combined set, the key is appended to the certificate file.
func writeSelfSigned(t *testing.T, dir, name string, domains []string, combined bool) Certificate {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate private key: %v", err)
	}

	serialNum, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("failed to generate serial number: %v", err)
	}

	start := time.Now().Add(-time.Hour)
	template := x509.Certificate{
		SerialNumber: serialNum,
		Subject: pkix.Name{
			Organization: []string{"servertls test"},
			CommonName:   domains[0],
		},
		NotBefore:             start,
		NotAfter:              start.Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              domains,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)})

	certFile := filepath.Join(dir, name+".crt")
	if combined {
		certFile = filepath.Join(dir, name+".pem")
		if err := os.WriteFile(certFile, append(certPEM, keyPEM...), 0o600); err != nil {
			t.Fatalf("failed to write combined pem: %v", err)
		}
		return mustCertificate(t, certFile, "")
	}

	keyFile := filepath.Join(dir, name+".key")

	var g errgroup.Group
	g.Go(func() error { return os.WriteFile(certFile, certPEM, 0o600) })
	g.Go(func() error { return os.WriteFile(keyFile, keyPEM, 0o600) })
	if err := g.Wait(); err != nil {
		t.Fatalf("failed to save certificate or key: %v", err)
	}

	return mustCertificate(t, certFile, keyFile)
}

func mustCertificate(t *testing.T, certFile, keyFile string) Certificate {
	t.Helper()

	cert, err := NewCertificate(certFile, keyFile)
	if err != nil {
		t.Fatalf("NewCertificate(%q, %q): %v", certFile, keyFile, err)
	}
	return cert
}

func mustContext(t *testing.T) func(ServerContext, error) ServerContext {
	return func(c ServerContext, err error) ServerContext {
		t.Helper()

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		return c
	}
}

// captureLogs routes the default slog logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}
