package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.yaml.in/yaml/v2"

	"github.com/utkarsh5026/servertls/pkg/conf"
	"github.com/utkarsh5026/servertls/pkg/transport"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func createTestTLSConfig() *conf.TLSConfig {
	return &conf.TLSConfig{
		MinVersion:  "1.1",
		PeerName:    strPtr("client.example.com"),
		VerifyPeer:  true,
		VerifyDepth: intPtr(3),
		Ciphers:     "ECDHE-RSA-AES128-GCM-SHA256",
		CAFile:      "/etc/ssl/ca.pem",
		CAPath:      "/etc/ssl/certs",
		CapturePeer: true,
		DefaultCertificate: &conf.CertificateConfig{
			CertFile: "/etc/ssl/default.pem",
		},
		Certificates: []conf.CertificateConfig{
			{CertFile: "/etc/ssl/a.pem"},
			{CertFile: "/etc/ssl/b.crt", KeyFile: "/etc/ssl/b.key"},
		},
	}
}

func TestNewServerContext(t *testing.T) {
	t.Run("all settings", func(t *testing.T) {
		ctx, err := NewServerContext("", createTestTLSConfig())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if ctx.MinimumVersion() != transport.VersionTLS11 {
			t.Errorf("expected TLSv1.1, got %s", ctx.MinimumVersion())
		}
		if name, _ := ctx.PeerName(); name != "client.example.com" {
			t.Errorf("expected peer name client.example.com, got %q", name)
		}
		if !ctx.HasPeerVerification() || !ctx.HasPeerCapturing() {
			t.Error("expected verification and capturing to be enabled")
		}
		if ctx.VerificationDepth() != 3 {
			t.Errorf("expected depth 3, got %d", ctx.VerificationDepth())
		}
		if ctx.Ciphers() != "ECDHE-RSA-AES128-GCM-SHA256" {
			t.Errorf("unexpected ciphers %q", ctx.Ciphers())
		}
		if ctx.DefaultCertificate() == nil || !ctx.DefaultCertificate().IsCombined() {
			t.Errorf("expected combined default certificate, got %v", ctx.DefaultCertificate())
		}

		certs := ctx.Certificates()
		if len(certs) != 2 || certs[0].CertFile() != "/etc/ssl/a.pem" || certs[1].KeyFile() != "/etc/ssl/b.key" {
			t.Errorf("unexpected certificates %v", certs)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		ctx, err := NewServerContext("openssl", &conf.TLSConfig{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if ctx.MinimumVersion() != transport.VersionTLS10 || ctx.VerificationDepth() != 10 {
			t.Errorf("expected defaults, got %s depth %d", ctx.MinimumVersion(), ctx.VerificationDepth())
		}
		if _, ok := ctx.PeerName(); ok {
			t.Error("expected no peer name")
		}
		if ctx.Ciphers() != transport.DefaultCiphers {
			t.Error("expected default ciphers")
		}
	})

	t.Run("leaves version warnings to the binding", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
		t.Cleanup(func() { slog.SetDefault(prev) })

		ctx, err := NewServerContext("", &conf.TLSConfig{MinVersion: "1.0"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ctx.MinimumVersion() != transport.VersionTLS10 {
			t.Errorf("expected TLSv1.0, got %s", ctx.MinimumVersion())
		}
		if strings.Contains(buf.String(), "below 1.2") {
			t.Errorf("expected no version warning from conversion, got:\n%s", buf.String())
		}
	})

	t.Run("zero value default certificate", func(t *testing.T) {
		_, err := NewServerContext("", &conf.TLSConfig{DefaultCertificate: &conf.CertificateConfig{}})
		if !errors.Is(err, transport.ErrInvalidCertificate) {
			t.Fatalf("expected ErrInvalidCertificate, got %v", err)
		}
	})

	t.Run("nil config", func(t *testing.T) {
		if _, err := NewServerContext("", nil); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("unknown engine", func(t *testing.T) {
		if _, err := NewServerContext("gnutls", &conf.TLSConfig{}); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("invalid min version", func(t *testing.T) {
		_, err := NewServerContext("", &conf.TLSConfig{MinVersion: "1.3"})
		if !errors.Is(err, transport.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("negative depth", func(t *testing.T) {
		_, err := NewServerContext("", &conf.TLSConfig{VerifyDepth: intPtr(-1)})
		if !errors.Is(err, transport.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("split certificate on legacy engine", func(t *testing.T) {
		_, err := NewServerContext("legacy", createTestTLSConfig())
		if !errors.Is(err, transport.ErrUnsupportedEnvironment) {
			t.Fatalf("expected ErrUnsupportedEnvironment, got %v", err)
		}
	})

	t.Run("certificate without cert file", func(t *testing.T) {
		_, err := NewServerContext("", &conf.TLSConfig{Certificates: []conf.CertificateConfig{{KeyFile: "/k.pem"}}})
		if !errors.Is(err, transport.ErrInvalidCertificate) {
			t.Fatalf("expected ErrInvalidCertificate, got %v", err)
		}
	})
}

func createTestConfigs() []*conf.Config {
	return []*conf.Config{
		{Contexts: []conf.ContextConfig{
			{Name: "public", TLS: *createTestTLSConfig()},
		}},
		{Contexts: []conf.ContextConfig{
			{Name: "internal", TLS: conf.TLSConfig{MinVersion: "1.2"}},
		}},
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatYAML, createTestConfigs()...); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	out := buf.String()
	if strings.Index(out, "public:") > strings.Index(out, "internal:") {
		t.Errorf("expected contexts in configuration order, got:\n%s", out)
	}

	var doc map[string]map[string]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}

	public := doc["public"]["ssl"]
	if public["crypto_method"] != 48 {
		t.Errorf("expected crypto_method 48, got %v", public["crypto_method"])
	}
	if public["local_cert"] != "/etc/ssl/default.pem" {
		t.Errorf("expected local_cert, got %v", public["local_cert"])
	}
	if _, ok := public["local_pk"]; ok {
		t.Error("expected local_pk to be omitted for a combined file")
	}

	sni, ok := public["sni_server_certs"].([]any)
	if !ok || len(sni) != 2 {
		t.Fatalf("expected two sni entries, got %v", public["sni_server_certs"])
	}
	if sni[0] != "/etc/ssl/a.pem" {
		t.Errorf("expected bare path first, got %v", sni[0])
	}

	internal := doc["internal"]["ssl"]
	if internal["crypto_method"] != 32 {
		t.Errorf("expected crypto_method 32, got %v", internal["crypto_method"])
	}
	if internal["peer_name"] != nil {
		t.Errorf("expected null peer_name, got %v", internal["peer_name"])
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, createTestConfigs()...); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var doc map[string]map[string]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}

	public := doc["public"]["ssl"]
	if public["crypto_method"] != float64(48) {
		t.Errorf("expected crypto_method 48, got %v", public["crypto_method"])
	}
	if public["verify_peer"] != true || public["verify_peer_name"] != true {
		t.Error("expected verify flags to be true")
	}
	if public["honor_cipher_order"] != true || public["single_dh_use"] != true || public["no_ticket"] != true {
		t.Error("expected hardening flags to be set")
	}

	pair, ok := public["sni_server_certs"].([]any)[1].(map[string]any)
	if !ok {
		t.Fatalf("expected key pair entry, got %T", public["sni_server_certs"].([]any)[1])
	}
	if pair["local_cert"] != "/etc/ssl/b.crt" || pair["local_pk"] != "/etc/ssl/b.key" {
		t.Errorf("unexpected pair %v", pair)
	}
}

func TestRenderErrors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		if err := Render(&bytes.Buffer{}, "toml", createTestConfigs()...); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("duplicate context across files", func(t *testing.T) {
		cfgs := append(createTestConfigs(), &conf.Config{Contexts: []conf.ContextConfig{{Name: "public"}}})
		err := Render(&bytes.Buffer{}, FormatYAML, cfgs...)
		if err == nil || !strings.Contains(err.Error(), "public") {
			t.Fatalf("expected duplicate context error, got %v", err)
		}
	})

	t.Run("invalid context", func(t *testing.T) {
		cfg := &conf.Config{Contexts: []conf.ContextConfig{{Name: "bad", TLS: conf.TLSConfig{MinVersion: "0.9"}}}}
		if err := Render(&bytes.Buffer{}, FormatJSON, cfg); err == nil {
			t.Fatal("expected an error")
		}
	})
}
