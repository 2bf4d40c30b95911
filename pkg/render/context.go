package render

import (
	"fmt"

	"github.com/utkarsh5026/servertls/pkg/conf"
	"github.com/utkarsh5026/servertls/pkg/transport"
)

// NewServerContext converts a TLS configuration block into a ServerContext.
// Every setting goes through the context's With* methods, so the
// configuration is subject to the same validation as code.
func NewServerContext(engineName string, cfg *conf.TLSConfig) (transport.ServerContext, error) {
	if cfg == nil {
		return transport.ServerContext{}, fmt.Errorf("TLS config is nil")
	}

	ctx, err := applyTLSConfig(engineName, cfg)
	if err != nil {
		return transport.ServerContext{}, err
	}

	return ctx, nil
}

func applyTLSConfig(engineName string, cfg *conf.TLSConfig) (transport.ServerContext, error) {
	ctx := transport.NewServerContext()

	engine, ok := transport.LookupEngine(engineName)
	if !ok {
		return ctx, fmt.Errorf("unknown engine '%s'", engineName)
	}

	ctx, err := ctx.WithEngine(engine)
	if err != nil {
		return ctx, err
	}

	if cfg.MinVersion != "" {
		minVer, err := transport.ParseTLSVersion(cfg.MinVersion)
		if err != nil {
			return ctx, fmt.Errorf("invalid min_version '%s': %w", cfg.MinVersion, err)
		}

		if ctx, err = ctx.WithMinimumVersion(minVer); err != nil {
			return ctx, err
		}
	}

	if cfg.PeerName != nil {
		ctx = ctx.WithPeerName(*cfg.PeerName)
	}

	if cfg.VerifyPeer {
		ctx = ctx.WithPeerVerification()
	}

	if cfg.VerifyDepth != nil {
		if ctx, err = ctx.WithVerificationDepth(*cfg.VerifyDepth); err != nil {
			return ctx, fmt.Errorf("invalid verify_depth: %w", err)
		}
	}

	if cfg.Ciphers != "" {
		ctx = ctx.WithCiphers(cfg.Ciphers)
	}

	if cfg.CAFile != "" {
		ctx = ctx.WithCAFile(cfg.CAFile)
	}

	if cfg.CAPath != "" {
		ctx = ctx.WithCAPath(cfg.CAPath)
	}

	if cfg.CapturePeer {
		ctx = ctx.WithPeerCapturing()
	}

	if cfg.DefaultCertificate != nil {
		cert, err := newCertificate(cfg.DefaultCertificate)
		if err != nil {
			return ctx, fmt.Errorf("invalid default_certificate: %w", err)
		}
		if ctx, err = ctx.WithDefaultCertificate(&cert); err != nil {
			return ctx, fmt.Errorf("invalid default_certificate: %w", err)
		}
	}

	if len(cfg.Certificates) > 0 {
		certs := make([]transport.Certificate, 0, len(cfg.Certificates))
		for i, certCfg := range cfg.Certificates {
			cert, err := newCertificate(&certCfg)
			if err != nil {
				return ctx, fmt.Errorf("invalid certificate %d: %w", i, err)
			}
			certs = append(certs, cert)
		}

		if ctx, err = ctx.WithCertificates(certs...); err != nil {
			return ctx, fmt.Errorf("invalid certificates: %w", err)
		}
	}

	return ctx, nil
}

func newCertificate(cfg *conf.CertificateConfig) (transport.Certificate, error) {
	return transport.NewCertificate(cfg.CertFile, cfg.KeyFile)
}
