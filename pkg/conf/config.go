package conf

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.yaml.in/yaml/v2"
	"golang.org/x/net/idna"
	"golang.org/x/sync/errgroup"
)

var validMinVersions = map[string]bool{
	"":        true,
	"1.0":     true,
	"1.1":     true,
	"1.2":     true,
	"TLSv1.0": true,
	"TLSv1.1": true,
	"TLSv1.2": true,
}

var validEngines = map[string]bool{
	"":        true,
	"openssl": true,
	"legacy":  true,
}

type Config struct {
	// Engine the contexts are rendered for: "openssl" (default) or "legacy"
	Engine string `yaml:"engine,omitempty"`

	// Contexts are the named server TLS contexts
	Contexts []ContextConfig `yaml:"contexts"`

	// source is the file the configuration was read from
	source string
}

// ContextConfig is a named server TLS context
type ContextConfig struct {
	// Name identifies the context in rendered output
	Name string `yaml:"name"`

	// TLS settings of the context
	TLS TLSConfig `yaml:"tls"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	config.source = path

	return &config, nil
}

// LoadAll loads and validates every file concurrently. The result keeps the
// order of paths; the first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths ...string) ([]*Config, error) {
	configs := make([]*Config, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cfg, err := Load(path)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			slog.Debug("Configuration loaded", "path", path, "contexts", len(cfg.Contexts))
			configs[i] = cfg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return configs, nil
}

// Source returns the path the configuration was loaded from.
func (c *Config) Source() string {
	return c.source
}

func (c *Config) Validate() error {
	if !validEngines[c.Engine] {
		return fmt.Errorf("invalid engine: %s (must be 'openssl' or 'legacy')", c.Engine)
	}

	if len(c.Contexts) == 0 {
		return fmt.Errorf("at least one context must be configured")
	}

	seen := make(map[string]bool, len(c.Contexts))
	for i, ctx := range c.Contexts {
		if ctx.Name == "" {
			return fmt.Errorf("context %d has empty name", i)
		}

		if seen[ctx.Name] {
			return fmt.Errorf("duplicate context name: %s", ctx.Name)
		}
		seen[ctx.Name] = true

		if err := ctx.TLS.Validate(); err != nil {
			return fmt.Errorf("context %s: %w", ctx.Name, err)
		}
	}

	return nil
}

func (t *TLSConfig) Validate() error {
	if !validMinVersions[t.MinVersion] {
		return fmt.Errorf("invalid min_version: %s (must be '1.0', '1.1' or '1.2')", t.MinVersion)
	}

	if t.VerifyDepth != nil && *t.VerifyDepth < 0 {
		return fmt.Errorf("verify_depth must be greater than or equal to 0, got %d", *t.VerifyDepth)
	}

	if t.PeerName != nil && *t.PeerName != "" {
		if _, err := idna.Lookup.ToASCII(*t.PeerName); err != nil {
			return fmt.Errorf("invalid peer_name %q: %w", *t.PeerName, err)
		}
	}

	if t.DefaultCertificate != nil && t.DefaultCertificate.CertFile == "" {
		return fmt.Errorf("default_certificate: cert_file is required")
	}

	for i, cert := range t.Certificates {
		if cert.CertFile == "" {
			return fmt.Errorf("certificate %d: cert_file is required", i)
		}
	}

	return nil
}
