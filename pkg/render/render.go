package render

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v2"

	"github.com/utkarsh5026/servertls/pkg/conf"
	"github.com/utkarsh5026/servertls/pkg/transport"
)

// Output formats accepted by Render
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// NamedContext is a rendered server context
type NamedContext struct {
	Name    string
	Source  string
	Context transport.ServerContext
}

// Contexts builds the server contexts of every configuration in order.
// Context names must be unique across all configurations.
func Contexts(cfgs ...*conf.Config) ([]NamedContext, error) {
	var out []NamedContext
	seen := make(map[string]string)

	for _, cfg := range cfgs {
		for _, ctxCfg := range cfg.Contexts {
			if src, dup := seen[ctxCfg.Name]; dup {
				return nil, fmt.Errorf("context %s defined in both %s and %s", ctxCfg.Name, src, cfg.Source())
			}
			seen[ctxCfg.Name] = cfg.Source()

			ctx, err := NewServerContext(cfg.Engine, &ctxCfg.TLS)
			if err != nil {
				return nil, fmt.Errorf("context %s: %w", ctxCfg.Name, err)
			}

			out = append(out, NamedContext{Name: ctxCfg.Name, Source: cfg.Source(), Context: ctx})
		}
	}

	return out, nil
}

// Render writes the stream context of every configured server context to w,
// keyed by context name.
func Render(w io.Writer, format string, cfgs ...*conf.Config) error {
	contexts, err := Contexts(cfgs...)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML, "":
		doc := make(yaml.MapSlice, 0, len(contexts))
		for _, c := range contexts {
			doc = append(doc, yaml.MapItem{Key: c.Name, Value: c.Context.StreamContext()})
		}

		data, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}

		_, err = w.Write(data)
		return err

	case FormatJSON:
		doc := make(map[string]transport.StreamContext, len(contexts))
		for _, c := range contexts {
			doc[c.Name] = c.Context.StreamContext()
		}

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	default:
		return fmt.Errorf("unsupported format: %s (must be 'yaml' or 'json')", format)
	}
}
