package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every key. If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return []byte(fullTemplate), nil
	}
	return []byte(minimalTemplate), nil
}

const minimalTemplate = `# sketchdiag configuration

# Editor mode directory holding mode.toml. Leave empty to use JAVA_HOME.
# mode:
#   dir: /opt/processing/modes/java

# Contributed library folders
# sketchbook:
#   libraries:
#     - ~/sketchbook/libraries
`

const fullTemplate = `# sketchdiag configuration - Full Template
#
# Uncomment and modify settings as needed.

# Editor mode. The descriptor lists the runtime, the bundled core
# libraries, the mode library folders, and the default imports.
mode:
  dir: ""
  descriptor: mode.toml

# Contributed libraries, laid out as <folder>/<library>/library/*.jar
sketchbook:
  libraries: []

# Preprocessing service
service:
  # How long a batch of result callbacks may wait for the previous batch
  callback_timeout: 3s
  # Start with analysis on
  analysis_enabled: true
  # Quiet period after a file event before a pass is queued (watch only)
  debounce: 200ms

# On-disk cache of package listings per classpath entry
cache:
  enabled: true
  # dir: ~/.cache/sketchdiag

# Sketch folders to skip when checking a directory tree (glob patterns)
ignore:
  - ".git/**"
`

// templateToJSON renders the defaults as JSON.
func templateToJSON() ([]byte, error) {
	cfg := NewConfig()
	doc := map[string]any{
		"mode": map[string]any{
			"dir":        cfg.Mode.Dir,
			"descriptor": cfg.Mode.Descriptor,
		},
		"sketchbook": map[string]any{"libraries": []string{}},
		"service": map[string]any{
			"callback_timeout": cfg.Service.CallbackTimeout.String(),
			"analysis_enabled": cfg.AnalysisOn(),
			"debounce":         cfg.Service.Debounce.String(),
		},
		"cache":  map[string]any{"enabled": cfg.CacheOn()},
		"ignore": []string{".git/**"},
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# sketchdiag configuration`
}
