// Package config defines core configuration types for sketchdiag.
// These types are pure data structures with no dependency on how they are loaded.
package config

import "time"

// OutputFormat specifies the output format for problems.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid returns true if the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// ColorMode controls colored output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsValid returns true if the color mode is known.
func (c ColorMode) IsValid() bool {
	switch c {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	default:
		return false
	}
}

// DefaultCallbackTimeout is the default bound on waiting for result callbacks.
const DefaultCallbackTimeout = 3 * time.Second

// ModeConfig locates the editor mode.
type ModeConfig struct {
	// Dir is the mode directory. Empty means the built-in mode with the
	// runtime taken from JAVA_HOME.
	Dir string `yaml:"dir"`

	// Descriptor is the descriptor file name inside Dir.
	Descriptor string `yaml:"descriptor"`
}

// SketchbookConfig describes the user's sketchbook.
type SketchbookConfig struct {
	// Libraries are folders of contributed libraries.
	Libraries []string `yaml:"libraries"`
}

// ServiceConfig tunes the preprocessing service.
type ServiceConfig struct {
	// CallbackTimeout bounds the wait for the previous batch of callbacks.
	CallbackTimeout time.Duration `yaml:"callback_timeout"`

	// AnalysisEnabled starts the service with analysis on. Nil means on.
	AnalysisEnabled *bool `yaml:"analysis_enabled"`

	// Debounce delays change notifications in watch mode.
	Debounce time.Duration `yaml:"debounce"`
}

// CacheConfig controls the on-disk package index cache.
type CacheConfig struct {
	// Enabled is a pointer so a config file can turn the cache off.
	Enabled *bool `yaml:"enabled"`

	// Dir overrides $XDG_CACHE_HOME/sketchdiag.
	Dir string `yaml:"dir"`
}

// Config is the root configuration structure for sketchdiag.
type Config struct {
	Mode       ModeConfig       `yaml:"mode"`
	Sketchbook SketchbookConfig `yaml:"sketchbook"`
	Service    ServiceConfig    `yaml:"service"`
	Cache      CacheConfig      `yaml:"cache"`

	// Ignore contains glob patterns for sketch folders to skip in batch mode.
	Ignore []string `yaml:"ignore"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of sketches checked in parallel.
	Jobs int `yaml:"-"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"-"`

	// Color controls colored output.
	Color ColorMode `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	enabled := true
	cacheEnabled := true
	return &Config{
		Mode: ModeConfig{Descriptor: "mode.toml"},
		Service: ServiceConfig{
			CallbackTimeout: DefaultCallbackTimeout,
			AnalysisEnabled: &enabled,
			Debounce:        200 * time.Millisecond,
		},
		Cache:    CacheConfig{Enabled: &cacheEnabled},
		Format:   FormatText,
		LogLevel: "info",
		Color:    ColorAuto,
		Jobs:     0, // 0 means use GOMAXPROCS
	}
}

// AnalysisOn reports whether analysis starts enabled.
func (c *Config) AnalysisOn() bool {
	return c.Service.AnalysisEnabled == nil || *c.Service.AnalysisEnabled
}

// CacheOn reports whether the package index cache is used.
func (c *Config) CacheOn() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}
