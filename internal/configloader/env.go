package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/sketchdiag/pkg/config"
)

// envVarPrefix is the prefix for all sketchdiag environment variables.
const envVarPrefix = "SKETCHDIAG_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeDuration
	envTypeSlice
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field string
	typ   envFieldType
	help  string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"MODE_DIR":                 {"mode.dir", envTypeString, "Editor mode directory holding mode.toml"},
	"MODE_DESCRIPTOR":          {"mode.descriptor", envTypeString, "Mode descriptor file name"},
	"SKETCHBOOK_LIBRARIES":     {"sketchbook.libraries", envTypeSlice, "Comma-separated contributed library folders"},
	"SERVICE_CALLBACK_TIMEOUT": {"service.callback_timeout", envTypeDuration, "Bound on waiting for result callbacks (e.g. 3s)"},
	"SERVICE_DEBOUNCE":         {"service.debounce", envTypeDuration, "Quiet period before a pass in watch mode"},
	"ANALYSIS_ENABLED":         {"service.analysis_enabled", envTypeBool, "Start with analysis on: true or false"},
	"CACHE_ENABLED":            {"cache.enabled", envTypeBool, "Use the package index cache: true or false"},
	"CACHE_DIR":                {"cache.dir", envTypeString, "Package index cache directory"},
	"IGNORE":                   {"ignore", envTypeSlice, "Comma-separated list of ignore patterns"},
	"FORMAT":                   {"format", envTypeString, "Output format: text or json"},
	"JOBS":                     {"jobs", envTypeInt, "Number of sketches checked in parallel (0 = auto)"},
	"LOG_LEVEL":                {"log_level", envTypeString, "Log level: debug, info, warn, or error"},
	"COLOR":                    {"color", envTypeString, "Color output: auto, always, or never"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with SKETCHDIAG_ (e.g., SKETCHDIAG_MODE_DIR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	case envTypeDuration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", envVar, value)
		}
		return setDurationField(cfg, mapping.field, d)
	case envTypeSlice:
		return setSliceField(cfg, mapping.field, parseSliceValue(value))
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "mode.dir":
		cfg.Mode.Dir = value
	case "mode.descriptor":
		cfg.Mode.Descriptor = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "log_level":
		cfg.LogLevel = value
	case "color":
		cfg.Color = config.ColorMode(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "service.analysis_enabled":
		cfg.Service.AnalysisEnabled = &value
	case "cache.enabled":
		cfg.Cache.Enabled = &value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "jobs":
		cfg.Jobs = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

func setDurationField(cfg *config.Config, field string, value time.Duration) error {
	switch field {
	case "service.callback_timeout":
		cfg.Service.CallbackTimeout = value
	case "service.debounce":
		cfg.Service.Debounce = value
	default:
		return fmt.Errorf("unknown duration field: %s", field)
	}
	return nil
}

func setSliceField(cfg *config.Config, field string, value []string) error {
	switch field {
	case "sketchbook.libraries":
		cfg.Sketchbook.Libraries = value
	case "ignore":
		cfg.Ignore = value
	default:
		return fmt.Errorf("unknown slice field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes one supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns all supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.help})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
