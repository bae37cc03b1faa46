package configloader

import "github.com/yaklabco/sketchdiag/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Pointer booleans: override wins whenever it is non-nil
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Mode.Dir != "" {
		result.Mode.Dir = override.Mode.Dir
	}
	if override.Mode.Descriptor != "" {
		result.Mode.Descriptor = override.Mode.Descriptor
	}
	if override.Sketchbook.Libraries != nil {
		result.Sketchbook.Libraries = override.Sketchbook.Libraries
	}

	if override.Service.CallbackTimeout != 0 {
		result.Service.CallbackTimeout = override.Service.CallbackTimeout
	}
	if override.Service.Debounce != 0 {
		result.Service.Debounce = override.Service.Debounce
	}
	if override.Service.AnalysisEnabled != nil {
		result.Service.AnalysisEnabled = override.Service.AnalysisEnabled
	}

	if override.Cache.Enabled != nil {
		result.Cache.Enabled = override.Cache.Enabled
	}
	if override.Cache.Dir != "" {
		result.Cache.Dir = override.Cache.Dir
	}

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Color != "" {
		result.Color = override.Color
	}

	return &result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
