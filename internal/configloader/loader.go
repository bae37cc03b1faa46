// Package configloader finds, layers, and validates sketchdiag configuration.
package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yaklabco/sketchdiag/pkg/config"
)

// LoadOptions controls which layers Load reads.
type LoadOptions struct {
	// WorkingDir is where the project config search starts. Empty means the
	// process working directory.
	WorkingDir string

	// ExplicitPath comes from --config.
	ExplicitPath string

	IgnoreSystemConfig  bool
	IgnoreUserConfig    bool
	IgnoreProjectConfig bool
	IgnoreEnv           bool

	// CLIConfig holds values set by flags. It wins over every other layer.
	CLIConfig *config.Config
}

// LoadResult is the merged configuration and where it came from.
type LoadResult struct {
	Config *config.Config
	Paths  *ConfigPaths

	// LoadedFrom lists the files read, lowest precedence first.
	LoadedFrom []string

	Warnings []string
}

type fileLayer struct {
	name string
	path string
	skip bool
}

// Load merges, from lowest to highest precedence: defaults, the system file,
// the user file, the nearest project file, the --config file, SKETCHDIAG_*
// variables, and flags.
//
// Relative folders inside a config file are taken relative to that file.
// When no layer names library folders, the enclosing sketchbook's libraries
// folder is used.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		workDir = wd
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.ExplicitPath

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	for _, layer := range []fileLayer{
		{"system", paths.System, opts.IgnoreSystemConfig},
		{"user", paths.User, opts.IgnoreUserConfig},
		{"project", paths.Project, opts.IgnoreProjectConfig},
		{"explicit", paths.Explicit, false},
	} {
		if layer.skip || layer.path == "" {
			continue
		}
		fileCfg, err := loadConfigFile(layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}
		if v := ValidateWithFile(fileCfg, layer.path); !v.Valid() {
			return nil, &v.Errors[0]
		}
		cfg = merge(cfg, fileCfg)
		result.LoadedFrom = append(result.LoadedFrom, layer.path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}
	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	if len(cfg.Sketchbook.Libraries) == 0 && paths.Sketchbook != "" {
		cfg.Sketchbook.Libraries = []string{filepath.Join(paths.Sketchbook, sketchbookLibraries)}
	}

	v := Validate(cfg)
	if !v.Valid() {
		return nil, &v.Errors[0]
	}
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile parses one YAML file and anchors its relative folders at
// the file's directory.
func loadConfigFile(path string) (*config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg, err := config.FromYAML(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	cfg.Mode.Dir = anchor(base, cfg.Mode.Dir)
	cfg.Cache.Dir = anchor(base, cfg.Cache.Dir)
	for i, dir := range cfg.Sketchbook.Libraries {
		cfg.Sketchbook.Libraries[i] = anchor(base, dir)
	}
	return cfg, nil
}

func anchor(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
