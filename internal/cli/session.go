package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sketchdiag/internal/configloader"
	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/config"
	"github.com/yaklabco/sketchdiag/pkg/parser/javasitter"
	"github.com/yaklabco/sketchdiag/pkg/runner"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

// errLoadConfig marks failures to read or merge configuration.
var errLoadConfig = errors.New("failed to load configuration")

// session is the environment every sketch command shares: the merged
// configuration, the logger, the listing cache, and a runner over them.
type session struct {
	ctx     context.Context
	workDir string
	cfg     *config.Config
	logger  *log.Logger
	cache   *classpath.DiskCache
	runner  *runner.Runner
}

// newSession loads configuration with cliCfg as the top layer and builds
// the runner environment from it.
func newSession(cmd *cobra.Command, cliCfg *config.Config) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default()

	if cliCfg == nil {
		cliCfg = &config.Config{}
	}
	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return nil, fmt.Errorf("get color flag: %w", err)
		}
		cliCfg.Color = config.ColorMode(color)
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, errors.Join(errLoadConfig, err)
	}
	cfg := loadResult.Config

	if debug, _ := cmd.Flags().GetBool("debug"); !debug {
		logging.SetLevel(cfg.LogLevel)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldConfig, loadResult.LoadedFrom)
	}

	mode := classpath.DefaultMode()
	if cfg.Mode.Dir != "" {
		mode, err = classpath.LoadMode(cfg.Mode.Dir, cfg.Mode.Descriptor)
		if err != nil {
			return nil, errors.Join(errLoadConfig, err)
		}
	}

	var cache *classpath.DiskCache
	if cfg.CacheOn() {
		cache, err = classpath.OpenDiskCache("sketchdiag", cfg.Cache.Dir)
		if err != nil {
			logger.Warn("listing cache unavailable", logging.FieldError, err)
			cache = nil
		}
	}

	logger.Debug("configuration loaded",
		logging.FieldMode, mode.Name,
		logging.FieldJobs, cfg.Jobs,
		"libraries", cfg.Sketchbook.Libraries,
		"cache", cache != nil,
	)

	r := runner.New(runner.Env{
		Mode:            mode,
		LibraryDirs:     cfg.Sketchbook.Libraries,
		Scanner:         classpath.NewScanner(cache, cfg.Jobs, logger),
		Frontend:        javasitter.New(),
		CallbackTimeout: cfg.Service.CallbackTimeout,
		Logger:          logger,
	})

	return &session{
		ctx:     logging.WithLogger(ctx, logger),
		workDir: workDir,
		cfg:     cfg,
		logger:  logger,
		cache:   cache,
		runner:  r,
	}, nil
}

// colorMode returns the effective color setting.
func (s *session) colorMode() string {
	if s.cfg.Color == "" {
		return string(config.ColorAuto)
	}
	return string(s.cfg.Color)
}

// loadSketch resolves a single sketch argument, defaulting to the working
// directory. A directory holding several sketches is a usage error.
func (s *session) loadSketch(args []string) (*sketch.Folder, error) {
	dirs, err := runner.Discover(s.ctx, runner.Options{
		Paths:        args,
		WorkingDir:   s.workDir,
		ExcludeGlobs: s.cfg.Ignore,
	})
	if err != nil {
		return nil, fmt.Errorf("find sketch: %w", err)
	}
	switch len(dirs) {
	case 0:
		return nil, fmt.Errorf("%w: no sketch found", sketch.ErrNotSketch)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d sketches found, name one", sketch.ErrNotSketch, len(dirs))
	}

	folder, err := sketch.LoadFolder(s.ctx, dirs[0])
	if err != nil {
		return nil, fmt.Errorf("load sketch: %w", err)
	}
	return folder, nil
}
