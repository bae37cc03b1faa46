package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user and system config folders.
const appName = "sketchdiag"

// sketchbookLibraries is the folder that marks a sketchbook root.
const sketchbookLibraries = "libraries"

// ConfigPaths holds the config files and sketchbook found for a directory.
// Empty strings mean nothing was found.
type ConfigPaths struct {
	System   string
	User     string
	Project  string
	Explicit string

	// Sketchbook is the nearest enclosing folder that has a libraries
	// subfolder, the layout the editor uses for its sketchbook.
	Sketchbook string
}

// projectConfigFiles are tried in order in each folder of the upward walk.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	".sketchdiag.yml",
	".sketchdiag.yaml",
	"sketchdiag.yml",
	"sketchdiag.yaml",
}

//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths finds the system, user, and project config files and the
// sketchbook that encloses workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	walk, err := walkUp(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:     configIn(systemConfigDir()),
		User:       configIn(userConfigDir()),
		Project:    walk.config,
		Sketchbook: walk.sketchbook,
	}, nil
}

// FindProjectConfig returns the nearest project config above startDir.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	walk, err := walkUp(ctx, startDir)
	if err != nil {
		return "", err
	}
	return walk.config, nil
}

type walkResult struct {
	config     string
	sketchbook string
}

// walkUp climbs from startDir looking for a project config and a sketchbook
// root. The walk ends at the first of: a VCS root, the sketchbook root, the
// home folder, or the filesystem root. Folders at the boundary are still
// searched.
func walkUp(ctx context.Context, startDir string) (walkResult, error) {
	var res walkResult

	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return res, fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return res, fmt.Errorf("resolve absolute path: %w", err)
	}
	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("context cancelled: %w", err)
		}

		if res.config == "" {
			res.config = firstFile(dir, projectConfigFiles)
		}
		if isDir(filepath.Join(dir, sketchbookLibraries)) {
			res.sketchbook = dir
			return res, nil
		}
		if hasVCSMarker(dir) || dir == home {
			return res, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return res, nil
		}
		dir = parent
	}
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		programData := os.Getenv("ProgramData")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, appName)
	}
	return filepath.Join("/etc", appName)
}

func userConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName)
}

func configIn(dir string) string {
	if dir == "" {
		return ""
	}
	return firstFile(dir, []string{"config.yaml", "config.yml"})
}

func firstFile(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func hasVCSMarker(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if isDir(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
