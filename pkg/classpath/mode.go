// Package classpath assembles the classpath a sketch is checked against.
//
// A classpath is made of four groups that are rebuilt independently: the
// language runtime, the core libraries bundled with the editor mode, the
// contributed libraries selected by the sketch's imports, and the jars in
// the sketch's code folder.
package classpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DescriptorName is the mode descriptor file looked up in a mode directory.
const DescriptorName = "mode.toml"

var (
	// ErrModeNotFound is returned when a mode directory has no descriptor.
	ErrModeNotFound = errors.New("mode descriptor not found")

	// ErrInvalidMode is returned when a descriptor is missing required keys.
	ErrInvalidMode = errors.New("invalid mode descriptor")
)

// Mode describes an editor mode: its runtime, the libraries it bundles, and
// the imports every sketch gets for free.
type Mode struct {
	Name string

	// Dir is the mode directory. Relative paths in the descriptor resolve
	// against it.
	Dir string

	// RuntimePaths are jars, jmods, or directories holding either.
	RuntimePaths []string

	// CoreLibraries are always on the classpath.
	CoreLibraries []string

	// LibraryDirs hold libraries laid out as <dir>/<lib>/library/*.jar.
	LibraryDirs []string

	// DefaultImports are added to the header of every sketch.
	DefaultImports []string
}

// DefaultImports are the imports the Java mode adds to every sketch.
//
//nolint:gochecknoglobals // read-only default list
var DefaultImports = []string{
	"processing.core.*",
	"processing.data.*",
	"processing.event.*",
	"processing.opengl.*",
	"java.util.HashMap",
	"java.util.ArrayList",
	"java.io.File",
	"java.io.BufferedReader",
	"java.io.PrintWriter",
	"java.io.InputStream",
	"java.io.OutputStream",
	"java.io.IOException",
}

// DefaultMode is used when no mode directory is configured. Its runtime is
// taken from JAVA_HOME when set.
func DefaultMode() *Mode {
	mode := &Mode{
		Name:           "java",
		DefaultImports: append([]string(nil), DefaultImports...),
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		mode.RuntimePaths = RuntimeFromJavaHome(home)
	}
	return mode
}

// RuntimeFromJavaHome returns the runtime entries of a JDK installation:
// the jmods directory on modular JDKs, rt.jar on older ones.
func RuntimeFromJavaHome(home string) []string {
	jmods := filepath.Join(home, "jmods")
	if info, err := os.Stat(jmods); err == nil && info.IsDir() {
		return []string{jmods}
	}
	for _, candidate := range []string{
		filepath.Join(home, "jre", "lib", "rt.jar"),
		filepath.Join(home, "lib", "rt.jar"),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return []string{candidate}
		}
	}
	return nil
}

type modeConfig struct {
	Mode      modeSection      `toml:"mode"`
	Runtime   runtimeSection   `toml:"runtime"`
	Core      coreSection      `toml:"core"`
	Libraries librariesSection `toml:"libraries"`
	Imports   importsSection   `toml:"imports"`
}

type modeSection struct {
	Name string `toml:"name"`
}

type runtimeSection struct {
	Paths []string `toml:"paths"`
}

type coreSection struct {
	Libraries []string `toml:"libraries"`
}

type librariesSection struct {
	Dirs []string `toml:"dirs"`
}

type importsSection struct {
	Defaults []string `toml:"defaults"`
}

// LoadMode reads the descriptor of the mode in dir. An empty descriptor
// name means DescriptorName.
func LoadMode(dir, descriptor string) (*Mode, error) {
	if descriptor == "" {
		descriptor = DescriptorName
	}
	path := descriptor
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, descriptor)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModeNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var cfg modeConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("mode", "name") || cfg.Mode.Name == "" {
		return nil, fmt.Errorf("%w: %s: missing [mode].name", ErrInvalidMode, path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown key %s", ErrInvalidMode, path, undecoded[0])
	}

	defaults := cfg.Imports.Defaults
	if !meta.IsDefined("imports", "defaults") {
		defaults = append([]string(nil), DefaultImports...)
	}

	return &Mode{
		Name:           cfg.Mode.Name,
		Dir:            dir,
		RuntimePaths:   resolvePaths(dir, cfg.Runtime.Paths),
		CoreLibraries:  resolvePaths(dir, cfg.Core.Libraries),
		LibraryDirs:    resolvePaths(dir, cfg.Libraries.Dirs),
		DefaultImports: defaults,
	}, nil
}

func resolvePaths(base string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		p = os.ExpandEnv(p)
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}
