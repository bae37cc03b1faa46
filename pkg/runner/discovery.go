package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

// ErrBadPattern is returned for an exclude glob that does not compile.
var ErrBadPattern = errors.New("invalid exclude pattern")

// sketchbookFolders hold installed add-ons, not the user's sketches. They are
// skipped when they sit next to each other in a sketchbook root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var sketchbookFolders = []string{"libraries", "modes", "tools"}

// Discover finds sketch folders matching opts. A folder is a sketch when it
// holds a main tab named after itself. Sketch folders are not searched for
// nested sketches. It returns a sorted list of absolute folder paths.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	excl, err := compileExcludes(opts.ExcludeGlobs)
	if err != nil {
		return nil, err
	}

	w := &walker{ctx: ctx, workDir: workDir, exclude: excl, follow: opts.FollowSymlinks, seen: map[string]bool{}}

	for _, inputPath := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := inputPath
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		switch {
		case !info.IsDir():
			// A tab path names its sketch.
			parent := filepath.Dir(absPath)
			if !IsSketchDir(parent) {
				return nil, fmt.Errorf("%s: %w", inputPath, sketch.ErrNotSketch)
			}
			w.add(parent)
		case IsSketchDir(absPath):
			w.add(absPath)
		default:
			if err := w.walk(absPath); err != nil {
				return nil, err
			}
		}
	}

	slices.Sort(w.dirs)
	return w.dirs, nil
}

// IsSketchDir reports whether dir holds <dir>/<base>.pde.
func IsSketchDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, filepath.Base(dir)+sketch.MainExtension))
	return err == nil && !info.IsDir()
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

type walker struct {
	ctx     context.Context
	workDir string
	exclude excludes
	follow  bool

	seen map[string]bool
	dirs []string
}

func (w *walker) add(dir string) {
	if !w.seen[dir] {
		w.seen[dir] = true
		w.dirs = append(w.dirs, dir)
	}
}

// walk collects the sketch folders under root.
func (w *walker) walk(root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}
		if path == root {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			return w.symlink(path)
		}
		if !entry.IsDir() {
			return nil
		}
		if w.skip(path) {
			return filepath.SkipDir
		}
		if IsSketchDir(path) {
			w.add(path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// symlink follows a directory link when enabled. The target is walked, not
// the link, so WalkDir's Lstat cannot loop.
func (w *walker) symlink(path string) error {
	if !w.follow || w.skip(path) {
		return nil
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil //nolint:nilerr // Broken links are skipped.
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return nil //nolint:nilerr // Links to files or unreadable targets are skipped.
	}
	if IsSketchDir(target) {
		w.add(target)
		return nil
	}
	return w.walk(target)
}

// skip reports whether a folder below the walk root is left out: hidden
// folders, excluded folders, and the add-on folders of a sketchbook root.
func (w *walker) skip(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return true
	}
	rel, err := filepath.Rel(w.workDir, path)
	if err != nil {
		rel = path
	}
	if w.exclude.match(rel) {
		return true
	}
	return slices.Contains(sketchbookFolders, name) && isSketchbookRoot(filepath.Dir(path))
}

func isSketchbookRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "libraries"))
	return err == nil && info.IsDir()
}

// excludes are compiled glob patterns. A * stays within one path element
// and ** crosses elements.
type excludes []glob.Glob

func compileExcludes(patterns []string) (excludes, error) {
	out := make(excludes, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(filepath.ToSlash(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrBadPattern, pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// match tests the slash-separated relative path and its base name.
func (e excludes) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := rel[strings.LastIndexByte(rel, '/')+1:]
	for _, g := range e {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
