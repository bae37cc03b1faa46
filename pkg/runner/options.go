// Package runner checks many sketch folders concurrently.
package runner

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/rewrite"
)

// Options controls which sketch folders a run visits.
type Options struct {
	// Paths are sketch folders, main tabs, or directories containing
	// sketches. If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// ExcludeGlobs are glob patterns, relative to WorkingDir, for folders to skip.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool

	// Jobs controls the maximum number of sketches checked at once.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

// Env is what every sketch in a run shares: the mode, the library folders,
// the listing scanner with its cache, and the analysis frontend.
type Env struct {
	Mode        *classpath.Mode
	LibraryDirs []string

	// Scanner is shared so archives common to many sketches are read once.
	Scanner *classpath.Scanner

	Frontend check.Frontend

	// Rewriter defaults to the sketch dialect rewriter.
	Rewriter rewrite.Rewriter

	CallbackTimeout time.Duration
	Logger          *log.Logger
}
