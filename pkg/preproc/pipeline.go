package preproc

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"
	"time"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/rewrite"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// safePass runs one pass and turns a panic into an error.
func (s *Service) safePass(ctx context.Context, prev *Result) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("pipeline panic", "stack", string(debug.Stack()))
			res, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return s.runPipeline(ctx, prev)
}

// runPipeline assembles the tabs, rewrites them, prepares the classpath, and
// runs both analysis stages. prev is the last published result and is only
// read.
func (s *Service) runPipeline(ctx context.Context, prev *Result) (*Result, error) {
	start := time.Now()

	tabs := s.sketch.Tabs()
	buf := sketch.Assemble(tabs)
	res := &Result{SketchName: s.sketch.Name(), Buffer: buf}

	var prevClasspath *classpath.Classpath
	if prev != nil {
		prevClasspath = prev.Classpath
	}
	known := prevClasspath.CodeFolderPackages()

	out, err := s.rewrite(ctx, buf, known)
	if err != nil {
		return nil, err
	}
	res.Rewrite = out
	if out.Failed() {
		res.Problems = check.FromIssues(buf, out.Issues)
		res.HasSyntaxErrors = true
		res.Classpath = prevClasspath
		if prev != nil {
			res.boundImports, res.hasBound = prev.boundImports, prev.hasBound
		}
		res.Duration = time.Since(start)
		return res, nil
	}

	if prev != nil && prev.hasBound && !sameImports(prev.boundImports, out.Imports) {
		s.builder.MarkLibraryImportsChanged()
	}
	cp, err := s.builder.Prepare(ctx, prevClasspath, out.Imports)
	if err != nil {
		return nil, fmt.Errorf("prepare classpath: %w", err)
	}
	res.Classpath = cp
	res.boundImports, res.hasBound = out.Imports, true

	// The code folder may have changed since the rewrite picked its
	// implicit imports.
	if pkgs := cp.CodeFolderPackages(); !slices.Equal(pkgs, known) {
		out, err = s.rewrite(ctx, buf, pkgs)
		if err != nil {
			return nil, err
		}
		res.Rewrite = out
	}

	parsable, err := transform.New(buf.Text(), out.Edits)
	if err != nil {
		return nil, fmt.Errorf("rewriter edits: %w", err)
	}
	res.Parsable = parsable

	var resolver check.Resolver
	if idx := cp.Index(); idx.ClassCount() > 0 {
		resolver = withJavaTabs(idx, tabs)
	} else {
		s.logger.Debug("bindings skipped: empty classpath", logging.FieldSketch, res.SketchName)
	}

	analysis, err := s.driver.Run(ctx, check.Input{
		Buffer:   buf,
		Parsable: parsable,
		Imports:  out.Imports,
		Resolver: resolver,
	})
	if err != nil {
		return nil, err
	}

	res.Compilable = analysis.Compilable
	res.Mapper = analysis.Mapper
	res.Tree = analysis.Tree
	res.Problems = analysis.Problems
	res.HasSyntaxErrors = analysis.HasSyntaxErrors
	res.HasCompilationErrors = analysis.HasCompilationErrors
	res.BindingsChecked = analysis.BindingsChecked
	res.Duration = time.Since(start)
	return res, nil
}

func (s *Service) rewrite(ctx context.Context, buf *sketch.Buffer, known []string) (*rewrite.Output, error) {
	out, err := s.rewriter.Rewrite(ctx, rewrite.Input{
		Name:           s.sketch.Name(),
		Text:           buf.Text(),
		DefaultImports: s.builder.Mode().DefaultImports,
		KnownImports:   known,
	})
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}
	return out, nil
}
