// Package analysis aggregates the problems of a check run by origin and by
// tab.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/runner"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or the path lies outside it, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// analysisContext holds temporary state during analysis.
type analysisContext struct {
	originMap    map[check.Origin]*OriginAnalysis
	tabMap       map[string]*TabAnalysis
	originSketch map[check.Origin]map[string]bool
	tabOrigins   map[string]map[check.Origin]bool
}

func newAnalysisContext() *analysisContext {
	return &analysisContext{
		originMap:    make(map[check.Origin]*OriginAnalysis),
		tabMap:       make(map[string]*TabAnalysis),
		originSketch: make(map[check.Origin]map[string]bool),
		tabOrigins:   make(map[string]map[check.Origin]bool),
	}
}

func (c *counts) add(p check.Problem) {
	c.Problems++
	if p.IsError() {
		c.Errors++
	} else {
		c.Warnings++
	}
}

func (ctx *analysisContext) origin(o check.Origin) *OriginAnalysis {
	if _, ok := ctx.originMap[o]; !ok {
		ctx.originMap[o] = &OriginAnalysis{Origin: o.String()}
		ctx.originSketch[o] = make(map[string]bool)
	}
	return ctx.originMap[o]
}

func (ctx *analysisContext) tab(path, sketch string) *TabAnalysis {
	if _, ok := ctx.tabMap[path]; !ok {
		ctx.tabMap[path] = &TabAnalysis{Path: path, Sketch: sketch}
		ctx.tabOrigins[path] = make(map[check.Origin]bool)
	}
	return ctx.tabMap[path]
}

// Analyze turns a runner.Result into a Report in a single pass over the
// problems.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{Version: ReportVersion}
	if result == nil {
		return report
	}

	ctx := newAnalysisContext()

	for _, sk := range result.Sketches {
		report.Totals.Sketches++
		if sk.Error != nil {
			report.Totals.SketchesErrored++
			continue
		}
		report.Totals.Tabs += len(sk.TabPaths)

		for _, p := range sk.Problems() {
			report.Totals.Problems++
			if p.IsError() {
				report.Totals.Errors++
			} else {
				report.Totals.Warnings++
			}

			oa := ctx.origin(p.Origin)
			oa.add(p)
			ctx.originSketch[p.Origin][sk.Name] = true

			path := makeRelativePath(sk.TabPath(p.Tab), opts.WorkingDir)
			ta := ctx.tab(path, sk.Name)
			ta.add(p)
			ctx.tabOrigins[path][p.Origin] = true
		}
	}
	report.Totals.TabsWithProblems = len(ctx.tabMap)

	if opts.IncludeByOrigin {
		report.ByOrigin = ctx.buildByOrigin(opts)
	}
	if opts.IncludeByTab {
		report.ByTab = ctx.buildByTab(opts)
	}
	return report
}

func (ctx *analysisContext) buildByOrigin(opts Options) []OriginAnalysis {
	result := make([]OriginAnalysis, 0, len(ctx.originMap))
	for o, oa := range ctx.originMap {
		for name := range ctx.originSketch[o] {
			oa.Sketches = append(oa.Sketches, name)
		}
		slices.Sort(oa.Sketches)
		result = append(result, *oa)
	}
	slices.SortFunc(result, func(left, right OriginAnalysis) int {
		return compareCounts(left.counts, right.counts, left.Origin, right.Origin, opts)
	})
	return result
}

func (ctx *analysisContext) buildByTab(opts Options) []TabAnalysis {
	result := make([]TabAnalysis, 0, len(ctx.tabMap))
	for path, ta := range ctx.tabMap {
		for o := range ctx.tabOrigins[path] {
			ta.Origins = append(ta.Origins, o.String())
		}
		slices.Sort(ta.Origins)
		result = append(result, *ta)
	}
	slices.SortFunc(result, func(left, right TabAnalysis) int {
		return compareCounts(left.counts, right.counts, left.Path, right.Path, opts)
	})
	return result
}

// compareCounts orders two views. Ties always fall back to the key so the
// output is stable across runs.
func compareCounts(left, right counts, leftKey, rightKey string, opts Options) int {
	var result int
	switch opts.SortBy {
	case SortByAlpha:
		return cmp.Compare(leftKey, rightKey)
	case SortBySeverity:
		result = cmp.Compare(right.Errors, left.Errors)
		if result == 0 {
			result = cmp.Compare(right.Warnings, left.Warnings)
		}
	default: // SortByCount
		result = cmp.Compare(left.Problems, right.Problems)
		if opts.SortDesc {
			result = -result
		}
	}
	if result == 0 {
		result = cmp.Compare(leftKey, rightKey)
	}
	return result
}
