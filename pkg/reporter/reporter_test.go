package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/sketchdiag/pkg/analysis"
	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/preproc"
	"github.com/yaklabco/sketchdiag/pkg/reporter"
	"github.com/yaklabco/sketchdiag/pkg/runner"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := reporter.New(reporter.Options{Writer: &bytes.Buffer{}, Format: tt.format})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

// sampleResult has one clean sketch, one with two problems in its second
// tab, and one that could not be loaded.
func sampleResult(root string) *runner.Result {
	tabs := []sketch.Tab{
		{Name: "Cam.pde", Text: "void setup() {}\n", Analyzable: true},
		{Name: "Capture.pde", Text: "Capture cam;\nint x = 1.5;\n", Analyzable: true},
	}
	camDir := filepath.Join(root, "Cam")

	return &runner.Result{
		Sketches: []runner.SketchOutcome{
			{
				Dir:      filepath.Join(root, "Blink"),
				Name:     "Blink",
				TabPaths: []string{filepath.Join(root, "Blink", "Blink.pde")},
				Result:   &preproc.Result{SketchName: "Blink"},
			},
			{
				Dir:      camDir,
				Name:     "Cam",
				TabPaths: []string{filepath.Join(camDir, "Cam.pde"), filepath.Join(camDir, "Capture.pde")},
				Result: &preproc.Result{
					SketchName: "Cam",
					Buffer:     sketch.Assemble(tabs),
					Problems: []check.Problem{
						{Tab: 1, Line: 1, StartColumn: 0, EndColumn: 7, Message: "The class “Capture” does not exist", Severity: check.SeverityError, Origin: check.OriginCompile},
						{Tab: 1, Line: 2, StartColumn: 8, EndColumn: 11, Message: "unused value", Severity: check.SeverityWarning, Origin: check.OriginCompile},
					},
				},
			},
			{
				Dir:   filepath.Join(root, "Gone"),
				Error: errors.New("not a sketch folder"),
			},
		},
		Stats: runner.Stats{
			SketchesDiscovered: 3,
			SketchesChecked:    2,
			SketchesErrored:    1,
			SketchesWithIssues: 1,
			ProblemsTotal:      2,
			Errors:             1,
			Warnings:           1,
		},
	}
}

func TestTextReporter(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowContext: true,
		ShowSummary: true,
		WorkingDir:  root,
	})

	count, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out := buf.String()
	assert.Contains(t, out, "Cam (2 problems)")
	assert.Contains(t, out, filepath.Join("Cam", "Capture.pde")+":1:1  error  The class “Capture” does not exist  (compile)")
	assert.Contains(t, out, filepath.Join("Cam", "Capture.pde")+":2:9  warning")
	assert.Contains(t, out, "        Capture cam;\n        ^~~~~~~\n")
	assert.Contains(t, out, "Gone: error: not a sketch folder")
	assert.NotContains(t, out, "Blink")
	assert.True(t, strings.HasSuffix(out, "2 problems (1 error, 1 warning) in 1 sketch, 1 could not be checked\n"))
}

func TestTextReporter_NoContext(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never"})

	_, err := rep.Report(context.Background(), sampleResult("/w"))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "^")
	assert.Contains(t, buf.String(), filepath.Join("/w", "Cam", "Capture.pde"))
}

func TestTextReporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{Writer: &buf, Color: "never", ShowSummary: true})

	count, err := rep.Report(context.Background(), &runner.Result{})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "No sketches to check.\n", buf.String())
}

func TestJSONReporter(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: root, Compact: true})

	count, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "1.0.0", raw["version"])

	sketches := raw["sketches"].([]any)
	require.Len(t, sketches, 3)

	cam := sketches[1].(map[string]any)
	assert.Equal(t, "Cam", cam["name"])
	problems := cam["problems"].([]any)
	require.Len(t, problems, 2)
	first := problems[0].(map[string]any)
	assert.Equal(t, filepath.Join("Cam", "Capture.pde"), first["path"])
	assert.Equal(t, "error", first["severity"])
	assert.Equal(t, "compile", first["origin"])
	assert.InDelta(t, 1, first["line"], 0)

	gone := sketches[2].(map[string]any)
	assert.Equal(t, "not a sketch folder", gone["error"])

	summary := raw["summary"].(map[string]any)
	assert.InDelta(t, 2, summary["sketchesChecked"], 0)
	assert.InDelta(t, 1, summary["sketchesErrored"], 0)
	assert.InDelta(t, 1, summary["errors"], 0)
	assert.InDelta(t, 1, summary["warnings"], 0)
}

func TestJSONReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})

	count, err := rep.Report(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, buf.String(), `"sketches": []`)
}

func TestTextReporter_Breakdown(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")

	var buf bytes.Buffer
	rep := reporter.NewTextReporter(reporter.Options{
		Writer:      &buf,
		Color:       "never",
		ShowSummary: true,
		Breakdown:   true,
		WorkingDir:  root,
	})

	_, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "By origin\n  compile       2  Cam\n")
	assert.Contains(t, out, "By tab\n     2 "+filepath.Join("Cam", "Capture.pde")+"  compile\n")
	assert.Contains(t, out, "Sketches not checked: 1")
	assert.NotContains(t, out, "in 1 sketch")
}

func TestJSONReporter_Breakdown(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")

	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf, WorkingDir: root, Breakdown: true})

	_, err := rep.Report(context.Background(), sampleResult(root))
	require.NoError(t, err)

	var out struct {
		Breakdown *analysis.Report `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.NotNil(t, out.Breakdown)
	assert.Equal(t, 2, out.Breakdown.Totals.Problems)
	assert.Equal(t, 1, out.Breakdown.Totals.SketchesErrored)
	require.Len(t, out.Breakdown.ByTab, 1)
	assert.Equal(t, filepath.Join("Cam", "Capture.pde"), out.Breakdown.ByTab[0].Path)
	assert.Equal(t, 2, out.Breakdown.ByTab[0].Problems)
}

func TestJSONReporter_NoBreakdownByDefault(t *testing.T) {
	var buf bytes.Buffer
	rep := reporter.NewJSONReporter(reporter.Options{Writer: &buf})

	_, err := rep.Report(context.Background(), sampleResult("/w"))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "breakdown")
}
