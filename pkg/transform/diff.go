package transform

import (
	"fmt"
	"strings"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 3

// LineKind classifies a line of a Diff.
type LineKind int

const (
	// LineSame is present in both texts.
	LineSame LineKind = iota
	// LineAdded is only in the output text.
	LineAdded
	// LineRemoved is only in the base text.
	LineRemoved
)

// DiffLine is one line of a hunk, without its prefix.
type DiffLine struct {
	Kind LineKind
	Text string
}

// Hunk is a run of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	BaseStart, BaseCount     int
	OutputStart, OutputCount int
	Lines                    []DiffLine
}

// Diff is a line diff between the base and output of a stage.
type Diff struct {
	BaseName, OutputName string
	Hunks                []Hunk
	Added, Removed       int
}

// Diff compares the transform's base and output line by line. It returns
// nil when the stage did not change any line.
func (t *Transform) Diff(baseName, outputName string) *Diff {
	return LineDiff(baseName, outputName, t.base, t.applied)
}

// LineDiff compares two texts line by line. It returns nil when they have
// the same lines.
func LineDiff(baseName, outputName, base, output string) *Diff {
	a, b := diffLines(base), diffLines(output)
	ops := lineOps(a, b)

	d := &Diff{BaseName: baseName, OutputName: outputName}
	for _, op := range ops {
		switch op.Kind {
		case LineAdded:
			d.Added++
		case LineRemoved:
			d.Removed++
		}
	}
	if d.Added == 0 && d.Removed == 0 {
		return nil
	}
	d.Hunks = hunks(ops)
	return d
}

// String renders the diff in unified format.
func (d *Diff) String() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", d.BaseName, d.OutputName)
	for _, h := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", h.BaseStart, h.BaseCount, h.OutputStart, h.OutputCount)
		for _, line := range h.Lines {
			sb.WriteByte(line.Kind.prefix())
			sb.WriteString(line.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (k LineKind) prefix() byte {
	switch k {
	case LineAdded:
		return '+'
	case LineRemoved:
		return '-'
	default:
		return ' '
	}
}

func diffLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// lineOps walks a longest common subsequence table and emits the edit
// script, removals before additions within a change.
func lineOps(a, b []string) []DiffLine {
	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]DiffLine, 0, max(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			ops = append(ops, DiffLine{LineSame, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, DiffLine{LineRemoved, a[i]})
			i++
		default:
			ops = append(ops, DiffLine{LineAdded, b[j]})
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, DiffLine{LineRemoved, a[i]})
	}
	for ; j < len(b); j++ {
		ops = append(ops, DiffLine{LineAdded, b[j]})
	}
	return ops
}

// hunks groups ops into hunks. Changes separated by at most twice the
// context share a hunk.
func hunks(ops []DiffLine) []Hunk {
	var out []Hunk
	for idx := 0; idx < len(ops); idx++ {
		if ops[idx].Kind == LineSame {
			continue
		}
		last := idx
		for k := idx + 1; k < len(ops) && k-last-1 <= 2*diffContext; k++ {
			if ops[k].Kind != LineSame {
				last = k
			}
		}
		from := max(idx-diffContext, 0)
		to := min(last+1+diffContext, len(ops))
		out = append(out, newHunk(ops, from, to))
		idx = last
	}
	return out
}

// newHunk builds the hunk covering ops[from:to].
func newHunk(ops []DiffLine, from, to int) Hunk {
	h := Hunk{BaseStart: 1, OutputStart: 1}
	for _, op := range ops[:from] {
		if op.Kind != LineAdded {
			h.BaseStart++
		}
		if op.Kind != LineRemoved {
			h.OutputStart++
		}
	}
	h.Lines = append([]DiffLine(nil), ops[from:to]...)
	for _, op := range h.Lines {
		if op.Kind != LineAdded {
			h.BaseCount++
		}
		if op.Kind != LineRemoved {
			h.OutputCount++
		}
	}
	return h
}
