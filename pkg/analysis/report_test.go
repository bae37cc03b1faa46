package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/sketchdiag/pkg/analysis"
)

func TestTotals_HasProblems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		totals analysis.Totals
		want   bool
	}{
		{name: "no problems", totals: analysis.Totals{}, want: false},
		{name: "has problems", totals: analysis.Totals{Problems: 5, Warnings: 5}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.totals.HasProblems())
		})
	}
}

func TestTotals_HasErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		totals analysis.Totals
		want   bool
	}{
		{name: "warnings only", totals: analysis.Totals{Problems: 5, Warnings: 5}, want: false},
		{name: "has errors", totals: analysis.Totals{Problems: 3, Errors: 3}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.totals.HasErrors())
		})
	}
}

func TestSortField_IsValid(t *testing.T) {
	t.Parallel()

	for _, field := range []analysis.SortField{analysis.SortByCount, analysis.SortByAlpha, analysis.SortBySeverity} {
		assert.True(t, field.IsValid(), field)
	}
	assert.False(t, analysis.SortField("size").IsValid())
}
