package pretty_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/sketchdiag/internal/ui/pretty"
)

func TestNewStyles_PlainLeavesTextAlone(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	for name, style := range map[string]lipgloss.Style{
		"error":   styles.Error,
		"warning": styles.Warning,
		"path":    styles.FilePath,
		"caret":   styles.Caret,
		"sketch":  styles.SketchName,
		"success": styles.Success,
		"dim":     styles.Dim,
	} {
		assert.Equal(t, "Blink.pde", style.Render("Blink.pde"), name)
	}
}

func TestNewStyles_ColorSetsAttributes(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(true)

	assert.True(t, styles.Error.GetBold())
	assert.Equal(t, lipgloss.Color("9"), styles.Error.GetForeground())
	assert.Equal(t, lipgloss.Color("11"), styles.Warning.GetForeground())
	assert.True(t, styles.SketchName.GetUnderline())
	assert.False(t, pretty.NewStyles(false).SketchName.GetUnderline())
}

func TestIsColorEnabled(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		noColor string
		stdout  bool
		want    bool
	}{
		{name: "always on a buffer", mode: "always", want: true},
		{name: "always ignores NO_COLOR", mode: "always", noColor: "1", want: true},
		{name: "never on stdout", mode: "never", stdout: true},
		{name: "auto on a buffer", mode: "auto"},
		{name: "auto with NO_COLOR", mode: "auto", noColor: "1", stdout: true},
		{name: "empty mode is auto", mode: ""},
		{name: "unknown mode is auto", mode: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)

			var w io.Writer = &bytes.Buffer{}
			if tt.stdout {
				w = os.Stdout
			}
			assert.Equal(t, tt.want, pretty.IsColorEnabled(tt.mode, w))
		})
	}
}
