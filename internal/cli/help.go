package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/sketchdiag/internal/ui/pretty"
)

// helpTemplate is cobra's layout with styled headings, command names, and
// flag blocks. The sketch paths hint closes every command that takes one.
const helpTemplate = `{{with (or .Long .Short)}}{{ trimLines . }}

{{end}}{{ heading "Usage:" }}{{if .Runnable}}
  {{ command .UseLine }}{{end}}{{if .HasAvailableSubCommands}}
  {{ command .CommandPath }} [command]{{end}}{{if gt (len .Aliases) 0}}

{{ heading "Aliases:" }}
  {{ dim (join .Aliases ", ") }}{{end}}{{if .HasExample}}

{{ heading "Examples:" }}
{{ dim .Example }}{{end}}{{if .HasAvailableSubCommands}}

{{ heading "Commands:" }}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{ command (pad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}{{end}}{{if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}{{end}}{{if takesSketch .}}

{{ dim "A sketch is a folder whose main tab shares its name, e.g. Blink/Blink.pde." }}{{end}}{{if .HasAvailableSubCommands}}

Run '{{ command (print .CommandPath " [command] --help") }}' for details on a command.{{end}}
`

// flagLine splits a pflag usage line into indent, flag names, value type,
// gap, and description.
var flagLine = regexp.MustCompile(`^(\s*)((?:-\w, )?--[\w-]+)( \w+)?(\s{2,})(.*)$`)

// helpRenderer draws help with the styles picked for the writer it targets.
type helpRenderer struct {
	styles *pretty.Styles
}

// newHelpRenderer resolves the --color flag at render time, after cobra has
// parsed it.
func newHelpRenderer(cmd *cobra.Command, w io.Writer) *helpRenderer {
	mode := "auto"
	if f := cmd.Flag("color"); f != nil {
		mode = f.Value.String()
	}
	return &helpRenderer{styles: pretty.NewStyles(pretty.IsColorEnabled(mode, w))}
}

func (h *helpRenderer) funcs() template.FuncMap {
	return template.FuncMap{
		"heading":     h.styles.SummaryTitle.Render,
		"command":     h.styles.Bold.Render,
		"dim":         h.styles.Dim.Render,
		"flags":       h.flagBlock,
		"join":        strings.Join,
		"pad":         padRight,
		"trimLines":   trimLines,
		"takesSketch": takesSketch,
	}
}

func (h *helpRenderer) render(w io.Writer, cmd *cobra.Command) error {
	tmpl, err := template.New("help").Funcs(h.funcs()).Parse(helpTemplate)
	if err != nil {
		return fmt.Errorf("parse help template: %w", err)
	}
	if err := tmpl.Execute(w, cmd); err != nil {
		return fmt.Errorf("render help: %w", err)
	}
	return nil
}

// flagBlock styles each line of a flag set's usage text.
func (h *helpRenderer) flagBlock(fs *pflag.FlagSet) string {
	usages := strings.TrimSuffix(fs.FlagUsages(), "\n")
	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		lines[i] = h.flagLine(line)
	}
	return strings.Join(lines, "\n")
}

func (h *helpRenderer) flagLine(line string) string {
	m := flagLine.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return m[1] + h.styles.Location.Render(m[2]) + h.styles.Dim.Render(m[3]) + m[4] + m[5]
}

// installHelp routes help and usage for cmd and its subcommands through the
// styled renderer.
func installHelp(cmd *cobra.Command) {
	// Defined up front so "--help --color never" does not read "--color"
	// as the value of --help while cobra looks for a subcommand.
	cmd.InitDefaultHelpFlag()
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		out := c.OutOrStdout()
		if err := newHelpRenderer(c, out).render(out, c); err != nil {
			c.PrintErrln(err)
		}
	})
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		out := c.OutOrStderr()
		return newHelpRenderer(c, out).render(out, c)
	})
}

// takesSketch reports whether a command operates on sketch folders.
func takesSketch(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "check", "watch", "classpath", "stages":
		return true
	default:
		return false
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// trimLines drops trailing blanks from every line.
func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
