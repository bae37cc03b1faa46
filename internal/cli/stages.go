package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/sketchdiag/internal/ui/pretty"
	"github.com/yaklabco/sketchdiag/pkg/config"
	"github.com/yaklabco/sketchdiag/pkg/preproc"
	"github.com/yaklabco/sketchdiag/pkg/transform"
)

// Stage names accepted by --stage.
const (
	stageAssembled  = "assembled"
	stageParsable   = "parsable"
	stageCompilable = "compilable"
	stageAll        = "all"
)

type stagesFlags struct {
	stage       string
	lineNumbers bool
	diff        bool
}

func newStagesCommand() *cobra.Command {
	var cfg config.Config
	flags := &stagesFlags{}

	cmd := &cobra.Command{
		Use:   "stages [sketch]",
		Short: "Print the text of a sketch after each preprocessing stage",
		Long: `Print what the pipeline sees at each stage:

  assembled   the tabs joined in tab order
  parsable    the sketch after the dialect rewrite
  compilable  the parsable text after fixups for the bindings stage

Problems are reported against the assembled text; this command shows how
the later texts line up with it. With --diff, each stage is shown as a
diff against the one before it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStages(cmd, args, &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.stage, "stage", stageAll, "stage to print: assembled, parsable, compilable, all")
	cmd.Flags().BoolVarP(&flags.lineNumbers, "line-numbers", "n", false, "number output lines")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "show what each stage changed as a unified diff")

	return cmd
}

func runStages(cmd *cobra.Command, args []string, cfg *config.Config, flags *stagesFlags) error {
	var names []string
	switch flags.stage {
	case stageAll:
		names = []string{stageAssembled, stageParsable, stageCompilable}
	case stageAssembled, stageParsable, stageCompilable:
		names = []string{flags.stage}
	default:
		return fmt.Errorf("invalid stage %q: must be assembled, parsable, compilable, or all", flags.stage)
	}

	s, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}

	folder, err := s.loadSketch(args)
	if err != nil {
		return err
	}
	svc := s.runner.NewService(folder)
	defer svc.Close()

	res, err := svc.RunPass(s.ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", folder.Name(), err)
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(s.colorMode(), out))
	if flags.diff {
		return writeStageDiffs(out, styles, res)
	}
	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if len(names) > 1 {
			fmt.Fprintln(out, styles.SummaryTitle.Render("== "+name+" =="))
		}
		text, ok := stageText(res, name)
		if !ok {
			fmt.Fprintln(out, styles.Dim.Render("(not produced: the rewrite failed)"))
			continue
		}
		if err := writeStage(out, styles, text, flags.lineNumbers); err != nil {
			return err
		}
	}
	return nil
}

// stageText returns the text of a stage and whether the pass produced it.
func stageText(res *preproc.Result, name string) (string, bool) {
	switch name {
	case stageAssembled:
		if res.Buffer == nil {
			return "", false
		}
		return res.Buffer.Text(), true
	case stageParsable:
		return res.ParsableText(), res.Parsable != nil
	case stageCompilable:
		return res.CompilableText(), res.Compilable != nil
	default:
		return "", false
	}
}

// writeStageDiffs prints the rewrite and fixup stages as diffs.
func writeStageDiffs(w io.Writer, styles *pretty.Styles, res *preproc.Result) error {
	if res.Parsable == nil {
		_, err := fmt.Fprintln(w, styles.Dim.Render("(not produced: the rewrite failed)"))
		return err
	}
	diffs := []*transform.Diff{res.Parsable.Diff(stageAssembled, stageParsable)}
	if res.Compilable != nil {
		diffs = append(diffs, res.Compilable.Diff(stageParsable, stageCompilable))
	}
	for _, d := range diffs {
		if d == nil {
			continue
		}
		for _, line := range strings.SplitAfter(d.String(), "\n") {
			if _, err := io.WriteString(w, styleDiffLine(styles, line)); err != nil {
				return fmt.Errorf("write diff: %w", err)
			}
		}
	}
	return nil
}

func styleDiffLine(styles *pretty.Styles, line string) string {
	text := strings.TrimSuffix(line, "\n")
	nl := line[len(text):]
	switch {
	case strings.HasPrefix(text, "---"), strings.HasPrefix(text, "+++"):
		return styles.Bold.Render(text) + nl
	case strings.HasPrefix(text, "@@"):
		return styles.Location.Render(text) + nl
	case strings.HasPrefix(text, "+"):
		return styles.Success.Render(text) + nl
	case strings.HasPrefix(text, "-"):
		return styles.Failure.Render(text) + nl
	default:
		return line
	}
}

func writeStage(w io.Writer, styles *pretty.Styles, text string, lineNumbers bool) error {
	if !lineNumbers {
		if _, err := io.WriteString(w, text); err != nil {
			return fmt.Errorf("write stage: %w", err)
		}
		if text != "" && !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(w)
		}
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		num := fmt.Sprintf("%*d", width, i+1)
		if _, err := fmt.Fprintf(w, "%s  %s\n", styles.Dim.Render(num), line); err != nil {
			return fmt.Errorf("write stage: %w", err)
		}
	}
	return nil
}
