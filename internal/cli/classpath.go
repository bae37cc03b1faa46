package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/internal/ui/pretty"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/config"
)

type classpathFlags struct {
	libraries []string
	modeDir   string
	packages  bool
	installed bool
	dropCache bool
}

func newClasspathCommand() *cobra.Command {
	var cfg config.Config
	flags := &classpathFlags{}

	cmd := &cobra.Command{
		Use:   "classpath [sketch]",
		Short: "Show the classpath groups built for a sketch",
		Long: `Run one pass over a sketch and print the classpath it was checked
against, group by group: the runtime, the mode's core libraries, the
contributed libraries selected by the sketch's imports, and the jars in
its code folder.

Examples:
  sketchdiag classpath Blink              # Groups and entries
  sketchdiag classpath --packages Blink   # Also list packages per group
  sketchdiag classpath --installed        # List every library found
  sketchdiag classpath --drop-cache       # Forget cached archive listings`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Sketchbook.Libraries = flags.libraries
			cfg.Mode.Dir = flags.modeDir
			return runClasspath(cmd, args, &cfg, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.libraries, "libraries", nil, "contributed library folders")
	cmd.Flags().StringVar(&flags.modeDir, "mode", "", "editor mode directory holding the mode descriptor")
	cmd.Flags().BoolVar(&flags.packages, "packages", false, "list the packages each group provides")
	cmd.Flags().BoolVar(&flags.installed, "installed", false, "list every installed library instead")
	cmd.Flags().BoolVar(&flags.dropCache, "drop-cache", false, "delete the archive listing cache and exit")

	return cmd
}

func runClasspath(cmd *cobra.Command, args []string, cfg *config.Config, flags *classpathFlags) error {
	s, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(s.colorMode(), out))

	if flags.dropCache {
		if s.cache == nil {
			s.logger.Info("listing cache is disabled")
			return nil
		}
		if err := s.cache.DropAll(); err != nil {
			return fmt.Errorf("drop cache: %w", err)
		}
		s.logger.Info("dropped listing cache", logging.FieldPath, s.cache.Dir())
		return nil
	}

	if flags.installed {
		libs, err := s.runner.Libraries(s.ctx)
		if err != nil {
			return err
		}
		return writeLibraries(out, styles, libs, flags.packages)
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

	fmt.Fprintln(out, styles.SketchName.Render(folder.Name()))
	imports := res.Imports()
	if len(imports) > 0 {
		names := make([]string, len(imports))
		for i, imp := range imports {
			names[i] = imp.String()
		}
		fmt.Fprintf(out, "%s %s\n", styles.Dim.Render("imports:"), strings.Join(names, ", "))
	}
	return writeClasspath(out, styles, res.Classpath, flags.packages)
}

func writeClasspath(w io.Writer, styles *pretty.Styles, cp *classpath.Classpath, packages bool) error {
	kinds := []classpath.GroupKind{
		classpath.GroupRuntime,
		classpath.GroupCore,
		classpath.GroupLibraries,
		classpath.GroupCodeFolder,
	}
	for _, kind := range kinds {
		group := cp.Group(kind)
		var entries, libs []string
		if group != nil {
			entries = group.Entries
			libs = group.Libraries
		}

		heading := fmt.Sprintf("%s (%d)", kind, len(entries))
		if len(libs) > 0 {
			heading += ": " + strings.Join(libs, ", ")
		}
		if _, err := fmt.Fprintln(w, styles.SummaryTitle.Render(heading)); err != nil {
			return fmt.Errorf("write classpath: %w", err)
		}
		for _, entry := range entries {
			fmt.Fprintf(w, "  %s\n", styles.FilePath.Render(entry))
		}
		if packages {
			for _, pkg := range group.Packages() {
				fmt.Fprintf(w, "    %s\n", styles.Dim.Render(pkg))
			}
		}
	}
	return nil
}

func writeLibraries(w io.Writer, styles *pretty.Styles, libs []*classpath.Library, packages bool) error {
	if len(libs) == 0 {
		_, err := fmt.Fprintln(w, styles.Dim.Render("No libraries found"))
		return err
	}
	for _, lib := range libs {
		_, err := fmt.Fprintf(w, "%s %s\n", styles.SketchName.Render(lib.Name), styles.FilePath.Render(lib.Dir))
		if err != nil {
			return fmt.Errorf("write libraries: %w", err)
		}
		if packages {
			for _, pkg := range lib.Packages {
				fmt.Fprintf(w, "    %s\n", styles.Dim.Render(pkg))
			}
		}
	}
	return nil
}
