package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/config"
	"github.com/yaklabco/sketchdiag/pkg/langdetect"
	"github.com/yaklabco/sketchdiag/pkg/preproc"
	"github.com/yaklabco/sketchdiag/pkg/reporter"
	"github.com/yaklabco/sketchdiag/pkg/runner"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

type watchFlags struct {
	format    string
	libraries []string
	modeDir   string
	noContext bool
	debounce  time.Duration
	duration  time.Duration
}

func newWatchCommand() *cobra.Command {
	var cfg config.Config
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [sketch]",
		Short: "Re-check a sketch whenever its tabs, code folder, or libraries change",
		Long: `Start the background preprocessing service for one sketch and print a
fresh report after every pass.

Edits to tabs queue a pass; bursts of file events are folded into one
pass after the debounce period. Changes under the code folder rebuild
the code folder classpath group, and changes in the library folders
rebuild the library groups.

While running, type a command and press enter:
  r   re-run the last pass
  p   pause or resume analysis
  q   quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, &cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().StringSliceVar(&flags.libraries, "libraries", nil, "contributed library folders")
	cmd.Flags().StringVar(&flags.modeDir, "mode", "", "editor mode directory holding the mode descriptor")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 0, "quiet period before a change is checked (default from config)")
	cmd.Flags().DurationVar(&flags.duration, "for", 0, "stop watching after this long (0 = until interrupted)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, cfg *config.Config, flags *watchFlags) error {
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	cfg.Sketchbook.Libraries = flags.libraries
	cfg.Mode.Dir = flags.modeDir
	cfg.Service.Debounce = flags.debounce

	s, err := newSession(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flags.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.duration)
		defer cancel()
	}

	folder, err := s.loadSketch(args)
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(string(s.cfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       s.colorMode(),
		ShowContext: !flags.noContext,
		ShowSummary: true,
		Compact:     true,
		WorkingDir:  s.workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	svc := s.runner.NewService(folder)
	defer svc.Close()

	svc.RegisterListener(func(res *preproc.Result) {
		result := runner.NewResult(runner.OutcomeFor(folder, res))
		if _, err := rep.Report(ctx, result); err != nil {
			s.logger.Error("report failed", logging.FieldError, err)
		}
	})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	w := &sketchWatcher{
		folder:   folder,
		svc:      svc,
		watcher:  watcher,
		debounce: s.cfg.Service.Debounce,
		logger:   s.logger,
		libDirs:  append(append([]string(nil), s.cfg.Sketchbook.Libraries...), s.runner.Mode().LibraryDirs...),
	}
	if err := w.addWatches(); err != nil {
		return err
	}

	if !s.cfg.AnalysisOn() {
		svc.SetEnabled(false)
		s.logger.Warn("analysis is paused; type p and enter to resume")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go readWatchCommands(cmd.InOrStdin(), svc, cancel, s.logger)

	s.logger.Info("watching sketch", logging.FieldSketch, folder.Name(), logging.FieldPath, folder.Dir())
	svc.Start(ctx)

	return w.run(ctx)
}

// changeKind is a set of things a file event can invalidate.
type changeKind uint8

const (
	changeSketch changeKind = 1 << iota
	changeCodeFolder
	changeLibraries
)

// sketchWatcher folds file events into service notifications.
type sketchWatcher struct {
	folder   *sketch.Folder
	svc      *preproc.Service
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger
	libDirs  []string
}

// addWatches watches the sketch folder, its code folder, and every library
// folder with its immediate library subfolders.
func (w *sketchWatcher) addWatches() error {
	if err := w.watcher.Add(w.folder.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.folder.Dir(), err)
	}
	w.addIfDir(w.folder.CodeDir())

	for _, dir := range w.libDirs {
		w.addIfDir(dir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				w.addIfDir(filepath.Join(dir, entry.Name(), "library"))
			}
		}
	}
	return nil
}

func (w *sketchWatcher) addIfDir(dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("cannot watch folder", logging.FieldPath, dir, logging.FieldError, err)
	}
}

// classify maps an event path to what it invalidates.
func (w *sketchWatcher) classify(path string) changeKind {
	return classifyPath(path, w.folder.Dir(), w.folder.CodeDir(), w.libDirs)
}

func classifyPath(path, sketchDir, codeDir string, libDirs []string) changeKind {
	path = filepath.Clean(path)
	if within(path, codeDir) {
		return changeCodeFolder
	}
	for _, dir := range libDirs {
		if within(path, dir) {
			return changeLibraries
		}
	}
	if filepath.Dir(path) == filepath.Clean(sketchDir) {
		if path == filepath.Clean(codeDir) {
			return changeCodeFolder
		}
		if langdetect.Classify(filepath.Base(path), nil).IsTab() {
			return changeSketch
		}
	}
	return 0
}

// within reports whether path is strictly inside dir.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(dir), path)
	return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// run dispatches events until ctx is done.
func (w *sketchWatcher) run(ctx context.Context) error {
	var (
		pending changeKind
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			kind := w.classify(event.Name)
			if kind == 0 {
				continue
			}
			if kind == changeCodeFolder && event.Has(fsnotify.Create) && event.Name == w.folder.CodeDir() {
				w.addIfDir(event.Name)
			}
			w.logger.Debug("file event", logging.FieldEvent, event.Op.String(), logging.FieldPath, event.Name)
			pending |= kind
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.FieldError, err)

		case <-fire:
			fire = nil
			w.apply(ctx, pending)
			pending = 0
		}
	}
}

// apply turns a batch of changes into service notifications. Tab events
// that left every tab unchanged on disk are dropped.
func (w *sketchWatcher) apply(ctx context.Context, kind changeKind) {
	if kind&changeSketch != 0 {
		changed, err := w.folder.Refresh(ctx)
		switch {
		case err != nil:
			w.logger.Warn("reload sketch", logging.FieldError, err)
		case changed:
			w.svc.NotifySketchChanged()
		default:
			w.logger.Debug("tabs unchanged on disk", logging.FieldSketch, w.folder.Name())
		}
	}
	if kind&changeCodeFolder != 0 {
		w.svc.NotifyCodeFolderChanged()
	}
	if kind&changeLibraries != 0 {
		w.svc.NotifyLibrariesChanged()
	}
}

// readWatchCommands handles the interactive commands typed while watching.
func readWatchCommands(in io.Reader, svc *preproc.Service, quit context.CancelFunc, logger *log.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "r":
			svc.NotifySketchChanged()
		case "p":
			enabled := !svc.Enabled()
			svc.SetEnabled(enabled)
			logger.Info("analysis", "enabled", enabled)
		case "q":
			quit()
			return
		case "":
		default:
			logger.Warn("unknown command; use r, p, or q")
		}
	}
}
