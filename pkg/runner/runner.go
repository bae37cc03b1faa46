package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/preproc"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

// Runner checks sketch folders with one preprocessing service per sketch.
type Runner struct {
	env    Env
	logger *log.Logger
}

// New creates a Runner. A nil Mode means classpath.DefaultMode().
func New(env Env) *Runner {
	if env.Logger == nil {
		env.Logger = logging.Default()
	}
	if env.Mode == nil {
		env.Mode = classpath.DefaultMode()
	}
	if env.Scanner == nil {
		env.Scanner = classpath.NewScanner(nil, 0, env.Logger)
	}
	return &Runner{env: env, logger: env.Logger}
}

// Run discovers sketches under opts.Paths and checks them concurrently.
// Outcomes are ordered by folder path regardless of completion order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	dirs, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Sketches: make([]SketchOutcome, 0, len(dirs))}
	result.Stats.SketchesDiscovered = len(dirs)

	if len(dirs) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	if jobs > len(dirs) {
		jobs = len(dirs)
	}

	workCh := make(chan string)
	outCh := make(chan SketchOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh)
		}()
	}

	go func() {
		defer close(workCh)
		for _, dir := range dirs {
			select {
			case <-ctx.Done():
				return
			case workCh <- dir:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]SketchOutcome, len(dirs))
	for outcome := range outCh {
		outcomes[outcome.Dir] = outcome
	}

	for _, dir := range dirs {
		if outcome, ok := outcomes[dir]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func (r *Runner) worker(ctx context.Context, workCh <-chan string, outCh chan<- SketchOutcome) {
	for dir := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := r.Check(ctx, dir)

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

// Check runs one synchronous pass over the sketch in dir.
func (r *Runner) Check(ctx context.Context, dir string) SketchOutcome {
	outcome := SketchOutcome{Dir: dir}
	ctx = logging.WithFields(logging.WithLogger(ctx, r.logger), logging.FieldSketch, filepath.Base(dir))

	folder, err := sketch.LoadFolder(ctx, dir)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	svc := r.NewService(folder)
	defer svc.Close()

	res, err := svc.RunPass(ctx)
	outcome = OutcomeFor(folder, res)
	if err != nil {
		outcome.Error = fmt.Errorf("%s: %w", folder.Name(), err)
		return outcome
	}

	logging.FromContext(ctx).Debug("sketch checked",
		logging.FieldProblems, len(res.Problems),
		logging.FieldDuration, res.Duration)

	return outcome
}

// NewService builds a preprocessing service for folder over the shared
// environment. The caller owns the service.
func (r *Runner) NewService(folder *sketch.Folder) *preproc.Service {
	builder := classpath.NewBuilder(classpath.Options{
		Mode:        r.env.Mode,
		CodeDir:     folder.CodeDir(),
		LibraryDirs: r.env.LibraryDirs,
		Scanner:     r.env.Scanner,
		Logger:      r.logger,
	})
	return preproc.New(folder, preproc.Options{
		Rewriter:        r.env.Rewriter,
		Frontend:        r.env.Frontend,
		Builder:         builder,
		CallbackTimeout: r.env.CallbackTimeout,
		Logger:          r.logger,
	})
}

// OutcomeFor describes a pass result over folder. res may be nil.
func OutcomeFor(folder *sketch.Folder, res *preproc.Result) SketchOutcome {
	outcome := SketchOutcome{
		Dir:    folder.Dir(),
		Name:   folder.Name(),
		Result: res,
	}
	for i := range folder.Tabs() {
		outcome.TabPaths = append(outcome.TabPaths, folder.TabPath(i))
	}
	return outcome
}

// Libraries lists every contributed and mode library the environment can see.
func (r *Runner) Libraries(ctx context.Context) ([]*classpath.Library, error) {
	builder := classpath.NewBuilder(classpath.Options{
		Mode:        r.env.Mode,
		LibraryDirs: r.env.LibraryDirs,
		Scanner:     r.env.Scanner,
		Logger:      r.logger,
	})
	libs, err := builder.Libraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	return libs, nil
}

// Mode returns the editor mode shared by every sketch.
func (r *Runner) Mode() *classpath.Mode {
	return r.env.Mode
}
