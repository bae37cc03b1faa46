// Package preproc runs the sketch preprocessing pipeline on a single worker
// goroutine and publishes immutable results to listeners.
package preproc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/classpath"
	"github.com/yaklabco/sketchdiag/pkg/rewrite"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

// DefaultCallbackTimeout bounds the wait for the previous batch of one-shot
// callbacks.
const DefaultCallbackTimeout = 3 * time.Second

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("preprocessing service closed")

	// ErrDisabled is returned by WhenDone while analysis is disabled.
	ErrDisabled = errors.New("preprocessing disabled")

	// ErrPanic wraps a panic recovered from a pass.
	ErrPanic = errors.New("preprocessing pass panicked")

	// ErrRunning is returned by RunPass once the worker has started.
	ErrRunning = errors.New("preprocessing worker already started")
)

// State is the lifecycle state of a Service.
type State int

const (
	// StateIdle means no pass is queued or running.
	StateIdle State = iota
	// StateQueued means a change is pending and no pass is running.
	StateQueued
	// StateRunning means a pass is in progress.
	StateRunning
	// StateAwaitingCallbacks means a result is being handed to listeners.
	StateAwaitingCallbacks
	// StateTerminated means the service was closed.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateAwaitingCallbacks:
		return "awaiting-callbacks"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Listener receives every published result on the worker goroutine.
type Listener func(*Result)

// Options configures a Service.
type Options struct {
	// Rewriter defaults to rewrite.NewPDE().
	Rewriter rewrite.Rewriter

	// Frontend parses and binds the rewritten sketch. Required.
	Frontend check.Frontend

	// Builder defaults to a builder over classpath.DefaultMode().
	Builder *classpath.Builder

	// CallbackTimeout defaults to DefaultCallbackTimeout.
	CallbackTimeout time.Duration

	// Disabled starts the service with analysis off.
	Disabled bool

	Logger *log.Logger
}

type listenerEntry struct {
	id int
	fn Listener
}

// pendingCall is a one-shot callback waiting for the next result. cancel is
// closed when the callback is dropped by SetEnabled(false) or Close.
type pendingCall struct {
	fn     func(*Result)
	cancel chan struct{}
}

// cancelPendingLocked drops every waiting callback. Callers hold s.mu.
func (s *Service) cancelPendingLocked() {
	for _, p := range s.pending {
		close(p.cancel)
	}
	s.pending = nil
}

// Service owns the preprocessing pipeline of one sketch. A single worker
// goroutine runs passes; change notifications coalesce into at most one
// pending pass.
type Service struct {
	sketch   sketch.Sketch
	rewriter rewrite.Rewriter
	driver   *check.Driver
	builder  *classpath.Builder
	timeout  time.Duration
	logger   *log.Logger

	requests chan struct{}
	quit     chan struct{}
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	closed    bool
	enabled   bool
	queued    bool
	running   bool
	notifying bool
	passes    uint64
	latest    *Result
	listeners []listenerEntry
	nextID    int
	pending   []pendingCall
	lastBatch chan struct{}
}

// New creates a service for sk. Call Start to begin processing.
func New(sk sketch.Sketch, opts Options) *Service {
	if opts.Rewriter == nil {
		opts.Rewriter = rewrite.NewPDE()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Builder == nil {
		opts.Builder = classpath.NewBuilder(classpath.Options{Logger: opts.Logger})
	}
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = DefaultCallbackTimeout
	}
	return &Service{
		sketch:   sk,
		rewriter: opts.Rewriter,
		driver:   check.NewDriver(opts.Frontend),
		builder:  opts.Builder,
		timeout:  opts.CallbackTimeout,
		logger:   opts.Logger.With(logging.FieldSketch, sk.Name()),
		requests: make(chan struct{}, 1),
		quit:     make(chan struct{}),
		enabled:  !opts.Disabled,
	}
}

// Start launches the worker and queues the first pass.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	s.NotifySketchChanged()
}

// Close stops the worker after the current pass. Pending one-shot
// callbacks are abandoned. Later calls do nothing.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelPendingLocked()
	s.mu.Unlock()

	close(s.quit)
	s.wg.Wait()
}

// NotifySketchChanged queues a pass. It never blocks.
func (s *Service) NotifySketchChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.enabled {
		return
	}
	s.queued = true
	select {
	case s.requests <- struct{}{}:
	default:
	}
}

// NotifyLibrariesChanged rebuilds the library groups on the next pass.
func (s *Service) NotifyLibrariesChanged() {
	s.builder.MarkLibrariesChanged()
	s.NotifySketchChanged()
}

// NotifyCodeFolderChanged rebuilds the code folder group on the next pass.
func (s *Service) NotifyCodeFolderChanged() {
	s.builder.MarkCodeFolderChanged()
	s.NotifySketchChanged()
}

// SetEnabled turns analysis on or off. Turning it off cancels pending
// one-shot callbacks; turning it on queues a pass.
func (s *Service) SetEnabled(enabled bool) {
	s.mu.Lock()
	if s.enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled
	if !enabled {
		s.cancelPendingLocked()
		s.queued = false
	}
	s.mu.Unlock()

	if enabled {
		s.NotifySketchChanged()
	}
}

// Enabled reports whether analysis is on.
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// RegisterListener adds fn to the listeners called with every result, in
// registration order. It returns an id for UnregisterListener.
func (s *Service) RegisterListener(fn Listener) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: s.nextID, fn: fn})
	return s.nextID
}

// UnregisterListener removes a listener. Unknown ids are ignored.
func (s *Service) UnregisterListener(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// WhenDone calls cb once with the next result. When the service is idle
// and has a result, cb gets that result right away. cb runs on a dispatch
// goroutine, after the callbacks of earlier results.
func (s *Service) WhenDone(cb func(*Result)) error {
	_, err := s.whenDone(cb)
	return err
}

// whenDone registers cb and returns a channel closed if cb is dropped
// before it runs.
func (s *Service) whenDone(cb func(*Result)) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if !s.enabled {
		return nil, ErrDisabled
	}
	cancel := make(chan struct{})
	if !s.queued && !s.running && !s.notifying && s.latest != nil {
		s.dispatchLocked(s.latest, []pendingCall{{fn: cb, cancel: cancel}})
		return cancel, nil
	}
	s.pending = append(s.pending, pendingCall{fn: cb, cancel: cancel})
	return cancel, nil
}

// WhenDoneBlocking is WhenDone that waits up to timeout for cb to finish.
// It reports whether cb ran. Disabling or closing the service releases the
// wait at once.
func (s *Service) WhenDoneBlocking(cb func(*Result), timeout time.Duration) bool {
	done := make(chan struct{})
	cancelled, err := s.whenDone(func(r *Result) {
		defer close(done)
		cb(r)
	})
	if err != nil {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	case <-cancelled:
		return false
	case <-s.quit:
		return false
	}
}

// Latest returns the last published result, or nil.
func (s *Service) Latest() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// State reports what the service is doing.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.closed:
		return StateTerminated
	case s.notifying:
		return StateAwaitingCallbacks
	case s.running:
		return StateRunning
	case s.queued:
		return StateQueued
	default:
		return StateIdle
	}
}

// RunPass runs one pass on the calling goroutine and publishes its result.
// It is for one-shot checks and fails once Start was called.
func (s *Service) RunPass(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrClosed
	case s.started:
		s.mu.Unlock()
		return nil, ErrRunning
	}
	s.mu.Unlock()

	return s.runOnce(ctx)
}

func (s *Service) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-s.requests:
		}

		s.mu.Lock()
		proceed := s.enabled && !s.closed
		s.mu.Unlock()
		if !proceed {
			continue
		}

		if _, err := s.runOnce(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("preprocessing failed", logging.FieldError, err)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	s.queued = false
	s.running = true
	prev := s.latest
	s.mu.Unlock()

	res, err := s.safePass(ctx, prev)

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.passes++
	res.Pass = s.passes
	s.notifying = true
	s.latest = res
	listeners := make([]Listener, len(s.listeners))
	for i, l := range s.listeners {
		listeners[i] = l.fn
	}
	s.mu.Unlock()

	errs, warns := res.Counts()
	s.logger.Debug("preprocessing pass done",
		logging.FieldPass, res.Pass,
		logging.FieldDuration, res.Duration,
		logging.FieldErrors, errs,
		logging.FieldWarnings, warns)

	for _, fn := range listeners {
		s.callListener(fn, res)
	}

	s.mu.Lock()
	s.notifying = false
	if cbs := s.pending; len(cbs) > 0 && s.enabled && !s.closed {
		s.pending = nil
		s.dispatchLocked(res, cbs)
	}
	s.mu.Unlock()
	return res, nil
}

// dispatchLocked runs cbs after the previous batch finished or timed out.
// Callers hold s.mu.
func (s *Service) dispatchLocked(res *Result, cbs []pendingCall) {
	prev := s.lastBatch
	done := make(chan struct{})
	s.lastBatch = done

	go func() {
		defer close(done)
		if prev != nil {
			timer := time.NewTimer(s.timeout)
			select {
			case <-prev:
			case <-timer.C:
				s.logger.Warn("previous callbacks still running", logging.FieldPass, res.Pass)
			}
			timer.Stop()
		}
		for _, cb := range cbs {
			s.callListener(cb.fn, res)
		}
	}()
}

func (s *Service) callListener(fn func(*Result), res *Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("result callback panicked", logging.FieldPass, res.Pass, logging.FieldError, fmt.Sprint(r))
		}
	}()
	fn(res)
}
