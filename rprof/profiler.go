// Package rprof implements the sampling profiler (C7 in the
// environment-core design, spec.md §4.6): a background timer goroutine
// that sets a tick flag at a fixed interval, a statement-entry hook the
// out-of-scope AST executor calls that snapshots the dynamic stack when
// the flag is set, and allocation/copy accounting into the four
// bucketed counters the text report (§6) renders.
//
// Grounded on panyam-sdl's runtime/exectracer.go (its Enter/Exit event
// recording is the closest teacher analog to a sampling hook walking an
// active call stack) and runtime/logger.go's LogLevel/Logger pattern for
// this package's own diagnostic logging.
package rprof

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LaudateCorpus1/fastr/rast"
	"github.com/LaudateCorpus1/fastr/rcaller"
	"github.com/LaudateCorpus1/fastr/rerrors"
	"github.com/LaudateCorpus1/fastr/runtime"
	"github.com/LaudateCorpus1/fastr/rvalue"
)

// State is the profiler's {disabled -> enabled -> disabled} state
// machine, per spec.md §4.6.
type State int

const (
	Disabled State = iota
	Enabled
)

// StartOptions mirrors the start(filename, interval_s, mem, gc, line,
// append) signature of spec.md §4.6.
type StartOptions struct {
	Filename string
	Interval time.Duration
	Mem      bool
	GC       bool
	Line     bool
	Append   bool
}

// sample is one captured stack plus its paired memory delta, kept
// together per spec.md §5's "allocation-delta flush and stack-push...
// must appear paired at output".
type sample struct {
	stack  []rast.SyntaxNode
	memory [4]int64
}

// Profiler is spec.md §3's Profiler state.
type Profiler struct {
	mu    sync.Mutex
	state State
	opts  StartOptions
	file  WriteCloser

	tick atomic.Bool

	cancel    context.CancelFunc
	timerDone chan struct{}

	largeV, smallV, nodes, copied int64

	samples []sample

	log runtime.Logger
}

// WriteCloser is the minimal file-handle surface this package depends
// on, kept as an interface so tests can substitute an in-memory buffer
// without touching the filesystem.
type WriteCloser interface {
	Write(p []byte) (int, error)
	Close() error
}

// NewProfiler creates a disabled profiler. log may be nil, in which case
// a logger writing to stderr at error level is used.
func NewProfiler(log runtime.Logger) *Profiler {
	if log == nil {
		log = runtime.NewLogger(os.Stderr, runtime.LogLevelError)
	}
	return &Profiler{log: log}
}

// Start implements spec.md §4.6's start: an implicit stop when already
// enabled, then - unless the filename is empty, which only performs
// that implicit stop - opens the output file and launches the timer
// goroutine.
func (p *Profiler) Start(opts StartOptions, open func(opts StartOptions) (WriteCloser, error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Enabled {
		if err := p.stopLocked(); err != nil {
			return err
		}
	}
	if opts.Filename == "" {
		return nil
	}

	f, err := open(opts)
	if err != nil {
		return rerrors.NewUserError(rerrors.CodeIOError, "opening profile output %q: %v", opts.Filename, err)
	}

	p.opts = opts
	p.file = f
	p.samples = nil
	atomic.StoreInt64(&p.largeV, 0)
	atomic.StoreInt64(&p.smallV, 0)
	atomic.StoreInt64(&p.nodes, 0)
	atomic.StoreInt64(&p.copied, 0)
	p.tick.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.timerDone = make(chan struct{})
	go func() {
		defer close(p.timerDone)
		runTimer(ctx, opts.Interval, &p.tick)
	}()

	p.state = Enabled
	p.log.Debug("profiler started: interval=%s mem=%v line=%v", opts.Interval, opts.Mem, opts.Line)
	return nil
}

// Stop implements spec.md §4.6's stop: terminates the timer goroutine,
// writes the report and closes the output file. It does not reset the
// start options, so ReportAllocation and ReportCopy keep following the
// last Start's Mem setting.
func (p *Profiler) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *Profiler) stopLocked() error {
	if p.state != Enabled {
		return nil
	}
	p.cancel()
	<-p.timerDone

	p.state = Disabled
	writeErr := WriteReport(p.file, p.opts, p.samples)
	closeErr := p.file.Close()
	p.file = nil

	if writeErr != nil {
		return rerrors.NewUserError(rerrors.CodeIOError, "writing profile report: %v", writeErr)
	}
	if closeErr != nil {
		return rerrors.NewUserError(rerrors.CodeIOError, "closing profile output: %v", closeErr)
	}
	return nil
}

// runTimer is the profiler's one background goroutine: it sleeps
// interval in a loop and sets tick, matching the original ProfileThread
// structure (a daemon thread sleeping and flagging) with Go idiom
// context cancellation standing in for a "running" flag the sleeping
// goroutine checks on wake (a deliberate idiom swap documented in
// SPEC_FULL.md, not a semantics change: the in-flight tick set right
// before cancellation is still allowed to fire and no-op).
func runTimer(ctx context.Context, interval time.Duration, tick *atomic.Bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			tick.Store(true)
		}
	}
}

// StatementHook is the seam the out-of-scope AST executor calls at each
// statement boundary. It no-ops unless tick is set, in which case it
// atomically clears tick and takes a snapshot, per spec.md §4.6's
// "drained by the statement-event listener".
func (p *Profiler) StatementHook(current rast.SyntaxNode, c0 *rcaller.RCaller) {
	if !p.tick.CompareAndSwap(true, false) {
		return
	}
	p.Snapshot(current, c0)
}

// Snapshot implements spec.md §4.6's four-step capture.
func (p *Profiler) Snapshot(current rast.SyntaxNode, c0 *rcaller.RCaller) {
	// 1. Seed the stack with the current AST node.
	stack := []rast.SyntaxNode{current}

	// 2. Walk frames from youngest to oldest (read-only); unwrap promise
	// callers; skip invalid activations.
	cur := rcaller.UnwrapPromiseCaller(c0)
	for cur != nil {
		if rcaller.IsValid(cur) {
			stack = append(stack, cur.SyntaxNode)
		}
		cur = rcaller.UnwrapPromiseCaller(cur.Previous)
	}

	s := sample{stack: stack}

	// 4. If memory-profiled: atomically copy-and-reset memory_delta.
	if p.opts.Mem {
		s.memory = [4]int64{
			atomic.SwapInt64(&p.largeV, 0),
			atomic.SwapInt64(&p.smallV, 0),
			atomic.SwapInt64(&p.nodes, 0),
			atomic.SwapInt64(&p.copied, 0),
		}
	}

	p.mu.Lock()
	// 3. Push in order into captured_stacks.
	p.samples = append(p.samples, s)
	p.mu.Unlock()
}

// ReportAllocation implements rvalue.AllocListener: it buckets a freshly
// allocated value into large_v, small_v, or nodes per spec.md §4.6. A
// no-op while memory profiling is off, so the out-of-scope value layer
// can report unconditionally.
func (p *Profiler) ReportAllocation(v rvalue.Value) {
	if !p.opts.Mem {
		return
	}
	switch rvalue.AllocBucketFor(v) {
	case rvalue.BucketLargeVector:
		atomic.AddInt64(&p.largeV, v.Size())
	case rvalue.BucketSmallVector:
		atomic.AddInt64(&p.smallV, v.Size())
	default:
		atomic.AddInt64(&p.nodes, v.Size())
	}
}

// ReportCopy implements rvalue.CopyListener: it accounts source's size
// into the copied bucket.
func (p *Profiler) ReportCopy(source rvalue.Value) {
	if !p.opts.Mem {
		return
	}
	atomic.AddInt64(&p.copied, source.Size())
}
