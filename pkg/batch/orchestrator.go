// Package batch runs sidecar generation for many images concurrently
// over a bounded worker pool, with batched progress reporting and
// cooperative cancellation.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/menta2k/xmp-sidecar/pkg/types"
)

// Processor handles a single image. Implementations must be safe for
// concurrent use.
type Processor interface {
	Process(ctx context.Context, img types.Image) types.Outcome
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(ctx context.Context, img types.Image) types.Outcome

func (f ProcessorFunc) Process(ctx context.Context, img types.Image) types.Outcome {
	return f(ctx, img)
}

// Events are the optional callbacks a run reports through. All fields
// may be nil. Callbacks are invoked from a single aggregation goroutine,
// so implementations need no locking of their own.
//
// Log and Progress are batched: they fire together every FlushEvery
// completions and once more on the final completion, so a UI consumer
// sees a bounded event rate regardless of batch size.
type Events struct {
	// Progress carries the completion count, the batch size, and the
	// most recently completed image name.
	Progress func(completed, total int, name string)

	// Log receives the accumulated per-image result lines since the
	// previous flush, joined by newlines.
	Log func(batched string)

	// Succeeded fires once at the end of the run with every image that
	// got a sidecar, for callers tracking per-image state.
	Succeeded func(images []types.Image)

	// Finished fires exactly once when the run ends, whether it ran to
	// completion or was cancelled.
	Finished func(summary types.Summary)
}

// Options tune a run. Zero values select the defaults.
type Options struct {
	// Workers is the pool size. Defaults to NumCPU, capped at 8.
	Workers int

	// FlushEvery is the number of completions between Log/Progress
	// flushes. Defaults to 50.
	FlushEvery int

	// Format names the sidecar format in log lines. Defaults to "xmp".
	Format string
}

const (
	defaultFlushEvery = 50
	maxDefaultWorkers = 8
)

// DefaultWorkers returns the worker count used when Options.Workers is
// zero.
func DefaultWorkers() int {
	n := runtime.NumCPU()
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// State tracks an orchestrator through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Orchestrator runs one batch. It is single-use: Start may be called
// once, and a finished orchestrator stays in its terminal state.
type Orchestrator struct {
	processor Processor
	events    Events
	opts      Options

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc

	cancelled atomic.Bool
	done      chan struct{}
	summary   types.Summary
}

// New creates an orchestrator in the idle state.
func New(processor Processor, events Events, opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers()
	}
	if opts.FlushEvery <= 0 {
		opts.FlushEvery = defaultFlushEvery
	}
	if opts.Format == "" {
		opts.Format = "xmp"
	}
	return &Orchestrator{
		processor: processor,
		events:    events,
		opts:      opts,
		state:     StateIdle,
		done:      make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start launches the run and returns immediately. Images are submitted
// to the pool in slice order. Starting anything but an idle orchestrator
// is an error.
func (o *Orchestrator) Start(ctx context.Context, images []types.Image) error {
	o.mu.Lock()
	if o.state != StateIdle {
		state := o.state
		o.mu.Unlock()
		return fmt.Errorf("cannot start orchestrator in %s state", state)
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.state = StateRunning
	o.mu.Unlock()

	go o.run(runCtx, images)
	return nil
}

// Cancel requests a cooperative stop: images already handed to a worker
// finish, queued images are skipped and stay unprocessed. The run context
// is left intact so an in-flight tool invocation is never killed
// mid-write; it is only cancelled once the pool has drained. Cancelling
// anything but a running orchestrator is an error.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateRunning {
		return fmt.Errorf("cannot cancel orchestrator in %s state", o.state)
	}
	o.cancelled.Store(true)
	return nil
}

// Wait blocks until the run reaches a terminal state and returns its
// summary.
func (o *Orchestrator) Wait() types.Summary {
	<-o.done
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summary
}

func (o *Orchestrator) run(ctx context.Context, images []types.Image) {
	jobs := make(chan types.Image)
	results := make(chan types.Outcome)

	var workers sync.WaitGroup
	for i := 0; i < o.opts.Workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for img := range jobs {
				if o.cancelled.Load() {
					continue
				}
				results <- o.processor.Process(ctx, img)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, img := range images {
			if o.cancelled.Load() {
				return
			}
			jobs <- img
		}
	}()

	go func() {
		workers.Wait()
		close(results)
	}()

	o.aggregate(results, len(images))
}

// aggregate is the single consumer of worker results. It alone touches
// the counters, the log buffer, and the success list, so none of them
// need locking.
func (o *Orchestrator) aggregate(results <-chan types.Outcome, total int) {
	summary := types.Summary{}
	completed := 0
	var logLines []string
	var successes []types.Image

	flush := func(name string) {
		if o.events.Log != nil && len(logLines) > 0 {
			o.events.Log(strings.Join(logLines, "\n"))
		}
		logLines = logLines[:0]
		if o.events.Progress != nil {
			o.events.Progress(completed, total, name)
		}
	}

	var lastName string
	for out := range results {
		completed++
		lastName = filepath.Base(out.Image.Path)

		switch {
		case out.Success:
			summary.Processed++
			successes = append(successes, out.Image)
			logLines = append(logLines, fmt.Sprintf("✓ Created %s sidecar for %s", o.opts.Format, lastName))
		case out.Err != nil:
			summary.Errors++
			logLines = append(logLines, fmt.Sprintf("✗ Error processing %s: %v", lastName, out.Err))
		default:
			summary.Errors++
			logLines = append(logLines, fmt.Sprintf("✗ Failed to create %s sidecar for %s", o.opts.Format, lastName))
		}

		if completed%o.opts.FlushEvery == 0 || completed == total {
			flush(lastName)
		}
	}
	// Cancelled runs stop short of the final completion; whatever
	// accumulated since the last flush still goes out.
	if len(logLines) > 0 {
		flush(lastName)
	}

	summary.Cancelled = o.cancelled.Load()

	o.mu.Lock()
	o.summary = summary
	if summary.Cancelled {
		o.state = StateCancelled
	} else {
		o.state = StateCompleted
	}
	o.cancel()
	o.mu.Unlock()

	if o.events.Succeeded != nil && len(successes) > 0 {
		o.events.Succeeded(successes)
	}
	if o.events.Finished != nil {
		o.events.Finished(summary)
	}
	close(o.done)
}
