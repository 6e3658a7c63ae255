// Package pipeline fans classification tasks out to a fixed worker pool
// and drains outcomes through a bounded channel into a single aggregator.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// resultBufferPerWorker sizes the result channel relative to the
	// pool, so producers block instead of buffering without bound when
	// the consumer stalls.
	resultBufferPerWorker = 2

	// drainGrace bounds how long the drain loop waits for in-flight
	// outcomes after cancellation.
	drainGrace = 30 * time.Second
)

// RunResult reports what a run actually did.
type RunResult struct {
	Summary
	Submitted   int
	Drained     int
	Interrupted bool
}

// Run classifies every path and returns once all outcomes are drained or
// the context is cancelled and the grace period expires. Each drained
// outcome is recorded in the stats, logged, and forwarded to updates
// (which may be nil). Completion order across workers is unordered; only
// the counters are guaranteed correct.
func Run(ctx context.Context, paths []string, opts Options, updates chan<- ProgressUpdate) RunResult {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	// Populating: the 1-based sequence index assigned here is the only
	// ordering this system guarantees.
	tasks := make([]Task, 0, len(paths))
	for i, path := range paths {
		tasks = append(tasks, Task{
			Path:   path,
			Seq:    i + 1,
			MoveTo: opts.MoveTo,
			CopyTo: opts.CopyTo,
		})
	}

	jobs := make(chan Task)
	results := make(chan Outcome, opts.Workers*resultBufferPerWorker)

	var dedup *dedupFilter
	if opts.SkipDuplicates {
		dedup = &dedupFilter{}
	}

	// Dispatching: a fixed pool, each worker initializing its context
	// lazily on the first task it receives.
	var workers errgroup.Group
	for i := 0; i < opts.Workers; i++ {
		id := i + 1
		workers.Go(func() error {
			var wctx *workerContext
			defer func() {
				if wctx != nil {
					wctx.close()
				}
			}()

			for task := range jobs {
				if ctx.Err() != nil {
					return nil
				}
				if wctx == nil {
					wctx = newWorkerContext(id, opts)
				}
				select {
				case results <- wctx.process(task, dedup):
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	// Producer: submit in sequence order, stop dispatching on interrupt.
	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	// The result channel closes once every worker has exited.
	go func() {
		_ = workers.Wait()
		close(results)
	}()

	// Draining: the single consumer and sole mutator of the stats.
	stats := &Stats{}
	drained := 0
	interrupted := false
	ctxDone := ctx.Done()
	var graceC <-chan time.Time

drain:
	for {
		select {
		case out, ok := <-results:
			if !ok {
				break drain
			}
			drained++
			stats.Record(out)
			logOutcome(opts.Logger, out)
			forward(ctx, updates, out)
		case <-ctxDone:
			interrupted = true
			graceC = time.After(drainGrace)
			ctxDone = nil
		case <-graceC:
			opts.Logger.Error("result drain did not finish within grace period",
				zap.Duration("grace", drainGrace),
				zap.Int("drained", drained),
				zap.Int("submitted", len(tasks)))
			break drain
		}
	}

	if ctx.Err() != nil {
		interrupted = true
	}

	summary := stats.Snapshot()
	logSummary(opts.Logger, summary, opts, interrupted)

	return RunResult{
		Summary:     summary,
		Submitted:   len(tasks),
		Drained:     drained,
		Interrupted: interrupted,
	}
}

func logOutcome(logger *zap.Logger, out Outcome) {
	if out.Err != nil {
		logger.Error("failed to process image",
			zap.String("file", out.Task.Path),
			zap.Int("index", out.Task.Seq),
			zap.String("error", out.Err.Error()))
		return
	}

	fields := []zap.Field{
		zap.String("file", out.Task.Path),
		zap.Int("index", out.Task.Seq),
		zap.String("classification", out.Classification()),
		zap.String("action", out.Action()),
	}
	if out.Destination != "" {
		fields = append(fields, zap.String("destination", out.Destination))
	}
	logger.Info("processed image", fields...)
}

func logSummary(logger *zap.Logger, summary Summary, opts Options, interrupted bool) {
	fields := []zap.Field{
		zap.Int("total_files", summary.Total),
		zap.Int("screenshots", summary.Screenshots),
		zap.Int("other_images", summary.Other),
		zap.Int("errors", summary.Errors),
	}
	switch {
	case opts.MoveTo != "":
		fields = append(fields, zap.String("action", "moved"), zap.String("destination", opts.MoveTo))
	case opts.CopyTo != "":
		fields = append(fields, zap.String("action", "copied"), zap.String("destination", opts.CopyTo))
	}
	if interrupted {
		fields = append(fields, zap.Bool("interrupted", true))
	}
	logger.Info("classification complete", fields...)
}

// forward pushes a progress update to the UI. After cancellation the UI
// reader may already be gone, so the send must not block the drain loop;
// dropped updates only affect the live display, never the stats.
func forward(ctx context.Context, updates chan<- ProgressUpdate, out Outcome) {
	if updates == nil {
		return
	}

	update := ProgressUpdate{
		TotalDelta: 1,
		Row: &ResultRow{
			File:           out.Task.Path,
			Classification: out.Classification(),
			Action:         out.Action(),
		},
	}
	switch {
	case out.Err != nil:
		update.ErrorDelta = 1
	case out.Screenshot:
		update.ScreenshotDelta = 1
	default:
		update.OtherDelta = 1
	}

	select {
	case updates <- update:
	case <-ctx.Done():
	}
}
