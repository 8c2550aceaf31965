// Package workerutil launches long-running background goroutines (in
// cmd/tfm, the directory watcher) with panic recovery, exponential backoff,
// bounded retries, and a shutdown guard so a worker does not restart
// mid-teardown.
package workerutil

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	// defaultInitialBackoff is the delay before the first restart attempt
	// after a worker panic. Doubles on each subsequent attempt up to
	// defaultMaxBackoff.
	defaultInitialBackoff = 100 * time.Millisecond

	// defaultMaxBackoff caps the exponential backoff between restarts.
	defaultMaxBackoff = 5 * time.Second

	// defaultMaxRetries limits total run attempts before permanent stop.
	defaultMaxRetries = 10
)

// RecoveryOptions configures RunWithPanicRecovery. Zero-value fields use
// defaults: InitialBackoff=100ms, MaxBackoff=5s, MaxRetries=10; nil
// callbacks are no-ops.
//
// To disable retries, set MaxRetries to 1: the worker runs once, and if it
// panics OnFatal fires immediately with no restart. There is no
// infinite-retry mode.
type RecoveryOptions struct {
	// InitialBackoff is the starting restart delay. 0 means default.
	InitialBackoff time.Duration

	// MaxBackoff caps the restart delay. 0 means default.
	MaxBackoff time.Duration

	// MaxRetries bounds the total number of runs (the first run plus
	// restarts). 0 means default.
	MaxRetries int

	// OnPanic fires after each recovered panic, before the backoff wait.
	// task is the task's diagnostic name, attempt is 1-based.
	OnPanic func(task string, attempt int)

	// OnFatal fires once MaxRetries is exhausted and the worker stops for
	// good.
	OnFatal func(task string, maxRetries int)

	// IsShutdown reports whether the process is tearing down; when true the
	// loop exits immediately instead of restarting. nil is treated as
	// always false.
	IsShutdown func() bool
}

// applyDefaults returns opts with zero-value fields replaced by sensible
// defaults, without mutating the caller's struct. It also corrects
// MaxBackoff < InitialBackoff by promoting MaxBackoff upward.
func (opts RecoveryOptions) applyDefaults() RecoveryOptions {
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		slog.Warn("[worker] MaxBackoff below InitialBackoff, promoting",
			"initialBackoff", opts.InitialBackoff,
			"maxBackoff", opts.MaxBackoff,
		)
		opts.MaxBackoff = opts.InitialBackoff
	}
	return opts
}

// RunWithPanicRecovery launches fn in a new goroutine tracked by wg, with
// automatic panic recovery and exponential backoff retry. fn receives a
// context cancelled when ctx is cancelled and should select on ctx.Done()
// to detect cancellation between chunk boundaries (spec.md §4.4's
// cooperative cancellation contract).
func RunWithPanicRecovery(
	ctx context.Context,
	name string,
	wg *sync.WaitGroup,
	fn func(ctx context.Context),
	opts RecoveryOptions,
) {
	opts = opts.applyDefaults()
	wg.Add(1)
	go func() {
		defer wg.Done()
		runRecoveryLoop(ctx, name, fn, opts)
	}()
}

// runRecoveryLoop runs the recover + backoff retry loop; split out from
// RunWithPanicRecovery for direct testability.
func runRecoveryLoop(
	ctx context.Context,
	name string,
	fn func(ctx context.Context),
	opts RecoveryOptions,
) {
	restartDelay := opts.InitialBackoff

	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		panicked := false
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("[worker] recovered from panic",
						"task", name,
						"panic", r,
						"stack", string(debug.Stack()),
					)
					panicked = true
				}
			}()
			fn(ctx)
		}()

		if !panicked || ctx.Err() != nil {
			return
		}

		if opts.IsShutdown != nil && opts.IsShutdown() {
			slog.Info("[worker] shutdown detected, not restarting", "task", name)
			return
		}

		slog.Warn("[worker] restarting after panic",
			"task", name,
			"restartDelay", restartDelay,
			"attempt", attempt+1,
		)

		if opts.OnPanic != nil {
			opts.OnPanic(name, attempt+1)
		}

		if attempt == opts.MaxRetries-1 {
			break
		}

		restartTimer := time.NewTimer(restartDelay)
		select {
		case <-ctx.Done():
			restartTimer.Stop()
			return
		case <-restartTimer.C:
		}

		restartDelay = nextBackoff(restartDelay, opts.MaxBackoff)
	}

	slog.Error("[worker] exceeded max retries, giving up", "task", name, "maxRetries", opts.MaxRetries)

	if opts.OnFatal != nil {
		opts.OnFatal(name, opts.MaxRetries)
	}
}

// nextBackoff doubles current, capping at maxBackoff and guarding against
// int64 duration overflow on doubling.
func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	if current <= 0 {
		return defaultInitialBackoff
	}
	if current >= maxBackoff {
		return maxBackoff
	}
	next := current * 2
	if next > maxBackoff || next < current {
		return maxBackoff
	}
	return next
}
