// Package sim drives a controller tick by tick and polices run-level
// invariants: the watchdog bound, the collision invariant, the load
// invariant, and the unhandled-fault boundary.
package sim

import (
	"context"
	"fmt"
	"runtime/debug"

	"gridsweep/internal/control"
	"gridsweep/internal/diag"
	"gridsweep/internal/grid"
	"gridsweep/internal/model"
)

// DefaultWatchdogFactor bounds a run to factor × rows × cols ticks. A run
// that has not converged by then is assumed deadlocked between collision
// avoidance and goal pursuit.
const DefaultWatchdogFactor = 8

// Options configures one run.
type Options struct {
	// WatchdogFactor overrides DefaultWatchdogFactor when positive.
	WatchdogFactor int
	// Sink receives invariant and fault diagnostics. Nil discards them.
	Sink diag.Sink
	// OnTick, when set, observes state after every committed tick. Used
	// by the serve command to stream frames; errors from the observer are
	// ignored by the run.
	OnTick func(tick int, g *grid.Grid, c control.Controller)
}

// Result summarizes a finished, aborted, or faulted run.
type Result struct {
	Ticks      int
	Finished   bool
	Aborted    bool
	Violations int
}

// Run advances the controller until it reports finished, the watchdog
// fires, the context is canceled, or a tick faults. A fault pauses the
// run at the last committed state: the returned error carries the
// diagnostic context and the controller remains usable, so a subsequent
// Run resumes where this one stopped.
func Run(ctx context.Context, g *grid.Grid, c control.Controller, opts Options) (Result, error) {
	if g == nil || c == nil {
		return Result{}, fmt.Errorf("sim: grid and controller are required")
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.Nop()
	}
	factor := opts.WatchdogFactor
	if factor <= 0 {
		factor = DefaultWatchdogFactor
	}
	maxTicks := factor * g.Rows() * g.Cols()

	var res Result
	for tick := 1; tick <= maxTicks; tick++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := safeTick(c); err != nil {
			sink.Logf("run paused at tick %d: %v", tick, err)
			return res, fmt.Errorf("tick %d: %w (state: %s)", tick, err, c)
		}
		res.Ticks = tick
		res.Violations += checkInvariants(c, sink)
		if opts.OnTick != nil {
			opts.OnTick(tick, g, c)
		}
		if c.Finished() {
			res.Finished = true
			return res, nil
		}
	}
	res.Aborted = true
	sink.Logf("watchdog abort after %d ticks (%dx%d grid, factor %d): %s",
		maxTicks, g.Rows(), g.Cols(), factor, c)
	return res, nil
}

func safeTick(c control.Controller) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unhandled fault: %v\n%s", r, debug.Stack())
		}
	}()
	return c.Tick()
}

// checkInvariants inspects post-tick state: two agents on one cell or a
// load above capacity are controller defects. They are reported, counted,
// and never silently accepted.
func checkInvariants(c control.Controller, sink diag.Sink) int {
	violations := 0
	seen := make(map[model.Point]model.AgentKind)
	for kind, p := range c.AgentLocations() {
		if other, dup := seen[p]; dup {
			sink.Logf("collision invariant violated: %v and %v share %v", kind, other, p)
			violations++
		}
		seen[p] = kind
	}
	if lr, ok := c.(control.LoadReporter); ok {
		if load, capacity := lr.GarbageLoad(); load > capacity {
			sink.Logf("load invariant violated: %d of %d", load, capacity)
			violations++
		}
	}
	return violations
}
