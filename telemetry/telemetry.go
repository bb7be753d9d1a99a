// Package telemetry provides hierarchical timing collection for the fold
// pipeline. It tracks operation durations in a tree structure so a slow
// run can be broken down into its decorate/fold/per-spec stages.
//
// The telemetry system uses the context pattern for non-intrusive
// instrumentation. Collectors are passed through context and can be
// enabled/disabled without changing function signatures.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := collector.Start("ledger.process")
//	defer timer.End()
//
//	childTimer := timer.Child("decorate")
//	// ... work ...
//	childTimer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey int

const collectorKey contextKey = iota

// Collector is the main interface for collecting telemetry data.
//
// Collector implementations must be safe for concurrent calls to Start().
// Individual Timer instances returned by Start are not safe for concurrent
// use (see Timer documentation).
type Collector interface {
	// Start begins timing an operation and returns a Timer.
	// The timer should be ended with End() when the operation completes.
	// This method is safe for concurrent calls.
	Start(name string) Timer

	// Report outputs the collected telemetry to a writer.
	// The format is implementation-specific.
	Report(w io.Writer)
}

// Timer tracks a single operation's timing.
// Timers support hierarchical nesting via Child().
//
// Timers are not safe for concurrent use. A timer and all its child timers
// must be used from a single goroutine, which matches the strictly
// sequential fold this package instruments.
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child creates a nested timer under this timer.
	// The child timer will appear nested in the output.
	Child(name string) Timer
}

// WithCollector adds a collector to a context.
// The collector can be retrieved later with FromContext.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context.
// If no collector is present, returns a no-op collector that does nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
