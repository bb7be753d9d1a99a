package telemetry

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// formatTimingTree outputs the timing tree in a hierarchical format.
// Example output:
//
//	ledger.process: 12ms
//	├─ decorate: 3ms
//	└─ fold (40 specs, 5.0/ms): 8ms
//	   ├─ spec:1: 210µs
//	   └─ spec:2: 190µs
func formatTimingTree(w io.Writer, root *timerNode) {
	duration := root.end.Sub(root.start)
	_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, formatDuration(duration))

	for i, child := range root.children {
		isLast := i == len(root.children)-1
		formatNode(w, child, "", isLast)
	}
}

// formatNode recursively formats a node and its children.
func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool) {
	duration := node.end.Sub(node.start)

	var branch, extension string
	if isLast {
		branch = "└─ "
		extension = "   "
	} else {
		branch = "├─ "
		extension = "│  "
	}

	_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, withThroughput(node.name, duration), formatDuration(duration))

	childPrefix := prefix + extension
	for i, child := range node.children {
		childIsLast := i == len(node.children)-1
		formatNode(w, child, childPrefix, childIsLast)
	}
}

// withThroughput appends a per-millisecond rate to timers named like
// "fold (40 specs)", so batch stages report how fast they chewed through
// their inputs.
func withThroughput(name string, duration time.Duration) string {
	if !strings.HasSuffix(name, " specs)") {
		return name
	}
	open := strings.LastIndex(name, "(")
	if open < 0 {
		return name
	}
	countStr := strings.TrimSuffix(name[open+1:], " specs)")
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		return name
	}
	durationMs := float64(duration.Nanoseconds()) / 1e6
	if durationMs <= 0 {
		return name
	}
	return fmt.Sprintf("%s (%d specs, %.1f/ms)", name[:open-1], count, float64(count)/durationMs)
}

// formatDuration formats a duration for display.
// Shows microseconds for < 1ms, milliseconds for < 1s, seconds for >= 1s.
// Prefixes with ~ when rounding loses significant precision.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		us := float64(d) / float64(time.Microsecond)
		return fmt.Sprintf("%.0fµs", us)
	}
	if d < time.Second {
		ms := float64(d) / float64(time.Millisecond)
		truncated := time.Duration(int(ms)) * time.Millisecond
		if d > truncated && d-truncated >= 50*time.Microsecond {
			return fmt.Sprintf("~%.0fms", ms)
		}
		return fmt.Sprintf("%.0fms", ms)
	}
	s := float64(d) / float64(time.Second)
	return fmt.Sprintf("%.2fs", s)
}
