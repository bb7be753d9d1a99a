package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}

	timer := collector.Start("test")
	timer.End()

	child := timer.Child("child")
	child.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	assert.Equal(t, 0, buf.Len(), "NoOp collector should produce no output")
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	collector := FromContext(context.Background())

	assert.True(t, collector != nil, "FromContext should never return nil")
	assert.True(t, func() bool { _, ok := collector.(noOpCollector); return ok }(), "FromContext should return noOpCollector when none present")
}

func TestWithCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	retrieved, ok := FromContext(ctx).(*TimingCollector)
	assert.True(t, ok && retrieved == collector, "FromContext should return the same collector that was added")
}

func TestTimingCollectorBasic(t *testing.T) {
	collector := NewTimingCollector()

	timer := collector.Start("ledger.process")
	time.Sleep(10 * time.Millisecond)
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	output := buf.String()
	assert.True(t, strings.Contains(output, "ledger.process"), "Output should contain operation name")
	assert.True(t, strings.Contains(output, "ms"), "Output should contain duration")
}

func TestTimingCollectorHierarchical(t *testing.T) {
	collector := NewTimingCollector()

	root := collector.Start("ledger.process")
	time.Sleep(5 * time.Millisecond)

	decorate := root.Child("decorate")
	time.Sleep(5 * time.Millisecond)
	decorate.End()

	fold := root.Child("fold")
	time.Sleep(5 * time.Millisecond)
	fold.End()

	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	output := buf.String()
	assert.True(t, strings.Contains(output, "ledger.process"), "Output should contain the root timer")
	assert.True(t, strings.Contains(output, "decorate"), "Output should contain 'decorate'")
	assert.True(t, strings.Contains(output, "fold"), "Output should contain 'fold'")
	assert.True(t, strings.Contains(output, "├─") || strings.Contains(output, "└─"), "Output should contain tree structure")
}

func TestTimingCollectorStartNestsUnderRunningTimer(t *testing.T) {
	// A Start() issued while another timer is in flight nests under it,
	// so code holding only the collector still lands in the right subtree.
	collector := NewTimingCollector()

	root := collector.Start("ledger.process")
	nested := collector.Start("decorate")
	nested.End()
	root.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "└─ "), "nested Start should render as a child, got %q", lines[1])
}

func TestTimingCollectorDeepNesting(t *testing.T) {
	collector := NewTimingCollector()

	t1 := collector.Start("ledger.process")
	t2 := t1.Child("fold")
	t3 := t2.Child("spec:1")
	time.Sleep(5 * time.Millisecond)
	t3.End()
	t2.End()
	t1.End()

	var buf bytes.Buffer
	collector.Report(&buf)

	output := buf.String()
	assert.True(t, strings.Contains(output, "spec:1"), "Output should contain the innermost timer")

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "spec:1") {
			assert.True(t, strings.Contains(line, "   ") || strings.Contains(line, "│  "), "innermost timer should be indented")
		}
	}
}

func TestWithThroughput(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"fold (40 specs)", 10 * time.Millisecond, "fold (40 specs, 4.0/ms)"},
		{"fold (0 specs)", 10 * time.Millisecond, "fold (0 specs)"},
		{"decorate", 10 * time.Millisecond, "decorate"},
		{"fold (nonsense specs)", 10 * time.Millisecond, "fold (nonsense specs)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, withThroughput(tt.name, tt.duration))
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		// Microsecond precision for < 1ms
		{100 * time.Microsecond, "100µs"},
		{500 * time.Microsecond, "500µs"},
		{999 * time.Microsecond, "999µs"},
		// Exact milliseconds (no rounding indicator)
		{1 * time.Millisecond, "1ms"},
		{10 * time.Millisecond, "10ms"},
		{100 * time.Millisecond, "100ms"},
		{999 * time.Millisecond, "999ms"},
		// Rounded milliseconds (with ~ indicator when precision lost >= 50µs)
		{1*time.Millisecond + 50*time.Microsecond, "~1ms"},
		{1*time.Millisecond + 100*time.Microsecond, "~1ms"},
		{5*time.Millisecond + 500*time.Microsecond, "~6ms"}, // 5.5ms rounds up to 6ms
		// Below rounding threshold (no ~ indicator)
		{1*time.Millisecond + 49*time.Microsecond, "1ms"},
		// Seconds
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
		{2 * time.Second, "2.00s"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.duration)
		assert.Equal(t, tt.want, got, "formatDuration mismatch")
	}
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	collector := NewTimingCollector()

	var buf bytes.Buffer
	collector.Report(&buf)

	assert.Equal(t, 0, buf.Len(), "Empty collector should produce no output")
}
