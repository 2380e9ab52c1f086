// Package profiler - Stage timings and custom metrics of a batch run.
package profiler

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Profiler records how long each pipeline stage takes and any numeric
// metrics the stages report. It is safe for concurrent use.
type Profiler struct {
	mu         sync.Mutex
	startTime  time.Time
	maxSamples int

	metrics    map[string]*metricTracker
	operations map[string]*timeTracker
}

type metricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

type timeTracker struct {
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// MetricStats summarizes one custom metric.
type MetricStats struct {
	Name    string
	Avg     float64
	Min     float64
	Max     float64
	Samples int
	Count   int64
}

// OperationStats summarizes one timed operation.
type OperationStats struct {
	Name  string
	Total time.Duration
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Count int64
}

// Snapshot is a point-in-time copy of everything recorded so far.
type Snapshot struct {
	Uptime     time.Duration
	Goroutines int
	HeapAlloc  uint64
	TotalAlloc uint64
	NumGC      uint32
	Metrics    []MetricStats
	Operations []OperationStats
}

// New creates a profiler. maxSamples bounds the window used for metric
// averages; zero keeps 600 samples.
//
// @example
// prof := profiler.New(0)
// done := prof.StartOperation("detect")
// ...
// done()
// prof.Report(logger)
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = 600
	}
	return &Profiler{
		startTime:  time.Now(),
		maxSamples: maxSamples,
		metrics:    make(map[string]*metricTracker),
		operations: make(map[string]*timeTracker),
	}
}

// RecordMetric records a custom metric value.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (p *Profiler) RecordMetric(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.metrics[name]
	if !exists {
		tracker = &metricTracker{min: value, max: value}
		p.metrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	tracker.sum += value
	if len(tracker.values) > p.maxSamples {
		// Drop the oldest sample from the window.
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}
	tracker.count++
	tracker.min = min(tracker.min, value)
	tracker.max = max(tracker.max, value)
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		p.RecordDuration(name, d)
		return d
	}
}

// RecordDuration adds one completed operation of the given duration.
func (p *Profiler) RecordDuration(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operations[name]
	if !exists {
		tracker = &timeTracker{minTime: d, maxTime: d}
		p.operations[name] = tracker
	}
	tracker.totalTime += d
	tracker.count++
	tracker.minTime = min(tracker.minTime, d)
	tracker.maxTime = max(tracker.maxTime, d)
}

// Snapshot returns the current statistics, sorted by name.
func (p *Profiler) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		Uptime:     time.Since(p.startTime),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		TotalAlloc: mem.TotalAlloc,
		NumGC:      mem.NumGC,
	}
	for name, t := range p.metrics {
		s.Metrics = append(s.Metrics, MetricStats{
			Name:    name,
			Avg:     t.sum / float64(len(t.values)),
			Min:     t.min,
			Max:     t.max,
			Samples: len(t.values),
			Count:   t.count,
		})
	}
	for name, t := range p.operations {
		s.Operations = append(s.Operations, OperationStats{
			Name:  name,
			Total: t.totalTime,
			Avg:   t.totalTime / time.Duration(t.count),
			Min:   t.minTime,
			Max:   t.maxTime,
			Count: t.count,
		})
	}
	sort.Slice(s.Metrics, func(i, j int) bool { return s.Metrics[i].Name < s.Metrics[j].Name })
	sort.Slice(s.Operations, func(i, j int) bool { return s.Operations[i].Name < s.Operations[j].Name })
	return s
}

// Report logs the snapshot: one line for the process, one per operation and
// one per metric.
func (p *Profiler) Report(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s := p.Snapshot()

	logger.Info("profile",
		slog.Duration("uptime", s.Uptime.Truncate(time.Millisecond)),
		slog.Int("goroutines", s.Goroutines),
		slog.String("heap_alloc", formatBytes(s.HeapAlloc)),
		slog.String("total_alloc", formatBytes(s.TotalAlloc)),
		slog.Uint64("gc_cycles", uint64(s.NumGC)),
	)
	for _, op := range s.Operations {
		logger.Info("operation",
			slog.String("name", op.Name),
			slog.Duration("total", op.Total.Truncate(time.Microsecond)),
			slog.Duration("avg", op.Avg.Truncate(time.Microsecond)),
			slog.Duration("min", op.Min.Truncate(time.Microsecond)),
			slog.Duration("max", op.Max.Truncate(time.Microsecond)),
			slog.Int64("count", op.Count),
		)
	}
	for _, m := range s.Metrics {
		logger.Info("metric",
			slog.String("name", m.Name),
			slog.Float64("avg", m.Avg),
			slog.Float64("min", m.Min),
			slog.Float64("max", m.Max),
			slog.Int("samples", m.Samples),
		)
	}
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
