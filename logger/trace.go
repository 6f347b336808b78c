package logger

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// OperationTrace represents one traced call into the engine — a
// Set/Get/SetPrototype/Intern call — broken into named spans, adapted
// from entitydb's HTTP request tracing (logger/trace.go) for a library
// with no request/response lifecycle: the unit of tracing here is a
// single public-surface call, not an HTTP round trip.
type OperationTrace struct {
	TraceID     string
	Operation   string
	StartTime   time.Time
	GoroutineID int
	mu          sync.Mutex
	spans       []OperationSpan
	isActive    bool
}

// OperationSpan is a named sub-step within an OperationTrace, such as
// "intern.probe" or "store.set".
type OperationSpan struct {
	Name        string
	StartTime   time.Time
	EndTime     time.Time
	GoroutineID int
	Attributes  map[string]string
}

var (
	activeTraces   = make(map[string]*OperationTrace)
	activeTracesMu sync.RWMutex

	traceCounter uint64

	tracingEnabled atomic.Bool
)

// EnableTracing turns operation tracing on or off globally.
func EnableTracing(enabled bool) {
	tracingEnabled.Store(enabled)
	if enabled {
		Info("operation tracing enabled")
	} else {
		Info("operation tracing disabled")
	}
}

// IsTracingEnabled reports whether operation tracing is active.
func IsTracingEnabled() bool {
	return tracingEnabled.Load()
}

// StartTrace begins a new trace for operation (e.g. "dynobj.Set",
// "prototype.SetPrototype", "intern.Intern"). Returns nil when tracing is
// disabled, so callers can unconditionally call methods on the result —
// every method is a no-op on a nil receiver.
func StartTrace(operation string) *OperationTrace {
	if !IsTracingEnabled() {
		return nil
	}

	traceID := fmt.Sprintf("trace_%d_%d", time.Now().UnixNano(), atomic.AddUint64(&traceCounter, 1))

	ctx := &OperationTrace{
		TraceID:     traceID,
		Operation:   operation,
		StartTime:   time.Now(),
		GoroutineID: getGoroutineID(),
		spans:       make([]OperationSpan, 0),
		isActive:    true,
	}

	activeTracesMu.Lock()
	activeTraces[traceID] = ctx
	activeTracesMu.Unlock()

	Trace("[TRACE_START] ID=%s Op=%s Goroutine=%d", traceID, operation, ctx.GoroutineID)

	return ctx
}

// StartSpan begins a named span within the trace, with optional
// key=value attribute strings.
func (tc *OperationTrace) StartSpan(name string, attributes ...string) {
	if tc == nil || !tc.isActive {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	span := OperationSpan{
		Name:        name,
		StartTime:   time.Now(),
		GoroutineID: getGoroutineID(),
		Attributes:  make(map[string]string),
	}
	for _, attr := range attributes {
		parts := strings.SplitN(attr, "=", 2)
		if len(parts) == 2 {
			span.Attributes[parts[0]] = parts[1]
		}
	}

	tc.spans = append(tc.spans, span)

	elapsed := time.Since(tc.StartTime)
	Trace("[SPAN_START] Trace=%s Span=%s Elapsed=%v Attrs=%v", tc.TraceID, name, elapsed, span.Attributes)
}

// EndSpan completes the most recently started open span with the given
// name.
func (tc *OperationTrace) EndSpan(name string) {
	if tc == nil || !tc.isActive {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	for i := len(tc.spans) - 1; i >= 0; i-- {
		if tc.spans[i].Name == name && tc.spans[i].EndTime.IsZero() {
			tc.spans[i].EndTime = time.Now()
			duration := tc.spans[i].EndTime.Sub(tc.spans[i].StartTime)
			Trace("[SPAN_END] Trace=%s Span=%s Duration=%v", tc.TraceID, name, duration)
			return
		}
	}
}

// EndTrace completes the trace and logs a summary, including a warning
// for any span that was started but never closed.
func (tc *OperationTrace) EndTrace() {
	if tc == nil || !tc.isActive {
		return
	}

	tc.mu.Lock()
	tc.isActive = false
	duration := time.Since(tc.StartTime)
	tc.mu.Unlock()

	activeTracesMu.Lock()
	delete(activeTraces, tc.TraceID)
	activeTracesMu.Unlock()

	tc.mu.Lock()
	defer tc.mu.Unlock()

	Trace("[TRACE_END] ID=%s Op=%s Duration=%v Spans=%d", tc.TraceID, tc.Operation, duration, len(tc.spans))

	for _, span := range tc.spans {
		if span.EndTime.IsZero() {
			Warn("[UNCLOSED_SPAN] Trace=%s Span=%s Started=%v", tc.TraceID, span.Name, span.StartTime)
		}
	}
}

// LogLockOperation logs an intern-table lock acquisition or release, for
// diagnosing contention on GuardedTable (see dynobj's intern.go).
func LogLockOperation(traceID, lockName, operation string) {
	if !IsTracingEnabled() {
		return
	}
	Trace("[LOCK_%s] Name=%s Goroutine=%d TraceID=%s",
		strings.ToUpper(operation), lockName, getGoroutineID(), traceID)
}

// GetActiveTraces returns a human-readable summary of every in-flight
// trace, useful when diagnosing an operation that never completed.
func GetActiveTraces() []string {
	activeTracesMu.RLock()
	defer activeTracesMu.RUnlock()

	traces := make([]string, 0, len(activeTraces))
	for traceID, ctx := range activeTraces {
		duration := time.Since(ctx.StartTime)
		traces = append(traces, fmt.Sprintf("%s: %s (duration: %v)", traceID, ctx.Operation, duration))
	}
	return traces
}
