package core

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"bookingcore/pkg/domain"
)

const latencyKey = "latency_ms_total"

var expvarSeq uint64

var (
	_ MetricsRecorder = (*ExpvarMetricsRecorder)(nil)
	_ Tracer          = (*JSONTracer)(nil)
)

// ExpvarMetricsRecorder publishes one expvar map per booking operation. Each
// operation map holds its latency total in milliseconds and a counter per
// outcome, so rejected bookings show up as "conflict" next to "success".
type ExpvarMetricsRecorder struct {
	name string
	root *expvar.Map
	mu   sync.Mutex
}

// OperationStats is the exported view of one operation.
type OperationStats struct {
	LatencyMS float64           `json:"latency_ms_total"`
	Outcomes  map[Outcome]int64 `json:"outcomes"`
}

// NewExpvarMetricsRecorder publishes a recorder under name, or under a
// generated booking_operations_N name when name is empty.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("booking_operations_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	root := new(expvar.Map).Init()
	expvar.Publish(name, root)
	return &ExpvarMetricsRecorder{name: name, root: root}
}

// Name returns the expvar export name.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, outcome Outcome, duration time.Duration) {
	if operation == "" {
		return
	}
	stats := r.operation(operation)
	stats.AddFloat(latencyKey, float64(duration)/float64(time.Millisecond))
	stats.Add(string(outcome), 1)
}

func (r *ExpvarMetricsRecorder) operation(name string) *expvar.Map {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.root.Get(name).(*expvar.Map); ok {
		return m
	}
	m := new(expvar.Map).Init()
	r.root.Set(name, m)
	return m
}

// Snapshot copies the current counters keyed by operation.
func (r *ExpvarMetricsRecorder) Snapshot() map[string]OperationStats {
	out := make(map[string]OperationStats)
	r.root.Do(func(op expvar.KeyValue) {
		m, ok := op.Value.(*expvar.Map)
		if !ok {
			return
		}
		stats := OperationStats{Outcomes: make(map[Outcome]int64)}
		m.Do(func(kv expvar.KeyValue) {
			switch v := kv.Value.(type) {
			case *expvar.Float:
				stats.LatencyMS = v.Value()
			case *expvar.Int:
				stats.Outcomes[Outcome(kv.Key)] = v.Value()
			}
		})
		out[op.Key] = stats
	})
	return out
}

// TraceRecord is one finished span. Entity comes from the operation; Field and
// RecordID come from the domain error when there is one.
type TraceRecord struct {
	Operation  string            `json:"operation"`
	Entity     domain.EntityType `json:"entity,omitempty"`
	Outcome    Outcome           `json:"outcome"`
	Field      string            `json:"field,omitempty"`
	RecordID   string            `json:"record_id,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMS float64           `json:"duration_ms"`
	StartedAt  time.Time         `json:"started_at"`
}

// JSONTracer writes finished spans as JSON lines and keeps them for Records.
type JSONTracer struct {
	mu      sync.Mutex
	out     io.Writer
	records []TraceRecord
}

// NewJSONTracer writes spans to w. A nil writer only retains them.
func NewJSONTracer(w io.Writer) *JSONTracer {
	return &JSONTracer{out: w}
}

// Records returns the spans finished so far.
func (t *JSONTracer) Records() []TraceRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TraceRecord(nil), t.records...)
}

// Start implements Tracer.
func (t *JSONTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonSpan{tracer: t, operation: operation, started: time.Now().UTC()}
}

func (t *JSONTracer) finish(rec TraceRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, rec)
	if t.out == nil {
		return
	}
	if line, err := json.Marshal(rec); err == nil {
		_, _ = t.out.Write(append(line, '\n'))
	}
}

type jsonSpan struct {
	tracer    *JSONTracer
	operation string
	started   time.Time
}

func (s *jsonSpan) End(err error) {
	rec := TraceRecord{
		Operation:  s.operation,
		Entity:     operations[s.operation].entity,
		Outcome:    OutcomeOf(err),
		DurationMS: float64(time.Since(s.started)) / float64(time.Millisecond),
		StartedAt:  s.started,
	}
	if err != nil {
		rec.Error = err.Error()
		var de *domain.Error
		if errors.As(err, &de) {
			rec.Field = de.Field
			rec.RecordID = de.ID
		}
	}
	s.tracer.finish(rec)
}
