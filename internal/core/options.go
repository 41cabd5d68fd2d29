package core

import (
	"context"
	"time"

	"bookingcore/internal/idgen"
	"bookingcore/pkg/domain"
)

// Clock supplies the current instant to the booking logic.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// IDGenerator mints record identifiers for a prefix.
type IDGenerator interface {
	Generate(prefix string) string
}

// MetricsRecorder observes the outcome and latency of each mutating operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, outcome Outcome, duration time.Duration)
}

// Outcome labels how an operation ended: success, the kind of domain error
// it returned, or internal for storage and other unclassified failures.
type Outcome string

// Outcomes that are not domain error kinds.
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeInternal Outcome = "internal"
)

// OutcomeOf maps an operation error to its outcome label.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	if kind, ok := domain.KindOf(err); ok {
		return Outcome(kind)
	}
	return OutcomeInternal
}

// Tracer starts a span around each mutating operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended with the operation error, nil on success.
type TraceSpan interface {
	End(err error)
}

// AuditRecorder receives one entry per mutating operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditStatus is the outcome recorded in an audit entry.
type AuditStatus string

// Audit outcomes.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditAction is the kind of change an operation performs.
type AuditAction string

// Audit actions.
const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
	ActionLogin  AuditAction = "login"
	ActionLogout AuditAction = "logout"
)

// AuditEntry describes one mutating operation.
type AuditEntry struct {
	Operation string            `json:"operation"`
	Entity    domain.EntityType `json:"entity"`
	Action    AuditAction       `json:"action"`
	EntityID  string            `json:"entity_id,omitempty"`
	Actor     string            `json:"actor,omitempty"`
	Status    AuditStatus       `json:"status"`
	Outcome   Outcome           `json:"outcome,omitempty"`
	Error     string            `json:"error,omitempty"`
	Duration  time.Duration     `json:"duration"`
	Timestamp time.Time         `json:"timestamp"`
}

// Option configures a Core.
type Option func(*options)

type options struct {
	clock    Clock
	ids      IDGenerator
	admins   domain.AdminAllowlist
	location *time.Location
	metrics  MetricsRecorder
	tracer   Tracer
	audit    AuditRecorder
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = idgen.New(idgen.WithClock(o.clock.Now))
	}
	return o
}

func defaultOptions() options {
	clock := ClockFunc(func() time.Time { return time.Now().UTC() })
	return options{
		clock:    clock,
		admins:   domain.NewAdminAllowlist(domain.DefaultAdminEmails...),
		location: time.UTC,
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		audit:    noopAudit{},
	}
}

// WithClock overrides the clock used for timestamps and future checks. The
// default id generator follows the same clock.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDGenerator overrides the identifier source. Without it ids are stamped
// from the configured clock.
func WithIDGenerator(ids IDGenerator) Option {
	return func(o *options) {
		if ids != nil {
			o.ids = ids
		}
	}
}

// WithAdminEmails replaces the admin allowlist.
func WithAdminEmails(emails ...string) Option {
	return func(o *options) {
		o.admins = domain.NewAdminAllowlist(emails...)
	}
}

// WithLocation sets the zone used to read datetimes that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithMetricsRecorder installs a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer installs a tracer.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithAuditRecorder installs an audit recorder.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(o *options) {
		if a != nil {
			o.audit = a
		}
	}
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, Outcome, time.Duration) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}
