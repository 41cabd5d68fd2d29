// Package core implements the booking logic: registration and sessions,
// service and slot administration, and reservations. Every component is bound
// to one storage medium through the repositories and shares a single lock so
// check-then-write sequences stay consistent within a process.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bookingcore/internal/infra/persistence/memory"
	"bookingcore/internal/repository"
	"bookingcore/pkg/domain"
)

// Core bundles the logic components over one medium.
type Core struct {
	Auth     *AuthService
	Catalog  *CatalogService
	Slots    *SlotService
	Booking  *BookingService
	medium   domain.Medium
	runtime  *runtime
	closeErr error
	once     sync.Once
}

// New constructs the booking core over medium.
func New(medium domain.Medium, opts ...Option) *Core {
	o := buildOptions(opts)
	rt := &runtime{
		repos: repository.NewSet(medium, func() time.Time { return o.clock.Now().UTC() }),
		opts:  o,
	}
	return &Core{
		Auth:    &AuthService{rt: rt},
		Catalog: &CatalogService{rt: rt},
		Slots:   &SlotService{rt: rt},
		Booking: &BookingService{rt: rt},
		medium:  medium,
		runtime: rt,
	}
}

// NewInMemory constructs an isolated core backed by a fresh process-local medium.
func NewInMemory(opts ...Option) *Core {
	return New(memory.NewStore(), opts...)
}

// Reset removes every collection and the current session.
func (c *Core) Reset(ctx context.Context) error {
	c.runtime.mu.Lock()
	defer c.runtime.mu.Unlock()
	if err := c.runtime.repos.Clear(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// Close releases the medium. Subsequent calls return the first result.
func (c *Core) Close() error {
	c.once.Do(func() {
		c.closeErr = c.medium.Close()
	})
	return c.closeErr
}

type runtime struct {
	mu    sync.Mutex
	repos *repository.Set
	opts  options
}

func (r *runtime) now() time.Time {
	return r.opts.clock.Now().UTC()
}

type operationMeta struct {
	entity domain.EntityType
	action AuditAction
}

var operations = map[string]operationMeta{
	"register":           {domain.EntityUserAccount, ActionCreate},
	"login":              {domain.EntitySession, ActionLogin},
	"logout":             {domain.EntitySession, ActionLogout},
	"create_service":     {domain.EntityService, ActionCreate},
	"update_service":     {domain.EntityService, ActionUpdate},
	"delete_service":     {domain.EntityService, ActionDelete},
	"create_slot":        {domain.EntitySlot, ActionCreate},
	"update_slot":        {domain.EntitySlot, ActionUpdate},
	"delete_slot":        {domain.EntitySlot, ActionDelete},
	"create_reservation": {domain.EntityReservation, ActionCreate},
	"cancel_reservation": {domain.EntityReservation, ActionDelete},
}

// mutate runs fn under the shared lock inside a span, then reports metrics and
// an audit entry. fn returns the id of the affected record.
func (r *runtime) mutate(ctx context.Context, op, actor string, fn func(ctx context.Context) (string, error)) error {
	started := time.Now()
	ctx, span := r.opts.tracer.Start(ctx, op)

	r.mu.Lock()
	id, err := fn(ctx)
	r.mu.Unlock()

	elapsed := time.Since(started)
	span.End(err)
	r.opts.metrics.Observe(ctx, op, OutcomeOf(err), elapsed)
	r.recordAudit(ctx, op, id, actor, elapsed, err)
	return err
}

func (r *runtime) recordAudit(ctx context.Context, op, id, actor string, elapsed time.Duration, err error) {
	meta, ok := operations[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		Action:    meta.action,
		EntityID:  id,
		Actor:     actor,
		Status:    AuditStatusSuccess,
		Duration:  elapsed,
		Timestamp: r.now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Outcome = OutcomeOf(err)
		entry.Error = err.Error()
	}
	r.opts.audit.Record(ctx, entry)
}
