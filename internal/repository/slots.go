package repository

import (
	"context"

	"bookingcore/internal/record"
	"bookingcore/pkg/domain"
)

// Slots stores service time slots under the slots key.
type Slots struct {
	*record.Collection[domain.Slot]
	now Clock
}

// NewSlots binds the slot repository to medium.
func NewSlots(medium domain.Medium, now Clock) *Slots {
	if now == nil {
		now = systemClock
	}
	return &Slots{Collection: record.NewCollection[domain.Slot](medium, domain.KeySlots), now: now}
}

// FindByServiceID returns every slot of a service.
func (r *Slots) FindByServiceID(ctx context.Context, serviceID string) ([]domain.Slot, error) {
	return r.Filter(ctx, func(s domain.Slot) bool { return s.ServiceID == serviceID })
}

// FindFutureByServiceID returns the slots of a service that start after now.
func (r *Slots) FindFutureByServiceID(ctx context.Context, serviceID string) ([]domain.Slot, error) {
	now := r.now()
	return r.Filter(ctx, func(s domain.Slot) bool {
		return s.ServiceID == serviceID && s.IsFuture(now)
	})
}

// FindFuture returns every slot that starts after now.
func (r *Slots) FindFuture(ctx context.Context) ([]domain.Slot, error) {
	now := r.now()
	return r.Filter(ctx, func(s domain.Slot) bool { return s.IsFuture(now) })
}

// DeleteByServiceID removes every slot of a service and returns how many were removed.
func (r *Slots) DeleteByServiceID(ctx context.Context, serviceID string) (int, error) {
	return r.DeleteWhere(ctx, func(s domain.Slot) bool { return s.ServiceID == serviceID })
}
