package repository

import (
	"context"

	"bookingcore/internal/record"
	"bookingcore/pkg/domain"
)

// Reservations stores bookings under the reservations key.
type Reservations struct {
	*record.Collection[domain.Reservation]
}

// NewReservations binds the reservation repository to medium.
func NewReservations(medium domain.Medium) *Reservations {
	return &Reservations{Collection: record.NewCollection[domain.Reservation](medium, domain.KeyReservations)}
}

// FindByUserEmail returns the reservations held by email.
func (r *Reservations) FindByUserEmail(ctx context.Context, email string) ([]domain.Reservation, error) {
	return r.Filter(ctx, func(res domain.Reservation) bool { return res.UserEmail == email })
}

// FindBySlotID returns the reservations against a slot.
func (r *Reservations) FindBySlotID(ctx context.Context, slotID string) ([]domain.Reservation, error) {
	return r.Filter(ctx, func(res domain.Reservation) bool { return res.SlotID == slotID })
}

// ExistsByUserAndSlot reports whether email already holds a reservation for slotID.
func (r *Reservations) ExistsByUserAndSlot(ctx context.Context, email, slotID string) (bool, error) {
	_, ok, err := r.Find(ctx, func(res domain.Reservation) bool {
		return res.UserEmail == email && res.SlotID == slotID
	})
	return ok, err
}

// CountBySlotID returns the number of reservations against a slot.
func (r *Reservations) CountBySlotID(ctx context.Context, slotID string) (int, error) {
	list, err := r.FindBySlotID(ctx, slotID)
	return len(list), err
}

// DeleteBySlotID removes every reservation against a slot and returns how many were removed.
func (r *Reservations) DeleteBySlotID(ctx context.Context, slotID string) (int, error) {
	return r.DeleteWhere(ctx, func(res domain.Reservation) bool { return res.SlotID == slotID })
}
