package core

import (
	"context"
	"sort"

	"bookingcore/pkg/domain"
)

// BookingService creates and cancels reservations.
type BookingService struct {
	rt *runtime
}

// Create books slotID for userEmail. The slot must exist and be in the
// future, the user may hold it only once, and it must have a place left.
func (s *BookingService) Create(ctx context.Context, slotID, userEmail string) (domain.Reservation, error) {
	var created domain.Reservation
	err := s.rt.mutate(ctx, "create_reservation", userEmail, func(ctx context.Context) (string, error) {
		slot, ok, err := s.rt.repos.Slots.FindByID(ctx, slotID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.NotFound(domain.EntitySlot, slotID, "Slot not found")
		}
		if !slot.IsFuture(s.rt.now()) {
			return "", domain.Validation(domain.EntitySlot, "datetime", "Cannot book a slot in the past")
		}
		dup, err := s.rt.repos.Reservations.ExistsByUserAndSlot(ctx, userEmail, slotID)
		if err != nil {
			return "", err
		}
		if dup {
			return "", domain.Conflict(domain.EntityReservation, slotID, "You have already booked this slot")
		}
		count, err := s.rt.repos.Reservations.CountBySlotID(ctx, slotID)
		if err != nil {
			return "", err
		}
		if count >= slot.Capacity {
			cerr := domain.Conflict(domain.EntitySlot, slotID, "This slot is fully booked")
			cerr.Limit = slot.Capacity
			return "", cerr
		}
		created, err = s.rt.repos.Reservations.Create(ctx, domain.Reservation{
			ID:        s.rt.opts.ids.Generate(domain.PrefixReservation),
			SlotID:    slotID,
			UserEmail: userEmail,
			CreatedAt: s.rt.now(),
		})
		return created.ID, err
	})
	return created, err
}

// Cancel removes a reservation owned by userEmail. A reservation whose slot
// has already been deleted can always be cancelled.
func (s *BookingService) Cancel(ctx context.Context, reservationID, userEmail string) error {
	return s.rt.mutate(ctx, "cancel_reservation", userEmail, func(ctx context.Context) (string, error) {
		res, ok, err := s.rt.repos.Reservations.FindByID(ctx, reservationID)
		if err != nil {
			return reservationID, err
		}
		if !ok {
			return reservationID, domain.NotFound(domain.EntityReservation, reservationID, "Reservation not found")
		}
		if res.UserEmail != userEmail {
			return reservationID, domain.Unauthorized(domain.EntityReservation, reservationID, "You can only cancel your own reservations")
		}
		slot, ok, err := s.rt.repos.Slots.FindByID(ctx, res.SlotID)
		if err != nil {
			return reservationID, err
		}
		if ok && !slot.IsFuture(s.rt.now()) {
			return reservationID, domain.Validation(domain.EntityReservation, "slotId", "Cannot cancel a reservation for a past slot")
		}
		_, err = s.rt.repos.Reservations.Delete(ctx, reservationID)
		return reservationID, err
	})
}

// Get returns the reservation with the given id.
func (s *BookingService) Get(ctx context.Context, id string) (domain.Reservation, bool, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Reservations.FindByID(ctx, id)
}

// UserReservations returns the reservations held by userEmail.
func (s *BookingService) UserReservations(ctx context.Context, userEmail string) ([]domain.Reservation, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Reservations.FindByUserEmail(ctx, userEmail)
}

// UserReservationsWithDetails joins the user's reservations with their slot
// and service, latest slot first. Reservations whose slot or service is gone
// are skipped.
func (s *BookingService) UserReservationsWithDetails(ctx context.Context, userEmail string) ([]domain.ReservationWithDetails, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.withDetails(ctx, userEmail)
}

// UserFutureReservations is UserReservationsWithDetails restricted to slots
// that have not started.
func (s *BookingService) UserFutureReservations(ctx context.Context, userEmail string) ([]domain.ReservationWithDetails, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	all, err := s.withDetails(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	now := s.rt.now()
	out := make([]domain.ReservationWithDetails, 0, len(all))
	for _, r := range all {
		if r.SlotDatetime.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *BookingService) withDetails(ctx context.Context, userEmail string) ([]domain.ReservationWithDetails, error) {
	reservations, err := s.rt.repos.Reservations.FindByUserEmail(ctx, userEmail)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReservationWithDetails, 0, len(reservations))
	for _, res := range reservations {
		slot, ok, err := s.rt.repos.Slots.FindByID(ctx, res.SlotID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		svc, ok, err := s.rt.repos.Services.FindByID(ctx, slot.ServiceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.ReservationWithDetails{
			Reservation:        res,
			ServiceName:        svc.Name,
			SlotDatetime:       slot.Datetime,
			ServiceDescription: svc.Description,
			ServiceDuration:    svc.Duration,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SlotDatetime.After(out[j].SlotDatetime)
	})
	return out, nil
}
