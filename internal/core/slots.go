package core

import (
	"context"
	"fmt"
	"time"

	"bookingcore/pkg/domain"
)

// SlotInput carries the fields of a new slot. Datetime is parsed with
// domain.ParseDatetime in the configured location.
type SlotInput struct {
	ServiceID string
	Datetime  string
	Capacity  int
}

// SlotUpdate lists the fields to change. Nil fields are left untouched.
type SlotUpdate struct {
	ServiceID *string
	Datetime  *string
	Capacity  *int
}

// SlotService administers the time slots of services.
type SlotService struct {
	rt *runtime
}

// Get returns the slot with the given id.
func (s *SlotService) Get(ctx context.Context, id string) (domain.Slot, bool, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Slots.FindByID(ctx, id)
}

// ByService returns every slot of a service.
func (s *SlotService) ByService(ctx context.Context, serviceID string) ([]domain.Slot, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Slots.FindByServiceID(ctx, serviceID)
}

// FutureByService returns the slots of a service that have not started.
func (s *SlotService) FutureByService(ctx context.Context, serviceID string) ([]domain.Slot, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Slots.FindFutureByServiceID(ctx, serviceID)
}

// AllFuture returns every slot that has not started.
func (s *SlotService) AllFuture(ctx context.Context) ([]domain.Slot, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Slots.FindFuture(ctx)
}

// AvailableCapacity returns the number of places left on a slot, 0 for an
// unknown slot.
func (s *SlotService) AvailableCapacity(ctx context.Context, id string) (int, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.availableCapacity(ctx, id)
}

// IsAvailable reports whether a slot has at least one place left.
func (s *SlotService) IsAvailable(ctx context.Context, id string) (bool, error) {
	n, err := s.AvailableCapacity(ctx, id)
	return n > 0, err
}

func (s *SlotService) availableCapacity(ctx context.Context, id string) (int, error) {
	slot, ok, err := s.rt.repos.Slots.FindByID(ctx, id)
	if err != nil || !ok {
		return 0, err
	}
	count, err := s.rt.repos.Reservations.CountBySlotID(ctx, id)
	if err != nil {
		return 0, err
	}
	return max(0, slot.Capacity-count), nil
}

// Create validates and stores a new slot.
func (s *SlotService) Create(ctx context.Context, in SlotInput) (domain.Slot, error) {
	var created domain.Slot
	err := s.rt.mutate(ctx, "create_slot", "", func(ctx context.Context) (string, error) {
		if err := s.ensureService(ctx, in.ServiceID); err != nil {
			return "", err
		}
		at, err := s.futureDatetime(in.Datetime)
		if err != nil {
			return "", err
		}
		if err := validateCapacity(in.Capacity); err != nil {
			return "", err
		}
		slot := domain.Slot{
			ID:        s.rt.opts.ids.Generate(domain.PrefixSlot),
			ServiceID: in.ServiceID,
			Datetime:  at,
			Capacity:  in.Capacity,
			CreatedAt: s.rt.now(),
		}
		created, err = s.rt.repos.Slots.Create(ctx, slot)
		return created.ID, err
	})
	return created, err
}

// Update changes the supplied fields of a slot. Capacity may not drop below
// the number of reservations already held.
func (s *SlotService) Update(ctx context.Context, id string, in SlotUpdate) (domain.Slot, error) {
	var updated domain.Slot
	err := s.rt.mutate(ctx, "update_slot", "", func(ctx context.Context) (string, error) {
		if _, ok, err := s.rt.repos.Slots.FindByID(ctx, id); err != nil {
			return id, err
		} else if !ok {
			return id, domain.NotFound(domain.EntitySlot, id, "Slot not found")
		}
		if in.ServiceID != nil {
			if err := s.ensureService(ctx, *in.ServiceID); err != nil {
				return id, err
			}
		}
		var at time.Time
		if in.Datetime != nil {
			parsed, err := s.futureDatetime(*in.Datetime)
			if err != nil {
				return id, err
			}
			at = parsed
		}
		if in.Capacity != nil {
			if err := validateCapacity(*in.Capacity); err != nil {
				return id, err
			}
			count, err := s.rt.repos.Reservations.CountBySlotID(ctx, id)
			if err != nil {
				return id, err
			}
			if *in.Capacity < count {
				verr := domain.Validation(domain.EntitySlot, "capacity",
					fmt.Sprintf("Cannot reduce capacity below %d (current number of reservations)", count))
				verr.ID = id
				verr.Limit = count
				return id, verr
			}
		}
		var (
			ok  bool
			err error
		)
		updated, ok, err = s.rt.repos.Slots.Update(ctx, id, func(slot *domain.Slot) {
			if in.ServiceID != nil {
				slot.ServiceID = *in.ServiceID
			}
			if in.Datetime != nil {
				slot.Datetime = at
			}
			if in.Capacity != nil {
				slot.Capacity = *in.Capacity
			}
		})
		if err == nil && !ok {
			err = domain.NotFound(domain.EntitySlot, id, "Slot not found")
		}
		return id, err
	})
	return updated, err
}

// Delete removes a slot after removing its reservations.
func (s *SlotService) Delete(ctx context.Context, id string) error {
	return s.rt.mutate(ctx, "delete_slot", "", func(ctx context.Context) (string, error) {
		if _, ok, err := s.rt.repos.Slots.FindByID(ctx, id); err != nil {
			return id, err
		} else if !ok {
			return id, domain.NotFound(domain.EntitySlot, id, "Slot not found")
		}
		if _, err := s.rt.repos.Reservations.DeleteBySlotID(ctx, id); err != nil {
			return id, err
		}
		_, err := s.rt.repos.Slots.Delete(ctx, id)
		return id, err
	})
}

func (s *SlotService) ensureService(ctx context.Context, serviceID string) error {
	_, ok, err := s.rt.repos.Services.FindByID(ctx, serviceID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound(domain.EntityService, serviceID, "Service not found")
	}
	return nil
}

func (s *SlotService) futureDatetime(value string) (at time.Time, err error) {
	at, err = domain.ParseDatetime(value, s.rt.opts.location)
	if err != nil {
		return at, domain.Validation(domain.EntitySlot, "datetime", "Invalid datetime format")
	}
	if !at.After(s.rt.now()) {
		return at, domain.Validation(domain.EntitySlot, "datetime", "Slot datetime must be in the future")
	}
	return at, nil
}

func validateCapacity(capacity int) error {
	if capacity <= 0 {
		return domain.Validation(domain.EntitySlot, "capacity", "Capacity must be a positive integer")
	}
	return nil
}
