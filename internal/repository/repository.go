// Package repository exposes typed accessors over the record store for each
// booking entity. Repositories answer lookups; they never enforce business rules.
package repository

import (
	"context"
	"errors"
	"time"

	"bookingcore/pkg/domain"
)

// Clock returns the current instant. Future filters read it on every call.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// Set bundles every repository bound to a single medium.
type Set struct {
	Users        *Users
	Services     *Services
	Slots        *Slots
	Reservations *Reservations
	Sessions     *Sessions
}

// NewSet binds all repositories to medium. A nil clock uses the system time.
func NewSet(medium domain.Medium, now Clock) *Set {
	if now == nil {
		now = systemClock
	}
	return &Set{
		Users:        NewUsers(medium, now),
		Services:     NewServices(medium),
		Slots:        NewSlots(medium, now),
		Reservations: NewReservations(medium),
		Sessions:     NewSessions(medium),
	}
}

// Clear removes every collection and the session value. All collections are
// attempted; the joined error reports every failure.
func (s *Set) Clear(ctx context.Context) error {
	return errors.Join(
		s.Reservations.Clear(ctx),
		s.Slots.Clear(ctx),
		s.Services.Clear(ctx),
		s.Users.Clear(ctx),
		s.Sessions.Clear(ctx),
	)
}
