// Package domain defines the booking entities, the storage medium contract, and
// the tagged error type shared by every layer of bookingcore.
package domain

import "time"

// EntityType identifies the type of record stored in the booking domain.
type EntityType string

// Supported entity type identifiers used in errors, ids and audit entries.
const (
	// EntityUserAccount identifies a registered user account.
	EntityUserAccount EntityType = "user_account"
	// EntitySession identifies the current-session value.
	EntitySession EntityType = "session"
	// EntityService identifies a bookable service.
	EntityService EntityType = "service"
	// EntitySlot identifies a time slot of a service.
	EntitySlot EntityType = "slot"
	// EntityReservation identifies a user's reservation of a slot.
	EntityReservation EntityType = "reservation"
)

// Medium keys under which each collection is serialised.
const (
	KeyServices     = "services"
	KeySlots        = "slots"
	KeyReservations = "reservations"
	KeyUserAccounts = "userAccounts"
	KeyCurrentUser  = "currentUser"
)

// Identifier prefixes handed to the id generator.
const (
	PrefixUserAccount = "usr"
	PrefixService     = "svc"
	PrefixSlot        = "slt"
	PrefixReservation = "res"
)

// Record is implemented by every entity persisted in a keyed collection.
type Record interface {
	RecordID() string
}

// UserAccount is a registered user profile. Email is stored lowercase and is
// unique across accounts.
type UserAccount struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone,omitempty"`
	IsAdmin   bool       `json:"isAdmin"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// RecordID implements Record.
func (u UserAccount) RecordID() string { return u.ID }

// FullName joins first and last name.
func (u UserAccount) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SessionUser is the projection of the currently logged-in user.
type SessionUser struct {
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	LastLogin time.Time `json:"lastLogin"`
}

// Service is a bookable offering. Duration is expressed in minutes.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Duration    *int      `json:"duration,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecordID implements Record.
func (s Service) RecordID() string { return s.ID }

// Slot is a schedulable time window for a service with a booking capacity.
type Slot struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"serviceId"`
	Datetime  time.Time `json:"datetime"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordID implements Record.
func (s Slot) RecordID() string { return s.ID }

// IsFuture reports whether the slot starts strictly after now.
func (s Slot) IsFuture(now time.Time) bool {
	return s.Datetime.After(now)
}

// Reservation binds one user to one slot.
type Reservation struct {
	ID        string    `json:"id"`
	SlotID    string    `json:"slotId"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordID implements Record.
func (r Reservation) RecordID() string { return r.ID }

// ReservationWithDetails joins a reservation with its slot and service.
type ReservationWithDetails struct {
	Reservation
	ServiceName        string    `json:"serviceName"`
	SlotDatetime       time.Time `json:"slotDatetime"`
	ServiceDescription *string   `json:"serviceDescription,omitempty"`
	ServiceDuration    *int      `json:"serviceDuration,omitempty"`
}
