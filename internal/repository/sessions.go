package repository

import (
	"context"

	"bookingcore/internal/record"
	"bookingcore/pkg/domain"
)

// Sessions holds the single current-session value under the currentUser key.
type Sessions struct {
	value *record.Value[domain.SessionUser]
}

// NewSessions binds the session value to medium.
func NewSessions(medium domain.Medium) *Sessions {
	return &Sessions{value: record.NewValue[domain.SessionUser](medium, domain.KeyCurrentUser)}
}

// Current returns the logged-in user, if any.
func (r *Sessions) Current(ctx context.Context) (domain.SessionUser, bool, error) {
	return r.value.Load(ctx)
}

// Save overwrites the current session.
func (r *Sessions) Save(ctx context.Context, user domain.SessionUser) error {
	return r.value.Store(ctx, user)
}

// Clear ends the current session. Clearing without a session is not an error.
func (r *Sessions) Clear(ctx context.Context) error {
	return r.value.Remove(ctx)
}
