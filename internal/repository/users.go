package repository

import (
	"context"
	"strings"

	"bookingcore/internal/record"
	"bookingcore/pkg/domain"
)

// Users stores registered accounts under the userAccounts key.
type Users struct {
	*record.Collection[domain.UserAccount]
	now Clock
}

// NewUsers binds the account repository to medium.
func NewUsers(medium domain.Medium, now Clock) *Users {
	if now == nil {
		now = systemClock
	}
	return &Users{Collection: record.NewCollection[domain.UserAccount](medium, domain.KeyUserAccounts), now: now}
}

// FindByEmail looks an account up by email, ignoring case.
func (r *Users) FindByEmail(ctx context.Context, email string) (domain.UserAccount, bool, error) {
	return r.Find(ctx, func(u domain.UserAccount) bool {
		return strings.EqualFold(u.Email, email)
	})
}

// EmailExists reports whether an account uses email.
func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok, err := r.FindByEmail(ctx, email)
	return ok, err
}

// UpdateLastLogin stamps the account's last login with the current time.
func (r *Users) UpdateLastLogin(ctx context.Context, email string) (domain.UserAccount, bool, error) {
	account, ok, err := r.FindByEmail(ctx, email)
	if err != nil || !ok {
		return domain.UserAccount{}, false, err
	}
	stamp := r.now().UTC()
	return r.Update(ctx, account.ID, func(u *domain.UserAccount) {
		u.LastLogin = &stamp
	})
}
