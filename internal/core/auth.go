package core

import (
	"context"
	"strings"

	"bookingcore/pkg/domain"
)

// RegisterInput carries the fields of a new account. Phone is optional.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// AuthService registers accounts and tracks the current session. Identity is
// an unverified email address.
type AuthService struct {
	rt *runtime
}

// Register validates and stores a new account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.UserAccount, error) {
	var created domain.UserAccount
	email := domain.NormalizeEmail(in.Email)
	err := s.rt.mutate(ctx, "register", email, func(ctx context.Context) (string, error) {
		if !domain.ValidEmail(in.Email) {
			return "", domain.Validation(domain.EntityUserAccount, "email", "Invalid email format")
		}
		first := strings.TrimSpace(in.FirstName)
		if first == "" {
			return "", domain.Validation(domain.EntityUserAccount, "firstName", "First name is required")
		}
		last := strings.TrimSpace(in.LastName)
		if last == "" {
			return "", domain.Validation(domain.EntityUserAccount, "lastName", "Last name is required")
		}
		exists, err := s.rt.repos.Users.EmailExists(ctx, email)
		if err != nil {
			return "", err
		}
		if exists {
			return "", domain.Conflict(domain.EntityUserAccount, email, "An account with this email already exists")
		}
		phone := strings.TrimSpace(in.Phone)
		if phone != "" && !domain.ValidPhone(phone) {
			return "", domain.Validation(domain.EntityUserAccount, "phone", "Invalid phone number format")
		}
		account := domain.UserAccount{
			ID:        s.rt.opts.ids.Generate(domain.PrefixUserAccount),
			Email:     email,
			FirstName: first,
			LastName:  last,
			Phone:     phone,
			IsAdmin:   s.rt.opts.admins.Contains(email),
			CreatedAt: s.rt.now(),
		}
		created, err = s.rt.repos.Users.Create(ctx, account)
		return created.ID, err
	})
	return created, err
}

// Login opens a session for a registered email.
func (s *AuthService) Login(ctx context.Context, email string) (domain.SessionUser, error) {
	var session domain.SessionUser
	normalized := domain.NormalizeEmail(email)
	err := s.rt.mutate(ctx, "login", normalized, func(ctx context.Context) (string, error) {
		if !domain.ValidEmail(email) {
			return "", domain.Validation(domain.EntitySession, "email", "Invalid email format")
		}
		account, ok, err := s.rt.repos.Users.UpdateLastLogin(ctx, normalized)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", domain.NotFound(domain.EntityUserAccount, normalized, "No account found for this email. Please register first")
		}
		session = domain.SessionUser{
			Email:     account.Email,
			IsAdmin:   s.rt.opts.admins.Contains(account.Email),
			LastLogin: *account.LastLogin,
		}
		return account.ID, s.rt.repos.Sessions.Save(ctx, session)
	})
	if err != nil {
		return domain.SessionUser{}, err
	}
	return session, nil
}

// Logout clears the current session. It succeeds when nobody is logged in.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.rt.mutate(ctx, "logout", "", func(ctx context.Context) (string, error) {
		return "", s.rt.repos.Sessions.Clear(ctx)
	})
}

// CurrentUser returns the logged-in user, if any.
func (s *AuthService) CurrentUser(ctx context.Context) (domain.SessionUser, bool, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Sessions.Current(ctx)
}

// IsAuthenticated reports whether a session exists.
func (s *AuthService) IsAuthenticated(ctx context.Context) (bool, error) {
	_, ok, err := s.CurrentUser(ctx)
	return ok, err
}

// IsAdmin reports whether the current session belongs to an administrator.
// It is false without a session.
func (s *AuthService) IsAdmin(ctx context.Context) (bool, error) {
	user, ok, err := s.CurrentUser(ctx)
	if err != nil || !ok {
		return false, err
	}
	return user.IsAdmin, nil
}

// Account returns the registered profile for email.
func (s *AuthService) Account(ctx context.Context, email string) (domain.UserAccount, bool, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Users.FindByEmail(ctx, domain.NormalizeEmail(email))
}
