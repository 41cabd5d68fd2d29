package repository

import (
	"context"
	"strings"

	"bookingcore/internal/record"
	"bookingcore/pkg/domain"
)

// Services stores bookable services under the services key.
type Services struct {
	*record.Collection[domain.Service]
}

// NewServices binds the service repository to medium.
func NewServices(medium domain.Medium) *Services {
	return &Services{Collection: record.NewCollection[domain.Service](medium, domain.KeyServices)}
}

// FindByName looks a service up by exact name, ignoring case.
func (r *Services) FindByName(ctx context.Context, name string) (domain.Service, bool, error) {
	return r.Find(ctx, func(s domain.Service) bool {
		return strings.EqualFold(s.Name, name)
	})
}

// Search returns services whose name or description contains query, ignoring case.
func (r *Services) Search(ctx context.Context, query string) ([]domain.Service, error) {
	needle := strings.ToLower(query)
	return r.Filter(ctx, func(s domain.Service) bool {
		if strings.Contains(strings.ToLower(s.Name), needle) {
			return true
		}
		return s.Description != nil && strings.Contains(strings.ToLower(*s.Description), needle)
	})
}
