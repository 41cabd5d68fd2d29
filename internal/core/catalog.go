package core

import (
	"context"
	"strings"

	"bookingcore/pkg/domain"
)

// ServiceInput carries the fields of a new service.
type ServiceInput struct {
	Name        string
	Description *string
	Duration    *int
}

// ServiceUpdate lists the fields to change. Nil fields are left untouched.
type ServiceUpdate struct {
	Name        *string
	Description *string
	Duration    *int
}

// CatalogService administers bookable services.
type CatalogService struct {
	rt *runtime
}

// All returns every service in creation order.
func (s *CatalogService) All(ctx context.Context) ([]domain.Service, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Services.List(ctx)
}

// Get returns the service with the given id.
func (s *CatalogService) Get(ctx context.Context, id string) (domain.Service, bool, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Services.FindByID(ctx, id)
}

// Search matches query against service names and descriptions, ignoring case.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Service, error) {
	s.rt.mu.Lock()
	defer s.rt.mu.Unlock()
	return s.rt.repos.Services.Search(ctx, query)
}

// Create validates and stores a new service.
func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (domain.Service, error) {
	var created domain.Service
	err := s.rt.mutate(ctx, "create_service", "", func(ctx context.Context) (string, error) {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return "", domain.Validation(domain.EntityService, "name", "Service name is required")
		}
		if err := s.ensureNameFree(ctx, name, ""); err != nil {
			return "", err
		}
		if err := validateDuration(in.Duration); err != nil {
			return "", err
		}
		svc := domain.Service{
			ID:          s.rt.opts.ids.Generate(domain.PrefixService),
			Name:        name,
			Description: trimmed(in.Description),
			Duration:    copyInt(in.Duration),
			CreatedAt:   s.rt.now(),
		}
		var err error
		created, err = s.rt.repos.Services.Create(ctx, svc)
		return created.ID, err
	})
	return created, err
}

// Update changes the supplied fields of a service.
func (s *CatalogService) Update(ctx context.Context, id string, in ServiceUpdate) (domain.Service, error) {
	var updated domain.Service
	err := s.rt.mutate(ctx, "update_service", "", func(ctx context.Context) (string, error) {
		if _, ok, err := s.rt.repos.Services.FindByID(ctx, id); err != nil {
			return id, err
		} else if !ok {
			return id, domain.NotFound(domain.EntityService, id, "Service not found")
		}
		var name string
		if in.Name != nil {
			name = strings.TrimSpace(*in.Name)
			if name == "" {
				return id, domain.Validation(domain.EntityService, "name", "Service name cannot be empty")
			}
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return id, err
			}
		}
		if err := validateDuration(in.Duration); err != nil {
			return id, err
		}
		var (
			ok  bool
			err error
		)
		updated, ok, err = s.rt.repos.Services.Update(ctx, id, func(svc *domain.Service) {
			if in.Name != nil {
				svc.Name = name
			}
			if in.Description != nil {
				svc.Description = trimmed(in.Description)
			}
			if in.Duration != nil {
				svc.Duration = copyInt(in.Duration)
			}
		})
		if err == nil && !ok {
			err = domain.NotFound(domain.EntityService, id, "Service not found")
		}
		return id, err
	})
	return updated, err
}

// Delete removes a service together with its slots and their reservations.
// The cascade is a sequence of independent writes.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.rt.mutate(ctx, "delete_service", "", func(ctx context.Context) (string, error) {
		if _, ok, err := s.rt.repos.Services.FindByID(ctx, id); err != nil {
			return id, err
		} else if !ok {
			return id, domain.NotFound(domain.EntityService, id, "Service not found")
		}
		slots, err := s.rt.repos.Slots.FindByServiceID(ctx, id)
		if err != nil {
			return id, err
		}
		for _, slot := range slots {
			if _, err := s.rt.repos.Reservations.DeleteBySlotID(ctx, slot.ID); err != nil {
				return id, err
			}
		}
		if _, err := s.rt.repos.Slots.DeleteByServiceID(ctx, id); err != nil {
			return id, err
		}
		_, err = s.rt.repos.Services.Delete(ctx, id)
		return id, err
	})
}

func (s *CatalogService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, ok, err := s.rt.repos.Services.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if ok && existing.ID != selfID {
		return domain.Conflict(domain.EntityService, existing.ID, "A service with this name already exists")
	}
	return nil
}

func validateDuration(d *int) error {
	if d != nil && *d <= 0 {
		return domain.Validation(domain.EntityService, "duration", "Duration must be a positive number")
	}
	return nil
}

// trimmed returns a trimmed copy of s. Blank text becomes nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
