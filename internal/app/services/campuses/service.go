// Package campuses manages the HKU campus reference points used for
// distance-ranked accommodation search.
package campuses

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/campus"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// Service manages campus records.
type Service struct {
	store storage.CampusStore
	log   *logger.Logger
}

// New constructs a campus service.
func New(store storage.CampusStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("campuses")
	}
	return &Service{store: store, log: log}
}

// Create registers a campus.
func (s *Service) Create(ctx context.Context, name string, latitude, longitude float64) (campus.Campus, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return campus.Campus{}, fmt.Errorf("name is required")
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return campus.Campus{}, err
	}

	c, err := s.store.CreateCampus(ctx, campus.Campus{
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
	})
	if err != nil {
		return campus.Campus{}, err
	}
	s.log.WithField("campus_id", c.ID).WithField("name", c.Name).Info("campus created")
	return c, nil
}

// Update changes a campus's name or coordinates.
func (s *Service) Update(ctx context.Context, id string, name *string, latitude, longitude *float64) (campus.Campus, error) {
	c, err := s.store.GetCampus(ctx, id)
	if err != nil {
		return campus.Campus{}, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return campus.Campus{}, fmt.Errorf("name cannot be empty")
		}
		c.Name = trimmed
	}
	if latitude != nil {
		c.Latitude = *latitude
	}
	if longitude != nil {
		c.Longitude = *longitude
	}
	if err := validateCoordinates(c.Latitude, c.Longitude); err != nil {
		return campus.Campus{}, err
	}

	c, err = s.store.UpdateCampus(ctx, c)
	if err != nil {
		return campus.Campus{}, err
	}
	s.log.WithField("campus_id", c.ID).Info("campus updated")
	return c, nil
}

// Get retrieves one campus.
func (s *Service) Get(ctx context.Context, id string) (campus.Campus, error) {
	return s.store.GetCampus(ctx, id)
}

// List returns all campuses.
func (s *Service) List(ctx context.Context) ([]campus.Campus, error) {
	return s.store.ListCampuses(ctx)
}

// Delete removes a campus.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCampus(ctx, id); err != nil {
		return err
	}
	s.log.WithField("campus_id", id).Info("campus deleted")
	return nil
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}
