// Package accommodations manages the rental inventory: registration with
// automatic geocoding, owner deduplication, search, photos, and specialist
// inventory actions.
package accommodations

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/owner"
	auditsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/auditlog"
	"github.com/kaiyuenlam/UniHaven/internal/app/services/geocode"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// ErrLocationUnresolved is returned when an accommodation carries no
// coordinates and the address lookup cannot supply them.
var ErrLocationUnresolved = fmt.Errorf("could not resolve location data; supply latitude, longitude and geo_address manually")

// Service manages accommodation records.
type Service struct {
	store    storage.AccommodationStore
	owners   storage.OwnerStore
	campuses storage.CampusStore
	lookup   geocode.Lookup
	audit    *auditsvc.Recorder
	log      *logger.Logger
}

// New constructs an accommodation service. lookup and audit may be nil.
func New(store storage.AccommodationStore, owners storage.OwnerStore, campuses storage.CampusStore, lookup geocode.Lookup, audit *auditsvc.Recorder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("accommodations")
	}
	return &Service{
		store:    store,
		owners:   owners,
		campuses: campuses,
		lookup:   lookup,
		audit:    audit,
		log:      log,
	}
}

// OwnerInput carries nested owner details on accommodation registration.
type OwnerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CreateInput carries the fields for registering an accommodation.
type CreateInput struct {
	Name          string             `json:"name"`
	BuildingName  string             `json:"building_name"`
	Description   string             `json:"description"`
	Type          accommodation.Type `json:"type"`
	NumBedrooms   int                `json:"num_bedrooms"`
	NumBeds       int                `json:"num_beds"`
	Address       string             `json:"address"`
	GeoAddress    string             `json:"geo_address"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	AvailableFrom time.Time          `json:"available_from"`
	AvailableTo   time.Time          `json:"available_to"`
	MonthlyRent   float64            `json:"monthly_rent"`
	Owner         OwnerInput         `json:"owner"`
}

// Create registers an accommodation. The owner is deduplicated by email;
// missing coordinates are resolved through the address lookup using the
// building name.
func (s *Service) Create(ctx context.Context, in CreateInput) (accommodation.Accommodation, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.BuildingName = strings.TrimSpace(in.BuildingName)
	in.GeoAddress = strings.TrimSpace(in.GeoAddress)

	if in.Name == "" {
		return accommodation.Accommodation{}, fmt.Errorf("name is required")
	}
	if !in.Type.Valid() {
		return accommodation.Accommodation{}, fmt.Errorf("invalid accommodation type %q", in.Type)
	}
	if in.NumBedrooms <= 0 || in.NumBeds <= 0 {
		return accommodation.Accommodation{}, fmt.Errorf("num_bedrooms and num_beds must be positive")
	}
	if in.MonthlyRent <= 0 {
		return accommodation.Accommodation{}, fmt.Errorf("monthly_rent must be positive")
	}
	if in.AvailableFrom.IsZero() || in.AvailableTo.IsZero() || !in.AvailableTo.After(in.AvailableFrom) {
		return accommodation.Accommodation{}, fmt.Errorf("available_from must precede available_to")
	}
	if len(in.GeoAddress) > accommodation.GeoAddressMaxLen {
		return accommodation.Accommodation{}, fmt.Errorf("geo_address exceeds %d characters", accommodation.GeoAddressMaxLen)
	}

	o, err := s.resolveOwner(ctx, in.Owner)
	if err != nil {
		return accommodation.Accommodation{}, err
	}

	lat, lon, geoAddr := in.Latitude, in.Longitude, in.GeoAddress
	if lat == 0 && lon == 0 {
		if s.lookup == nil || in.BuildingName == "" {
			return accommodation.Accommodation{}, ErrLocationUnresolved
		}
		loc, err := s.lookup.Locate(ctx, in.BuildingName)
		if err != nil {
			s.log.WithError(err).WithField("building", in.BuildingName).Warn("address lookup failed")
			return accommodation.Accommodation{}, ErrLocationUnresolved
		}
		lat, lon = loc.Latitude, loc.Longitude
		if geoAddr == "" {
			geoAddr = loc.GeoAddress
			if len(geoAddr) > accommodation.GeoAddressMaxLen {
				geoAddr = geoAddr[:accommodation.GeoAddressMaxLen]
			}
		}
	}

	a := accommodation.Accommodation{
		Name:          in.Name,
		BuildingName:  in.BuildingName,
		Description:   strings.TrimSpace(in.Description),
		Type:          in.Type,
		NumBedrooms:   in.NumBedrooms,
		NumBeds:       in.NumBeds,
		Address:       strings.TrimSpace(in.Address),
		GeoAddress:    geoAddr,
		Latitude:      lat,
		Longitude:     lon,
		AvailableFrom: in.AvailableFrom.UTC(),
		AvailableTo:   in.AvailableTo.UTC(),
		MonthlyRent:   in.MonthlyRent,
		OwnerID:       o.ID,
		IsAvailable:   true,
	}
	a, err = s.store.CreateAccommodation(ctx, a)
	if err != nil {
		return accommodation.Accommodation{}, err
	}

	s.log.WithField("accommodation_id", a.ID).
		WithField("owner_id", o.ID).
		WithField("type", string(a.Type)).
		Info("accommodation created")
	s.audit.Record(ctx, "CREATE_ACCOMMODATION", auditlog.ActorSystem, "", a.ID, a.Name)
	return a, nil
}

func (s *Service) resolveOwner(ctx context.Context, in OwnerInput) (owner.Owner, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return owner.Owner{}, fmt.Errorf("owner email is required")
	}
	if existing, err := s.owners.GetOwnerByEmail(ctx, in.Email); err == nil {
		return existing, nil
	}
	if in.Name == "" {
		return owner.Owner{}, fmt.Errorf("owner name is required")
	}
	return s.owners.CreateOwner(ctx, owner.Owner{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	})
}

// UpdateInput carries optional replacement fields for an accommodation.
type UpdateInput struct {
	Name          *string             `json:"name"`
	BuildingName  *string             `json:"building_name"`
	Description   *string             `json:"description"`
	Type          *accommodation.Type `json:"type"`
	NumBedrooms   *int                `json:"num_bedrooms"`
	NumBeds       *int                `json:"num_beds"`
	Address       *string             `json:"address"`
	AvailableFrom *time.Time          `json:"available_from"`
	AvailableTo   *time.Time          `json:"available_to"`
	MonthlyRent   *float64            `json:"monthly_rent"`
	IsAvailable   *bool               `json:"is_available"`
}

// Update changes mutable fields on an accommodation.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (accommodation.Accommodation, error) {
	a, err := s.store.GetAccommodation(ctx, id)
	if err != nil {
		return accommodation.Accommodation{}, err
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return accommodation.Accommodation{}, fmt.Errorf("name cannot be empty")
		}
		a.Name = trimmed
	}
	if in.BuildingName != nil {
		a.BuildingName = strings.TrimSpace(*in.BuildingName)
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return accommodation.Accommodation{}, fmt.Errorf("invalid accommodation type %q", *in.Type)
		}
		a.Type = *in.Type
	}
	if in.NumBedrooms != nil {
		if *in.NumBedrooms <= 0 {
			return accommodation.Accommodation{}, fmt.Errorf("num_bedrooms must be positive")
		}
		a.NumBedrooms = *in.NumBedrooms
	}
	if in.NumBeds != nil {
		if *in.NumBeds <= 0 {
			return accommodation.Accommodation{}, fmt.Errorf("num_beds must be positive")
		}
		a.NumBeds = *in.NumBeds
	}
	if in.Address != nil {
		a.Address = strings.TrimSpace(*in.Address)
	}
	if in.AvailableFrom != nil {
		a.AvailableFrom = in.AvailableFrom.UTC()
	}
	if in.AvailableTo != nil {
		a.AvailableTo = in.AvailableTo.UTC()
	}
	if !a.AvailableTo.After(a.AvailableFrom) {
		return accommodation.Accommodation{}, fmt.Errorf("available_from must precede available_to")
	}
	if in.MonthlyRent != nil {
		if *in.MonthlyRent <= 0 {
			return accommodation.Accommodation{}, fmt.Errorf("monthly_rent must be positive")
		}
		a.MonthlyRent = *in.MonthlyRent
	}
	if in.IsAvailable != nil {
		a.IsAvailable = *in.IsAvailable
	}

	a, err = s.store.UpdateAccommodation(ctx, a)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	s.log.WithField("accommodation_id", a.ID).Info("accommodation updated")
	s.audit.Record(ctx, "UPDATE_ACCOMMODATION", auditlog.ActorSystem, "", a.ID, "")
	return a, nil
}

// Get retrieves one accommodation.
func (s *Service) Get(ctx context.Context, id string) (accommodation.Accommodation, error) {
	return s.store.GetAccommodation(ctx, id)
}

// List returns all accommodations.
func (s *Service) List(ctx context.Context) ([]accommodation.Accommodation, error) {
	return s.store.ListAccommodations(ctx)
}

// Delete removes an accommodation from the inventory.
func (s *Service) Delete(ctx context.Context, id, specialistID string) error {
	if _, err := s.store.GetAccommodation(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteAccommodation(ctx, id); err != nil {
		return err
	}
	s.log.WithField("accommodation_id", id).Info("accommodation deleted")
	s.audit.Record(ctx, "DELETE_ACCOMMODATION", auditlog.ActorSpecialist, specialistID, id, "")
	return nil
}

// MarkUnavailable takes an accommodation off the market.
func (s *Service) MarkUnavailable(ctx context.Context, id, specialistID string) (accommodation.Accommodation, error) {
	a, err := s.store.GetAccommodation(ctx, id)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	if !a.IsAvailable {
		return a, nil
	}
	a.IsAvailable = false
	a, err = s.store.UpdateAccommodation(ctx, a)
	if err != nil {
		return accommodation.Accommodation{}, err
	}
	s.log.WithField("accommodation_id", a.ID).Info("accommodation marked unavailable")
	s.audit.Record(ctx, "MARK_UNAVAILABLE", auditlog.ActorSpecialist, specialistID, a.ID, "")
	return a, nil
}

// ListUnavailable returns accommodations currently off the market.
func (s *Service) ListUnavailable(ctx context.Context) ([]accommodation.Accommodation, error) {
	all, err := s.store.ListAccommodations(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]accommodation.Accommodation, 0)
	for _, a := range all {
		if !a.IsAvailable {
			result = append(result, a)
		}
	}
	return result, nil
}

// AddPhoto registers a photo reference for an accommodation.
func (s *Service) AddPhoto(ctx context.Context, accommodationID, url, caption string) (accommodation.Photo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return accommodation.Photo{}, fmt.Errorf("url is required")
	}
	if _, err := s.store.GetAccommodation(ctx, accommodationID); err != nil {
		return accommodation.Photo{}, err
	}
	p, err := s.store.CreatePhoto(ctx, accommodation.Photo{
		AccommodationID: accommodationID,
		URL:             url,
		Caption:         strings.TrimSpace(caption),
	})
	if err != nil {
		return accommodation.Photo{}, err
	}
	s.log.WithField("accommodation_id", accommodationID).WithField("photo_id", p.ID).Info("photo added")
	return p, nil
}

// ListPhotos returns the photos of an accommodation.
func (s *Service) ListPhotos(ctx context.Context, accommodationID string) ([]accommodation.Photo, error) {
	if _, err := s.store.GetAccommodation(ctx, accommodationID); err != nil {
		return nil, err
	}
	return s.store.ListPhotos(ctx, accommodationID)
}

// ResolveLocation runs the address lookup for a building name.
func (s *Service) ResolveLocation(ctx context.Context, building string) (geocode.Location, error) {
	if s.lookup == nil {
		return geocode.Location{}, ErrLocationUnresolved
	}
	loc, err := s.lookup.Locate(ctx, building)
	if err != nil {
		return geocode.Location{}, err
	}
	if len(loc.GeoAddress) > accommodation.GeoAddressMaxLen {
		loc.GeoAddress = loc.GeoAddress[:accommodation.GeoAddressMaxLen]
	}
	return loc, nil
}

// SearchFilter narrows the accommodation search.
type SearchFilter struct {
	Type          accommodation.Type
	AvailableFrom *time.Time
	AvailableTo   *time.Time
	NumBeds       int
	NumBedrooms   int
	MinPrice      *float64
	MaxPrice      *float64
	CampusID      string
}

// SearchResult is an accommodation with its distance to the requested
// campus, present only when a campus was given.
type SearchResult struct {
	accommodation.Accommodation
	Distance *float64 `json:"distance,omitempty"`
}

// Search returns available accommodations matching the filter. With a
// campus, results are sorted by distance ascending and each carries the
// distance in kilometers rounded to two decimals.
func (s *Service) Search(ctx context.Context, f SearchFilter) ([]SearchResult, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, fmt.Errorf("invalid accommodation type %q", f.Type)
	}

	all, err := s.store.ListAccommodations(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for _, a := range all {
		if !a.IsAvailable {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.AvailableFrom != nil && a.AvailableFrom.After(*f.AvailableFrom) {
			continue
		}
		if f.AvailableTo != nil && a.AvailableTo.Before(*f.AvailableTo) {
			continue
		}
		if f.NumBeds > 0 && a.NumBeds < f.NumBeds {
			continue
		}
		if f.NumBedrooms > 0 && a.NumBedrooms < f.NumBedrooms {
			continue
		}
		if f.MinPrice != nil && a.MonthlyRent < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && a.MonthlyRent > *f.MaxPrice {
			continue
		}
		results = append(results, SearchResult{Accommodation: a})
	}

	if f.CampusID != "" {
		c, err := s.campuses.GetCampus(ctx, f.CampusID)
		if err != nil {
			return nil, fmt.Errorf("campus %s: %w", f.CampusID, err)
		}
		for i := range results {
			d := math.Round(results[i].DistanceKm(c.Latitude, c.Longitude)*100) / 100
			results[i].Distance = &d
		}
		sort.SliceStable(results, func(i, j int) bool {
			return *results[i].Distance < *results[j].Distance
		})
	}
	return results, nil
}
