package accommodations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/campus"
	"github.com/kaiyuenlam/UniHaven/internal/app/services/geocode"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage/memory"
)

type stubLookup struct {
	loc  geocode.Location
	err  error
	seen string
}

func (s *stubLookup) Locate(ctx context.Context, building string) (geocode.Location, error) {
	s.seen = building
	if s.err != nil {
		return geocode.Location{}, s.err
	}
	return s.loc, nil
}

func validInput() CreateInput {
	return CreateInput{
		Name:          "Flat 5C",
		BuildingName:  "Fortune Building",
		Type:          accommodation.TypeApartment,
		NumBedrooms:   2,
		NumBeds:       3,
		Address:       "33 Bonham Road",
		AvailableFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AvailableTo:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		MonthlyRent:   9500,
		Owner:         OwnerInput{Name: "Mr Chan", Email: "chan@example.com", Phone: "25550000"},
	}
}

func TestService_CreateWithLookup(t *testing.T) {
	store := memory.New()
	lookup := &stubLookup{loc: geocode.Location{Latitude: 22.2838, Longitude: 114.1371, GeoAddress: "3228600480T20050430"}}
	svc := New(store, store, store, lookup, nil, nil)

	a, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lookup.seen != "Fortune Building" {
		t.Fatalf("lookup building = %q", lookup.seen)
	}
	if a.Latitude != 22.2838 || a.Longitude != 114.1371 {
		t.Fatalf("coordinates not resolved: %#v", a)
	}
	if len(a.GeoAddress) != accommodation.GeoAddressMaxLen {
		t.Fatalf("geo address %q length %d", a.GeoAddress, len(a.GeoAddress))
	}
	if !a.IsAvailable {
		t.Fatal("new accommodation should be available")
	}
}

func TestService_CreateLookupFailure(t *testing.T) {
	store := memory.New()
	lookup := &stubLookup{err: fmt.Errorf("als unreachable")}
	svc := New(store, store, store, lookup, nil, nil)

	if _, err := svc.Create(context.Background(), validInput()); err != ErrLocationUnresolved {
		t.Fatalf("err = %v, want ErrLocationUnresolved", err)
	}

	// Explicit coordinates bypass the lookup entirely.
	in := validInput()
	in.Latitude = 22.28
	in.Longitude = 114.14
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("create with explicit coordinates: %v", err)
	}
}

func TestService_CreateDeduplicatesOwner(t *testing.T) {
	store := memory.New()
	lookup := &stubLookup{loc: geocode.Location{Latitude: 22.28, Longitude: 114.14}}
	svc := New(store, store, store, lookup, nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	in := validInput()
	in.Name = "Flat 6D"
	in.Owner.Name = "Different Name Same Email"
	second, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.OwnerID != second.OwnerID {
		t.Fatalf("owner not deduplicated: %s vs %s", first.OwnerID, second.OwnerID)
	}

	owners, err := store.ListOwners(ctx)
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	if len(owners) != 1 {
		t.Fatalf("owners = %d, want 1", len(owners))
	}
}

func TestService_CreateValidation(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil, nil, nil)
	ctx := context.Background()

	in := validInput()
	in.Type = accommodation.Type("CASTLE")
	if _, err := svc.Create(ctx, in); err == nil {
		t.Fatal("expected error for invalid type")
	}

	in = validInput()
	in.MonthlyRent = 0
	if _, err := svc.Create(ctx, in); err == nil {
		t.Fatal("expected error for zero rent")
	}

	in = validInput()
	in.Owner.Email = ""
	if _, err := svc.Create(ctx, in); err == nil {
		t.Fatal("expected error for missing owner email")
	}

	in = validInput()
	in.GeoAddress = "12345678901234567890"
	if _, err := svc.Create(ctx, in); err == nil {
		t.Fatal("expected error for oversized geo address")
	}
}

func TestService_Search(t *testing.T) {
	store := memory.New()
	lookup := &stubLookup{loc: geocode.Location{Latitude: 22.28, Longitude: 114.14}}
	svc := New(store, store, store, lookup, nil, nil)
	ctx := context.Background()

	near := validInput()
	near.Name = "Near Flat"
	near.Latitude = 22.2830
	near.Longitude = 114.1370
	near.MonthlyRent = 12000
	if _, err := svc.Create(ctx, near); err != nil {
		t.Fatalf("create near: %v", err)
	}

	far := validInput()
	far.Name = "Far House"
	far.Type = accommodation.TypeHouse
	far.NumBeds = 5
	far.NumBedrooms = 4
	far.Latitude = 22.4200
	far.Longitude = 114.2100
	far.MonthlyRent = 20000
	if _, err := svc.Create(ctx, far); err != nil {
		t.Fatalf("create far: %v", err)
	}

	all, err := svc.Search(ctx, SearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered results = %d, want 2", len(all))
	}

	houses, err := svc.Search(ctx, SearchFilter{Type: accommodation.TypeHouse})
	if err != nil {
		t.Fatalf("search houses: %v", err)
	}
	if len(houses) != 1 || houses[0].Name != "Far House" {
		t.Fatalf("type filter wrong: %#v", houses)
	}

	maxPrice := 15000.0
	cheap, err := svc.Search(ctx, SearchFilter{MaxPrice: &maxPrice})
	if err != nil {
		t.Fatalf("search cheap: %v", err)
	}
	if len(cheap) != 1 || cheap[0].Name != "Near Flat" {
		t.Fatalf("price filter wrong: %#v", cheap)
	}

	beds, err := svc.Search(ctx, SearchFilter{NumBeds: 4})
	if err != nil {
		t.Fatalf("search beds: %v", err)
	}
	if len(beds) != 1 || beds[0].Name != "Far House" {
		t.Fatalf("beds filter wrong: %#v", beds)
	}
}

func TestService_SearchByCampusDistance(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil, nil, nil)
	ctx := context.Background()

	c, err := store.CreateCampus(ctx, campus.Campus{Name: "Main Campus", Latitude: 22.2830, Longitude: 114.1371})
	if err != nil {
		t.Fatalf("create campus: %v", err)
	}

	far := validInput()
	far.Name = "Far House"
	far.Latitude = 22.4200
	far.Longitude = 114.2100
	if _, err := svc.Create(ctx, far); err != nil {
		t.Fatalf("create far: %v", err)
	}
	near := validInput()
	near.Name = "Near Flat"
	near.Latitude = 22.2838
	near.Longitude = 114.1375
	if _, err := svc.Create(ctx, near); err != nil {
		t.Fatalf("create near: %v", err)
	}

	results, err := svc.Search(ctx, SearchFilter{CampusID: c.ID})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Name != "Near Flat" || results[1].Name != "Far House" {
		t.Fatalf("not sorted by distance: %s, %s", results[0].Name, results[1].Name)
	}
	if results[0].Distance == nil || results[1].Distance == nil {
		t.Fatal("distance missing from campus search results")
	}
	if *results[0].Distance >= *results[1].Distance {
		t.Fatalf("distances not ascending: %v >= %v", *results[0].Distance, *results[1].Distance)
	}

	if _, err := svc.Search(ctx, SearchFilter{CampusID: "missing"}); err == nil {
		t.Fatal("expected error for unknown campus")
	}
}

func TestService_MarkUnavailableAndPhotos(t *testing.T) {
	store := memory.New()
	svc := New(store, store, store, nil, nil, nil)
	ctx := context.Background()

	in := validInput()
	in.Latitude = 22.28
	in.Longitude = 114.14
	a, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	marked, err := svc.MarkUnavailable(ctx, a.ID, "spec-1")
	if err != nil {
		t.Fatalf("mark unavailable: %v", err)
	}
	if marked.IsAvailable {
		t.Fatal("accommodation still available")
	}

	unavailable, err := svc.ListUnavailable(ctx)
	if err != nil {
		t.Fatalf("list unavailable: %v", err)
	}
	if len(unavailable) != 1 {
		t.Fatalf("unavailable = %d, want 1", len(unavailable))
	}

	p, err := svc.AddPhoto(ctx, a.ID, "https://cdn.example.com/p1.jpg", "living room")
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if p.AccommodationID != a.ID {
		t.Fatalf("photo bound to %s, want %s", p.AccommodationID, a.ID)
	}
	photos, err := svc.ListPhotos(ctx, a.ID)
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("photos = %d, want 1", len(photos))
	}

	if _, err := svc.AddPhoto(ctx, a.ID, "", ""); err == nil {
		t.Fatal("expected error for empty photo url")
	}

	if err := svc.Delete(ctx, a.ID, "spec-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); err == nil {
		t.Fatal("accommodation still present after delete")
	}
}
