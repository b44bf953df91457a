package accommodation

import (
	"math"
	"time"
)

// Type classifies an accommodation.
type Type string

const (
	TypeApartment Type = "APARTMENT"
	TypeHouse     Type = "HOUSE"
	TypeShared    Type = "SHARED"
	TypeStudio    Type = "STUDIO"
)

// Valid reports whether t is a known accommodation type.
func (t Type) Valid() bool {
	switch t {
	case TypeApartment, TypeHouse, TypeShared, TypeStudio:
		return true
	}
	return false
}

// GeoAddressMaxLen is the length of the standardized premises identifier
// returned by the Hong Kong address lookup service.
const GeoAddressMaxLen = 19

// Accommodation is a unit that can be rented by HKU members.
type Accommodation struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BuildingName  string    `json:"building_name"`
	Description   string    `json:"description"`
	Type          Type      `json:"type"`
	NumBedrooms   int       `json:"num_bedrooms"`
	NumBeds       int       `json:"num_beds"`
	Address       string    `json:"address"`
	GeoAddress    string    `json:"geo_address"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	AvailableFrom time.Time `json:"available_from"`
	AvailableTo   time.Time `json:"available_to"`
	MonthlyRent   float64   `json:"monthly_rent"`
	OwnerID       string    `json:"owner_id"`
	IsAvailable   bool      `json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const earthRadiusKm = 6371.0

// DistanceKm returns the approximate distance in kilometers between the
// accommodation and the given point, using the equirectangular projection.
func (a Accommodation) DistanceKm(lat, lon float64) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lon1 := a.Longitude * math.Pi / 180
	lat2 := lat * math.Pi / 180
	lon2 := lon * math.Pi / 180

	x := (lon2 - lon1) * math.Cos((lat1+lat2)/2)
	y := lat2 - lat1
	return earthRadiusKm * math.Sqrt(x*x+y*y)
}

// Photo is an image attached to an accommodation. The URL references the
// stored object; uploads register the reference rather than raw bytes.
type Photo struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodation_id"`
	URL             string    `json:"url"`
	Caption         string    `json:"caption"`
	CreatedAt       time.Time `json:"created_at"`
}
