package campus

import "time"

// Campus is an HKU campus or premises used as the reference point for
// distance-ranked accommodation search.
type Campus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
