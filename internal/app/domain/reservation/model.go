package reservation

import "time"

// Status tracks the reservation lifecycle.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Valid reports whether s is a known reservation status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Reservation is a booking of an accommodation by an HKU member.
type Reservation struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodation_id"`
	MemberID        string    `json:"member_id"`
	ReservedFrom    time.Time `json:"reserved_from"`
	ReservedTo      time.Time `json:"reserved_to"`
	ContactName     string    `json:"contact_name"`
	ContactPhone    string    `json:"contact_phone"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
