package notification

import "time"

// Type distinguishes the events that notify specialists.
type Type string

const (
	TypeReservation  Type = "RESERVATION"
	TypeCancellation Type = "CANCELLATION"
)

// Notification informs a CEDARS specialist about reservation activity.
type Notification struct {
	ID            string    `json:"id"`
	SpecialistID  string    `json:"specialist_id"`
	ReservationID string    `json:"reservation_id"`
	Type          Type      `json:"type"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}
