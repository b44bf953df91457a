package auditlog

import "time"

// ActorType identifies who performed an action.
type ActorType string

const (
	ActorMember     ActorType = "MEMBER"
	ActorSpecialist ActorType = "SPECIALIST"
	ActorSystem     ActorType = "SYSTEM"
)

// Entry is an append-only record of a state-changing domain action.
type Entry struct {
	ID              string    `json:"id"`
	Action          string    `json:"action"`
	ActorType       ActorType `json:"actor_type"`
	ActorID         string    `json:"actor_id,omitempty"`
	AccommodationID string    `json:"accommodation_id,omitempty"`
	Details         string    `json:"details,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
