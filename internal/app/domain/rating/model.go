package rating

import "time"

// Rating is a score given by a member for an accommodation after a completed
// stay. Ratings start unmoderated; a specialist approves or rejects them.
type Rating struct {
	ID              string     `json:"id"`
	AccommodationID string     `json:"accommodation_id"`
	MemberID        string     `json:"member_id"`
	ReservationID   string     `json:"reservation_id"`
	Score           int        `json:"score"`
	Comment         string     `json:"comment"`
	Moderated       bool       `json:"moderated"`
	Approved        bool       `json:"approved"`
	ModeratedBy     string     `json:"moderated_by,omitempty"`
	ModerationNote  string     `json:"moderation_note,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Score bounds.
const (
	MinScore = 0
	MaxScore = 5
)
