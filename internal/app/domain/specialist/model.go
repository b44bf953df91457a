package specialist

import "time"

// Specialist is a CEDARS accommodation specialist who manages the system.
// PasswordHash is a bcrypt hash and is never serialized.
type Specialist struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
