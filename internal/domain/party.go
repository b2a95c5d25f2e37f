package domain

import "time"

type Role string

const (
	RoleParty     Role = "party"
	RoleAnnouncer Role = "announcer"
	RoleAdmin     Role = "admin"
)

// Party is a booking requester: a registered user or an anonymous
// contact identified by email/phone. The scheduling engine references
// parties by id only and never mutates them.
type Party struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
