package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Department   string    `json:"department,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Requester is the authenticated identity behind a request.
type Requester struct {
	ID   string
	Role string
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
