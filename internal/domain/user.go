package domain

import "time"

// User is the domain model for registered accounts.
type User struct {
	ID            int64
	Name          string
	Surnames      string
	Email         string
	PasswordHash  string
	RoleID        Role
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
