package domain

// Role identifies the access level attached to a user account.
type Role int

const (
	RoleUser  Role = 1
	RoleAdmin Role = 2
)

// Valid reports whether the role is part of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// String returns a human readable role name.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAdmin:
		return "ADMIN"
	default:
		return "UNKNOWN"
	}
}
