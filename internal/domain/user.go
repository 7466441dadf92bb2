package domain

import (
	"strings"
	"time"
)

// Role represents what a user is allowed to do.
type Role string

const (
	RolePassenger Role = "PASSENGER"
	RoleDriver    Role = "DRIVER"
)

// ParseRole normalizes a role name as sent by clients. Both the plain names
// and the ROLE_ prefixed forms are accepted; ROLE_USER and USER mean passenger.
func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PASSENGER", "USER", "ROLE_USER", "ROLE_PASSENGER":
		return RolePassenger, true
	case "DRIVER", "ROLE_DRIVER":
		return RoleDriver, true
	default:
		return "", false
	}
}

// User represents a registered passenger or driver.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
