// Package model defines the core domain types shared across the application.
package model

import "fmt"

// Role identifies what a user is allowed to do. It is a closed set:
// every permission check switches over it exhaustively so that adding
// a role is a compile-visible change rather than a string comparison bug.
type Role string

const (
	// RoleFinance reviews proposals and manages budget categories.
	RoleFinance Role = "finance"
	// RoleMinistry submits and owns proposals for its ministry.
	RoleMinistry Role = "ministry"
)

// ParseRole validates a role string received from the API or config.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFinance:
		return RoleFinance, nil
	case RoleMinistry:
		return RoleMinistry, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleFinance, RoleMinistry:
		return true
	}
	return false
}

// User is the authenticated identity for a session. Role is immutable
// for the session lifetime; Ministry is set only for ministry users.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Ministry string `json:"ministry,omitempty"`
}
