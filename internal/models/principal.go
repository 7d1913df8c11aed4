package models

import (
	"fmt"
	"strings"
)

// Role classifies an authenticated actor.
type Role string

const (
	RoleStaff  Role = "staff"
	RolePlayer Role = "player"
)

var validRoles = map[Role]struct{}{
	RoleStaff:  {},
	RolePlayer: {},
}

// ParseRole validates and canonicalizes a role string.
func ParseRole(raw string) (Role, error) {
	value := Role(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("role is required")
	}
	if _, ok := validRoles[value]; !ok {
		return "", fmt.Errorf("invalid role: %s", value)
	}
	return value, nil
}

// Principal is the authenticated actor behind a request. The zero value is
// the anonymous principal, which may only view.
type Principal struct {
	ID   string
	Role Role
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool {
	return p.ID == "" && p.Role == ""
}

// IsStaff reports whether the principal holds the staff role.
func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff
}
