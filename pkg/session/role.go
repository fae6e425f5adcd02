package session

import (
	"errors"
	"fmt"
)

// ErrUnknownRole is returned for a role string the client does not model.
var ErrUnknownRole = errors.New("unknown role")

// Role is the closed set of account roles.
type Role int

const (
	RoleAdmin Role = iota + 1
	RoleKarachiAgent
	RoleDubaiAgent
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleKarachiAgent, RoleDubaiAgent}

// ParseRole maps the wire value carried in the token to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "karachi-agent":
		return RoleKarachiAgent, nil
	case "dubai-agent":
		return RoleDubaiAgent, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// String returns the wire value.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleKarachiAgent:
		return "karachi-agent"
	case RoleDubaiAgent:
		return "dubai-agent"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Label is the human name used in listings.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleKarachiAgent:
		return "Karachi agent"
	case RoleDubaiAgent:
		return "Dubai agent"
	}
	return "Unknown"
}

// IsAgent reports whether r is one of the two agent roles.
func (r Role) IsAgent() bool {
	return r == RoleKarachiAgent || r == RoleDubaiAgent
}
