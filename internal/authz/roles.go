package authz

import (
	"errors"
	"fmt"
	"strings"
)

// Role is a closed-set label granting a privilege tier. Values are stored
// lowercase; anything coming from a request must go through ValidateInput.
type Role string

const (
	RoleWorker         Role = "worker"
	RoleMechanics      Role = "mechanics"
	RolePurchase       Role = "purchase_department"
	RoleAccounting     Role = "accounting"
	RoleHR             Role = "hr"
	RoleProjectManager Role = "project_manager"
	RoleAdmin          Role = "admin"
)

// ValidRoles — the closed enumeration, lowest privilege first.
var ValidRoles = []Role{
	RoleWorker,
	RoleMechanics,
	RolePurchase,
	RoleAccounting,
	RoleHR,
	RoleProjectManager,
	RoleAdmin,
}

var roleLevels = map[Role]int{
	RoleWorker:         1,
	RoleMechanics:      2,
	RolePurchase:       3,
	RoleAccounting:     4,
	RoleHR:             5,
	RoleProjectManager: 6,
	RoleAdmin:          7,
}

var ErrRoleRequired = errors.New("role is required")

type InvalidRoleError struct {
	Value string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid role: %s. Must be one of: %s", e.Value, joinRoles(ValidRoles))
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// ValidateInput accepts the raw role value from a request body: a string,
// a string slice (first element wins) or nil. No default is ever substituted —
// an absent or unknown role is always rejected.
func ValidateInput(v any) (Role, error) {
	switch raw := v.(type) {
	case nil:
		return "", ErrRoleRequired
	case string:
		return Parse(raw)
	case []string:
		if len(raw) == 0 {
			return "", ErrRoleRequired
		}
		return Parse(raw[0])
	case []any:
		if len(raw) == 0 {
			return "", ErrRoleRequired
		}
		s, ok := raw[0].(string)
		if !ok {
			return "", &InvalidRoleError{Value: fmt.Sprintf("%v", raw[0])}
		}
		return Parse(s)
	default:
		return "", &InvalidRoleError{Value: fmt.Sprintf("%v", v)}
	}
}

// Parse normalizes (trim + lowercase) and checks membership in the closed set.
func Parse(raw string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrRoleRequired
	}
	r := Role(normalized)
	if !IsValid(r) {
		return "", &InvalidRoleError{Value: raw}
	}
	return r, nil
}

func IsValid(r Role) bool {
	_, ok := roleLevels[r]
	return ok
}

func HasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func HasAnyRole(roles []Role, wanted []Role) bool {
	for _, w := range wanted {
		if HasRole(roles, w) {
			return true
		}
	}
	return false
}

func HasAllRoles(roles []Role, wanted []Role) bool {
	for _, w := range wanted {
		if !HasRole(roles, w) {
			return false
		}
	}
	return true
}

func IsAdmin(r Role) bool {
	return r == RoleAdmin
}

// IsManagerOrAbove reports whether the role sits at or above the management
// tier (project_manager).
func IsManagerOrAbove(r Role) bool {
	return Level(r) >= roleLevels[RoleProjectManager]
}

// Level returns the privilege level of a role; unknown roles map to 0.
func Level(r Role) int {
	return roleLevels[r]
}

// HighestLevel returns the maximum privilege level across roles.
func HighestLevel(roles []Role) int {
	max := 0
	for _, r := range roles {
		if l := Level(r); l > max {
			max = l
		}
	}
	return max
}
