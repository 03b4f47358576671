package domain

import "fmt"

type Role string

const (
	RoleCasual Role = "USER_CASUAL"
	RoleAdmin  Role = "USER_ADMIN"
	RoleSuper  Role = "SUPER_USER"
)

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", Validation("role", fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleCasual, RoleAdmin, RoleSuper:
		return true
	}
	return false
}

// IsAdmin is true for both administrative tiers.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin, RoleSuper:
		return true
	case RoleCasual:
		return false
	}
	return false
}

// Actor is the resolved caller of an operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
	Role Role   `json:"rol"`
}

// RequireAdmin returns a permission error for non-administrative actors.
func (a Actor) RequireAdmin(op string) error {
	if !a.Role.IsAdmin() {
		return Forbidden(op, fmt.Sprintf("role %s may not %s", a.Role, op))
	}
	return nil
}

// CanRead reports whether the actor may read a reservation owned by ownerID.
func (a Actor) CanRead(ownerID string) bool {
	return a.ID == ownerID || a.Role == RoleSuper
}
