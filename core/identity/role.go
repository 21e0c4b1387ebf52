// Package identity defines the closed set of roles the trust core works
// with. Role strings are parsed at the boundary; untyped strings never flow
// further in.
package identity

import "errors"

// Role is an authorization level with a total ordering
type Role int

const (
	RoleGuest Role = iota
	RolePatient
	RoleStaff
	RoleClinician
	RoleAdmin
)

var ErrUnknownRole = errors.New("identity: unknown role")

var roleNames = map[Role]string{
	RoleGuest:     "guest",
	RolePatient:   "patient",
	RoleStaff:     "staff",
	RoleClinician: "clinician",
	RoleAdmin:     "admin",
}

var rolesByName = map[string]Role{
	"guest":     RoleGuest,
	"patient":   RolePatient,
	"staff":     RoleStaff,
	"clinician": RoleClinician,
	"admin":     RoleAdmin,
}

// ParseRole converts a role string to a Role
func ParseRole(s string) (Role, error) {
	if role, ok := rolesByName[s]; ok {
		return role, nil
	}
	return RoleGuest, ErrUnknownRole
}

// String returns the canonical role name
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "guest"
}

// AtLeast reports whether r grants at least the level of other
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// Privileged reports whether the role warrants step-up authentication for
// sensitive operations
func (r Role) Privileged() bool {
	return r >= RoleClinician
}
