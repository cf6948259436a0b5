// Package roles resolves which dashboard actions a role may see.
//
// Permissions computed here only decide which buttons the dashboard renders.
// They are not an access control mechanism: the JobPilot API authorizes every
// request on its own, and nothing in this service rejects a request because of
// the values returned by PermissionsFor.
package roles

import "strings"

// Role is the closed set of roles the dashboard knows about
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleAnalyst    Role = "analyst"
	RoleUser       Role = "user"
	RoleUnknown    Role = ""
)

// Parse maps an upstream role string onto the enumeration. Anything
// unrecognised becomes RoleUnknown.
func Parse(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "super_admin", "superadmin", "super-admin":
		return RoleSuperAdmin
	case "admin":
		return RoleAdmin
	case "analyst":
		return RoleAnalyst
	case "user":
		return RoleUser
	default:
		return RoleUnknown
	}
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleAnalyst, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Permissions is the capability set a screen uses to toggle its actions
type Permissions struct {
	CanCreate bool `json:"canCreate"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
	CanView   bool `json:"canView"`
}

// PermissionsFor resolves the capability set for a role. CanView is always true.
func PermissionsFor(r Role) Permissions {
	p := Permissions{CanView: true}
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		p.CanCreate = true
		p.CanEdit = true
		p.CanDelete = true
	}
	return p
}
