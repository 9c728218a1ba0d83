package authz

// Role is the closed set of permission tiers known to the frontend.
// The zero value is RoleUnknown so a missing or unrecognized role tag
// can never carry capabilities.
type Role int

const (
	RoleUnknown Role = iota
	RoleViewer
	RoleEditor
	RoleAdmin
	RoleSuperadmin
)

// ParseRole maps the backend's role tag onto the enum. Anything
// outside the closed set becomes RoleUnknown.
func ParseRole(tag string) Role {
	switch tag {
	case "viewer":
		return RoleViewer
	case "editor":
		return RoleEditor
	case "admin":
		return RoleAdmin
	case "superadmin":
		return RoleSuperadmin
	default:
		return RoleUnknown
	}
}

// String returns the wire tag for the role, empty for RoleUnknown.
func (r Role) String() string {
	switch r {
	case RoleViewer:
		return "viewer"
	case RoleEditor:
		return "editor"
	case RoleAdmin:
		return "admin"
	case RoleSuperadmin:
		return "superadmin"
	default:
		return ""
	}
}

// Recognized reports whether the role is a member of the closed set.
func (r Role) Recognized() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// Roles returns the recognized roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleViewer, RoleEditor, RoleAdmin, RoleSuperadmin}
}
