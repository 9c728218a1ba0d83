package authz

import "time"

// Principal is the authenticated user as known to the frontend. It is
// populated from the session on every request; the backend remains
// authoritative for the underlying account.
type Principal struct {
	ID        int64
	Username  string
	Role      Role
	CreatedAt time.Time
}

// IsAdmin reports whether the principal holds an administrative role.
func (p *Principal) IsAdmin() bool {
	if p == nil {
		return false
	}
	return p.Role == RoleAdmin || p.Role == RoleSuperadmin
}
