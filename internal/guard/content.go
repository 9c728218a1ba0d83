package guard

import "github.com/stockpilot/stockpilot/internal/authz"

// Content gates a fragment inside an already rendered page: a delete
// button, an admin column, an owner-only section. All supplied checks
// must pass. Handlers evaluate it and templates branch on the result,
// rendering the fallback fragment (usually nothing) on denial.
type Content struct {
	// AllowedRoles restricts the fragment to the listed roles.
	AllowedRoles []authz.Role
	// Permission is an optional capability predicate.
	Permission func(*authz.Principal) bool
	// UserID activates ownership mode: admins and superadmins always
	// pass, others only when the fragment belongs to them.
	UserID *int64
}

// Allows evaluates the guard for the principal. It is pure and never
// errors; a nil principal is denied.
func (c Content) Allows(p *authz.Principal) bool {
	return authz.Authorize(p, authz.Rule{
		AllowedRoles: c.AllowedRoles,
		Permission:   c.Permission,
		OwnerID:      c.UserID,
	}).Allowed()
}

// ForUser is a convenience constructor for ownership-scoped fragments.
func ForUser(userID int64) Content {
	return Content{UserID: &userID}
}

// ForRoles is a convenience constructor for role-scoped fragments.
func ForRoles(roles ...authz.Role) Content {
	return Content{AllowedRoles: roles}
}

// ForPermission is a convenience constructor for predicate-scoped
// fragments.
func ForPermission(pred func(*authz.Principal) bool) Content {
	return Content{Permission: pred}
}
