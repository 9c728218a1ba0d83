package authz

// Capability predicates. Every predicate is a total function over the
// role enum: a nil principal or RoleUnknown denies, so the default is
// deny and the compiler keeps it that way. None of these touch the
// network or mutate state.

// CanAddEditStock reports whether the principal may add or sell
// product stock and edit product records.
func CanAddEditStock(p *Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperadmin, RoleAdmin, RoleEditor:
		return true
	default:
		return false
	}
}

// CanDeleteTransaction reports whether the principal may delete add or
// sell transaction records from the daily history.
func CanDeleteTransaction(p *Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanCreateUsers reports whether the principal may register new user
// accounts.
func CanCreateUsers(p *Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanAssignRole reports whether the principal may assign the target
// role to an account. Superadmins may assign any recognized role;
// admins are capped at editor/viewer. The ceiling is enforced here,
// not just in the form options, so a crafted submission is rejected
// before it reaches the backend.
func CanAssignRole(p *Principal, target Role) bool {
	if p == nil || !target.Recognized() {
		return false
	}
	switch p.Role {
	case RoleSuperadmin:
		return true
	case RoleAdmin:
		return target == RoleEditor || target == RoleViewer
	default:
		return false
	}
}

// CanViewAllActivity reports whether the principal may read every
// user's activity log.
func CanViewAllActivity(p *Principal) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperadmin, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanViewOwnActivity reports whether the principal may read their own
// activity log. Any recognized role qualifies.
func CanViewOwnActivity(p *Principal) bool {
	if p == nil {
		return false
	}
	return p.Role.Recognized()
}

// CanDeleteUser reports whether the principal may delete an account
// holding the target role. Superadmins may delete anyone; admins only
// editor/viewer accounts, never admins or superadmins.
func CanDeleteUser(p *Principal, target Role) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperadmin:
		return target.Recognized()
	case RoleAdmin:
		return target == RoleEditor || target == RoleViewer
	default:
		return false
	}
}

// CanAccessUserData implements the ownership rule: admins and
// superadmins reach any user's resources, everyone else only their
// own.
func CanAccessUserData(p *Principal, targetUserID int64) bool {
	if p == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	if !p.Role.Recognized() {
		return false
	}
	return p.ID == targetUserID
}
