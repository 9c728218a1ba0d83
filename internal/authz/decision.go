package authz

// Decision is the outcome of evaluating a Rule for a principal. The
// two deny variants are distinct so callers can redirect an anonymous
// visitor to login while showing a signed-in user an explicit denial.
type Decision int

const (
	// DecisionAllow grants access.
	DecisionAllow Decision = iota
	// DecisionUnauthenticated denies because no principal is present.
	DecisionUnauthenticated
	// DecisionForbidden denies an authenticated principal lacking the
	// required role, permission or ownership.
	DecisionForbidden
)

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d == DecisionAllow
}

// Rule describes an authorization requirement. All supplied checks
// must pass; zero-value fields are skipped.
type Rule struct {
	// AllowedRoles restricts access to the listed roles.
	AllowedRoles []Role
	// Permission is an optional capability predicate.
	Permission func(*Principal) bool
	// OwnerID, when set, activates the ownership rule: admins and
	// superadmins always pass, others only when they own the resource.
	OwnerID *int64
}

// Authorize evaluates the rule against the principal. Checks run in a
// fixed order and the first failure wins. The function is pure and
// carries no HTTP or template dependency so it can be exercised
// without a rendering harness.
func Authorize(p *Principal, rule Rule) Decision {
	if p == nil {
		return DecisionUnauthenticated
	}
	if len(rule.AllowedRoles) > 0 && !roleIn(p.Role, rule.AllowedRoles) {
		return DecisionForbidden
	}
	if rule.Permission != nil && !rule.Permission(p) {
		return DecisionForbidden
	}
	if rule.OwnerID != nil && !CanAccessUserData(p, *rule.OwnerID) {
		return DecisionForbidden
	}
	return DecisionAllow
}

func roleIn(r Role, set []Role) bool {
	if !r.Recognized() {
		return false
	}
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}
