package authz

import "testing"

func TestAuthorizeOrder(t *testing.T) {
	editor := &Principal{ID: 5, Role: RoleEditor}

	if got := Authorize(nil, Rule{}); got != DecisionUnauthenticated {
		t.Fatalf("nil principal: got %v", got)
	}

	// Role restriction fails before the permission is consulted.
	called := false
	rule := Rule{
		AllowedRoles: []Role{RoleSuperadmin, RoleAdmin},
		Permission: func(*Principal) bool {
			called = true
			return true
		},
	}
	if got := Authorize(editor, rule); got != DecisionForbidden {
		t.Fatalf("editor vs admin-only roles: got %v", got)
	}
	if called {
		t.Fatal("permission evaluated after role check already failed")
	}

	if got := Authorize(editor, Rule{Permission: CanAddEditStock}); got != DecisionAllow {
		t.Fatalf("editor with CanAddEditStock: got %v", got)
	}

	if got := Authorize(editor, Rule{Permission: CanDeleteTransaction}); got != DecisionForbidden {
		t.Fatalf("editor with CanDeleteTransaction: got %v", got)
	}
}

func TestAuthorizeOwnership(t *testing.T) {
	owner := int64(5)
	other := int64(6)

	viewer := &Principal{ID: 5, Role: RoleViewer}
	if got := Authorize(viewer, Rule{OwnerID: &owner}); got != DecisionAllow {
		t.Fatalf("owner access: got %v", got)
	}
	if got := Authorize(viewer, Rule{OwnerID: &other}); got != DecisionForbidden {
		t.Fatalf("non-owner access: got %v", got)
	}

	admin := &Principal{ID: 1, Role: RoleAdmin}
	if got := Authorize(admin, Rule{OwnerID: &other}); got != DecisionAllow {
		t.Fatalf("admin ownership bypass: got %v", got)
	}
}

func TestAuthorizeUnknownRoleNeverAllowedByRoleSet(t *testing.T) {
	ghost := &Principal{ID: 2, Role: Role(99)}
	rule := Rule{AllowedRoles: []Role{RoleViewer, RoleEditor, RoleAdmin, RoleSuperadmin, Role(99)}}
	if got := Authorize(ghost, rule); got != DecisionForbidden {
		t.Fatalf("unrecognized role matched a role set: got %v", got)
	}
}
