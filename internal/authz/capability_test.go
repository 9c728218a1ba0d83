package authz

import (
	"testing"
)

func principalWith(role Role) *Principal {
	return &Principal{ID: 7, Username: "tester", Role: role}
}

func TestDecisionTable(t *testing.T) {
	cases := []struct {
		name string
		pred func(*Principal) bool
		want map[Role]bool
	}{
		{
			name: "add edit stock",
			pred: CanAddEditStock,
			want: map[Role]bool{RoleSuperadmin: true, RoleAdmin: true, RoleEditor: true, RoleViewer: false},
		},
		{
			name: "delete transaction",
			pred: CanDeleteTransaction,
			want: map[Role]bool{RoleSuperadmin: true, RoleAdmin: true, RoleEditor: false, RoleViewer: false},
		},
		{
			name: "create users",
			pred: CanCreateUsers,
			want: map[Role]bool{RoleSuperadmin: true, RoleAdmin: true, RoleEditor: false, RoleViewer: false},
		},
		{
			name: "view all activity",
			pred: CanViewAllActivity,
			want: map[Role]bool{RoleSuperadmin: true, RoleAdmin: true, RoleEditor: false, RoleViewer: false},
		},
		{
			name: "view own activity",
			pred: CanViewOwnActivity,
			want: map[Role]bool{RoleSuperadmin: true, RoleAdmin: true, RoleEditor: true, RoleViewer: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for role, want := range tc.want {
				if got := tc.pred(principalWith(role)); got != want {
					t.Fatalf("%s with role %s: got %v want %v", tc.name, role, got, want)
				}
			}
			if tc.pred(nil) {
				t.Fatalf("%s allowed nil principal", tc.name)
			}
			if tc.pred(principalWith(RoleUnknown)) {
				t.Fatalf("%s allowed unknown role", tc.name)
			}
		})
	}
}

func TestParseRoleFailClosed(t *testing.T) {
	for _, tag := range []string{"", "root", "Admin", "SUPERADMIN", "manager", "viewer "} {
		if got := ParseRole(tag); got != RoleUnknown {
			t.Fatalf("ParseRole(%q) = %v, want RoleUnknown", tag, got)
		}
	}
	if got := ParseRole("superadmin"); got != RoleSuperadmin {
		t.Fatalf("ParseRole(superadmin) = %v", got)
	}
}

func TestUnrecognizedRoleDeniesEverything(t *testing.T) {
	p := principalWith(Role(42))
	preds := []func(*Principal) bool{
		CanAddEditStock,
		CanDeleteTransaction,
		CanCreateUsers,
		CanViewAllActivity,
		CanViewOwnActivity,
	}
	for i, pred := range preds {
		if pred(p) {
			t.Fatalf("predicate %d allowed out-of-range role", i)
		}
	}
	if CanAssignRole(p, RoleViewer) {
		t.Fatal("CanAssignRole allowed out-of-range actor role")
	}
	if CanDeleteUser(p, RoleViewer) {
		t.Fatal("CanDeleteUser allowed out-of-range actor role")
	}
	if CanAccessUserData(p, p.ID) {
		t.Fatal("CanAccessUserData allowed out-of-range role even for own id")
	}
}

func TestCanAssignRoleCeiling(t *testing.T) {
	super := principalWith(RoleSuperadmin)
	admin := principalWith(RoleAdmin)
	editor := principalWith(RoleEditor)

	for _, target := range Roles() {
		if !CanAssignRole(super, target) {
			t.Fatalf("superadmin should assign %s", target)
		}
	}
	if CanAssignRole(super, RoleUnknown) {
		t.Fatal("superadmin must not assign an unrecognized role")
	}

	if !CanAssignRole(admin, RoleViewer) || !CanAssignRole(admin, RoleEditor) {
		t.Fatal("admin should assign viewer and editor")
	}
	if CanAssignRole(admin, RoleAdmin) || CanAssignRole(admin, RoleSuperadmin) {
		t.Fatal("admin must not assign admin or superadmin")
	}

	for _, target := range Roles() {
		if CanAssignRole(editor, target) {
			t.Fatalf("editor must not assign %s", target)
		}
	}
}

func TestCanDeleteUserTargets(t *testing.T) {
	super := principalWith(RoleSuperadmin)
	admin := principalWith(RoleAdmin)
	viewer := principalWith(RoleViewer)

	for _, target := range Roles() {
		if !CanDeleteUser(super, target) {
			t.Fatalf("superadmin should delete %s accounts", target)
		}
	}
	if !CanDeleteUser(admin, RoleViewer) || !CanDeleteUser(admin, RoleEditor) {
		t.Fatal("admin should delete viewer and editor accounts")
	}
	if CanDeleteUser(admin, RoleAdmin) || CanDeleteUser(admin, RoleSuperadmin) {
		t.Fatal("admin must not delete admin or superadmin accounts")
	}
	for _, target := range Roles() {
		if CanDeleteUser(viewer, target) {
			t.Fatalf("viewer must not delete %s accounts", target)
		}
	}
}

func TestCanAccessUserDataOwnership(t *testing.T) {
	viewer := &Principal{ID: 9, Role: RoleViewer}
	if !CanAccessUserData(viewer, 9) {
		t.Fatal("viewer should access own data")
	}
	if CanAccessUserData(viewer, 10) {
		t.Fatal("viewer must not access another user's data")
	}
	editor := &Principal{ID: 3, Role: RoleEditor}
	if !CanAccessUserData(editor, 3) {
		t.Fatal("editor should access own data")
	}
	if CanAccessUserData(editor, 4) {
		t.Fatal("editor must not access another user's data")
	}
	for _, role := range []Role{RoleAdmin, RoleSuperadmin} {
		p := &Principal{ID: 1, Role: role}
		if !CanAccessUserData(p, 999) {
			t.Fatalf("%s should access any user's data", role)
		}
	}
	if CanAccessUserData(nil, 1) {
		t.Fatal("nil principal must be denied")
	}
}
