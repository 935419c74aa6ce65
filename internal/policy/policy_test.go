// AngelaMos | 2026
// policy_test.go

package policy

import "testing"

type ownedStub int64

func (o ownedStub) GetOwnerID() int64 { return int64(o) }

func TestAllowed(t *testing.T) {
	tests := []struct {
		role   string
		action Action
		want   bool
	}{
		{RoleAdmin, ListUsers, true},
		{RoleManager, ListUsers, true},
		{RoleUser, ListUsers, false},
		{RoleManager, ViewUser, true},
		{RoleUser, ViewUser, false},
		{RoleAdmin, DeleteUser, true},
		{RoleManager, DeleteUser, false},
		{RoleAdmin, ChangeRole, true},
		{RoleManager, ChangeRole, false},
		{RoleManager, UpdateAnyUser, false},
		{RoleAdmin, DeleteTicket, true},
		{RoleManager, DeleteTicket, true},
		{RoleUser, DeleteTicket, false},
		{RoleUser, UpdateTicket, true},
		{RoleUser, ManageExecutors, true},
		{RoleUser, ViewTicket, true},
		{RoleAdmin, ViewStats, true},
		{RoleManager, ViewStats, false},
		{"superuser", ListUsers, false},
		{"", ViewTicket, false},
		{RoleAdmin, Action("projects:nuke"), false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+string(tt.action), func(t *testing.T) {
			if got := Allowed(tt.role, tt.action); got != tt.want {
				t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestCanAccessProject(t *testing.T) {
	owner := Actor{ID: 1, Role: RoleUser}
	admin := Actor{ID: 2, Role: RoleAdmin}

	if !CanAccessProject(owner, ownedStub(1)) {
		t.Error("owner should access own project")
	}
	if CanAccessProject(admin, ownedStub(1)) {
		t.Error("admin role must not grant project access")
	}
	if !CanManageProject(owner, ownedStub(1)) {
		t.Error("owner should manage own project")
	}
	if CanManageProject(Actor{ID: 3, Role: RoleManager}, ownedStub(1)) {
		t.Error("non-owner manager must not manage project")
	}
	if CanAccessProject(owner, nil) {
		t.Error("nil project must be denied")
	}
}

func TestCanUpdateUser(t *testing.T) {
	if !CanUpdateUser(Actor{ID: 5, Role: RoleUser}, 5) {
		t.Error("self update should be allowed")
	}
	if CanUpdateUser(Actor{ID: 5, Role: RoleManager}, 6) {
		t.Error("manager must not update another user")
	}
	if !CanUpdateUser(Actor{ID: 5, Role: RoleAdmin}, 6) {
		t.Error("admin should update any user")
	}
}

func TestCanManageUsersRejectsTicketActions(t *testing.T) {
	admin := Actor{ID: 1, Role: RoleAdmin}
	if CanManageUsers(admin, DeleteTicket) {
		t.Error("ticket actions are not user-management actions")
	}
	if !CanManageUsers(admin, DeleteUser) {
		t.Error("admin should delete users")
	}
}

func TestTicketPredicates(t *testing.T) {
	user := Actor{ID: 1, Role: RoleUser}
	manager := Actor{ID: 2, Role: RoleManager}

	if CanDeleteTicket(user) {
		t.Error("plain user must not delete tickets")
	}
	if !CanDeleteTicket(manager) {
		t.Error("manager should delete tickets")
	}
	if !CanUpdateTicket(user) || !CanManageExecutors(user) || !CanViewTicket(user) {
		t.Error("authenticated users should update, view and manage executors")
	}
}
