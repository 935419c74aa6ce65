// AngelaMos | 2026
// policy.go

// Package policy holds every authorization decision in one place. The
// functions are pure: callers load the data, policy only says yes or no.
package policy

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type Actor struct {
	ID    int64
	Email string
	Role  string
}

type Action string

const (
	ListUsers       Action = "users:list"
	ViewUser        Action = "users:view"
	UpdateAnyUser   Action = "users:update_any"
	DeleteUser      Action = "users:delete"
	ChangeRole      Action = "users:change_role"
	ViewTicket      Action = "tickets:view"
	UpdateTicket    Action = "tickets:update"
	DeleteTicket    Action = "tickets:delete"
	ManageExecutors Action = "tickets:manage_executors"
	ViewStats       Action = "admin:stats"
)

type roleSet map[string]struct{}

func roles(names ...string) roleSet {
	set := make(roleSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

var anyRole = roles(RoleUser, RoleManager, RoleAdmin)

// rules is the allow-list. Anything missing here is denied.
var rules = map[Action]roleSet{
	ListUsers:     roles(RoleAdmin, RoleManager),
	ViewUser:      roles(RoleAdmin, RoleManager),
	UpdateAnyUser: roles(RoleAdmin),
	DeleteUser:    roles(RoleAdmin),
	ChangeRole:    roles(RoleAdmin),
	ViewStats:     roles(RoleAdmin),

	DeleteTicket: roles(RoleAdmin, RoleManager),

	// Ticket reads, updates and executor changes are open to every
	// authenticated role; only deletion is restricted.
	ViewTicket:      anyRole,
	UpdateTicket:    anyRole,
	ManageExecutors: anyRole,
}

func Allowed(role string, action Action) bool {
	set, ok := rules[action]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

func Can(actor Actor, action Action) bool {
	return Allowed(actor.Role, action)
}

type Owned interface {
	GetOwnerID() int64
}

func CanAccessProject(actor Actor, project Owned) bool {
	return project != nil && actor.ID == project.GetOwnerID()
}

func CanManageProject(actor Actor, project Owned) bool {
	return CanAccessProject(actor, project)
}

func CanManageUsers(actor Actor, action Action) bool {
	switch action {
	case ListUsers, ViewUser, UpdateAnyUser, DeleteUser, ChangeRole:
		return Can(actor, action)
	}
	return false
}

func CanUpdateUser(actor Actor, targetID int64) bool {
	return actor.ID == targetID || Can(actor, UpdateAnyUser)
}

func CanDeleteTicket(actor Actor) bool {
	return Can(actor, DeleteTicket)
}

func CanUpdateTicket(actor Actor) bool {
	return Can(actor, UpdateTicket)
}

func CanManageExecutors(actor Actor) bool {
	return Can(actor, ManageExecutors)
}

func CanViewTicket(actor Actor) bool {
	return Can(actor, ViewTicket)
}
