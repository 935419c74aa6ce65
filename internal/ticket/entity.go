// AngelaMos | 2026
// entity.go

package ticket

import (
	"time"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

type Ticket struct {
	ID                int64     `db:"id"`
	Title             string    `db:"title"`
	Description       *string   `db:"description"`
	Status            string    `db:"status"`
	Priority          int       `db:"priority"`
	ProjectID         int64     `db:"project_id"`
	ResponsibleUserID int64     `db:"responsible_user_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Executor is the user row behind a ticket assignment.
type Executor struct {
	ID       int64  `db:"id"`
	Email    string `db:"email"`
	Name     string `db:"name"`
	Surname  string `db:"surname"`
	IsActive bool   `db:"is_active"`
	Role     string `db:"role"`
}
