// AngelaMos | 2026
// entity.go

package project

import (
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	}
	return false
}

type Project struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Status      string    `db:"status"`
	OwnerID     int64     `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (p *Project) GetOwnerID() int64 {
	return p.OwnerID
}

// Member is the user row behind a project membership.
type Member struct {
	ID       int64  `db:"id"`
	Email    string `db:"email"`
	Name     string `db:"name"`
	Surname  string `db:"surname"`
	IsActive bool   `db:"is_active"`
	Role     string `db:"role"`
}
