// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	Name           string    `db:"name"`
	Surname        string    `db:"surname"`
	IsActive       bool      `db:"is_active"`
	Role           string    `db:"role"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
