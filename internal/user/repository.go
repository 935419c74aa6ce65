// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/igorteleutsa/taskSystem/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, hashed_password, name, surname, is_active, role,
		       created_at, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, hashed_password, name, surname, is_active, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.Email,
		user.HashedPassword,
		user.Name,
		user.Surname,
		user.IsActive,
		user.Role,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("get user: %w", core.TranslatePgError(err))
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf(
			"get user by email: %w",
			core.TranslatePgError(err),
		)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET email = $2, hashed_password = $3, name = $4, surname = $5,
		    is_active = $6, role = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.Name,
		user.Surname,
		user.IsActive,
		user.Role,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id int64,
	hashedPassword string,
) error {
	query := `
		UPDATE users
		SET hashed_password = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, hashedPassword)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

// Delete removes the user and everything that hangs off them. Owned projects
// go with their tickets; tickets the user was responsible for in other
// projects are handed to that project's owner.
func (r *repository) Delete(ctx context.Context, id int64) error {
	steps := []string{
		`DELETE FROM ticket_executors WHERE user_id = $1`,
		`DELETE FROM ticket_executors
		 WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`,
		`DELETE FROM tickets
		 WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`,
		`DELETE FROM project_members
		 WHERE project_id IN (SELECT id FROM projects WHERE owner_id = $1)`,
		`DELETE FROM projects WHERE owner_id = $1`,
		`DELETE FROM project_members WHERE user_id = $1`,
		`UPDATE tickets t
		 SET responsible_user_id = p.owner_id, updated_at = NOW()
		 FROM projects p
		 WHERE t.project_id = p.id AND t.responsible_user_id = $1`,
	}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked int64
		if err := tx.GetContext(ctx, &locked,
			`SELECT id FROM users WHERE id = $1 FOR UPDATE`,
			id,
		); err != nil {
			return err
		}

		for _, stmt := range steps {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}

		return core.ExecAffecting(ctx, tx, `DELETE FROM users WHERE id = $1`, id)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d OR surname ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if len(params.Roles) > 0 {
		placeholders := make([]string, len(params.Roles))
		for i, role := range params.Roles {
			placeholders[i] = fmt.Sprintf("$%d", argIdx)
			args = append(args, role)
			argIdx++
		}
		conditions = append(conditions,
			"role IN ("+strings.Join(placeholders, ", ")+")")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY id
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
