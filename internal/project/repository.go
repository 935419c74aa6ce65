// AngelaMos | 2026
// repository.go

package project

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/igorteleutsa/taskSystem/internal/core"
)

type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, projectID, userID int64) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
	ListMembers(ctx context.Context, projectID int64) ([]Member, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const projectColumns = `id, title, description, status, owner_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (title, description, status, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, project, query,
		project.Title,
		project.Description,
		project.Status,
		project.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("create project: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		return nil, fmt.Errorf("get project: %w", core.TranslatePgError(err))
	}

	return &project, nil
}

func (r *repository) ListByOwner(
	ctx context.Context,
	ownerID int64,
) ([]Project, error) {
	query := `SELECT ` + projectColumns + `
		FROM projects
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`

	projects := []Project{}
	if err := r.db.SelectContext(ctx, &projects, query, ownerID); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	return projects, nil
}

func (r *repository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET title = $2, description = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &project.UpdatedAt, query,
		project.ID,
		project.Title,
		project.Description,
		project.Status,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", core.TranslatePgError(err))
	}

	return nil
}

// Delete removes the project with its tickets, executor assignments and
// memberships in one transaction.
func (r *repository) Delete(ctx context.Context, id int64) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM ticket_executors WHERE project_id = $1`,
			`DELETE FROM tickets WHERE project_id = $1`,
			`DELETE FROM project_members WHERE project_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return err
			}
		}

		return core.ExecAffecting(ctx, tx, `DELETE FROM projects WHERE id = $1`, id)
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) AddMember(
	ctx context.Context,
	projectID, userID int64,
) error {
	query := `INSERT INTO project_members (user_id, project_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, projectID); err != nil {
		return fmt.Errorf("add member: %w", core.TranslatePgError(err))
	}

	return nil
}

// RemoveMember drops the membership and the member's executor assignments
// within the project.
func (r *repository) RemoveMember(
	ctx context.Context,
	projectID, userID int64,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM ticket_executors WHERE project_id = $1 AND user_id = $2`,
			projectID, userID,
		); err != nil {
			return err
		}

		return core.ExecAffecting(ctx, tx,
			`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
			projectID, userID,
		)
	})
	if err != nil {
		return fmt.Errorf("remove member: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) ListMembers(
	ctx context.Context,
	projectID int64,
) ([]Member, error) {
	query := `
		SELECT u.id, u.email, u.name, u.surname, u.is_active, u.role
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY u.id`

	members := []Member{}
	if err := r.db.SelectContext(ctx, &members, query, projectID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}
