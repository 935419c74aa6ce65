// AngelaMos | 2026
// repository.go

package ticket

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/igorteleutsa/taskSystem/internal/core"
)

type Repository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id int64) (*Ticket, error)
	ListByProject(ctx context.Context, projectID int64) ([]Ticket, error)
	Update(ctx context.Context, ticket *Ticket) error
	UpdateStatus(ctx context.Context, ticket *Ticket) error
	Delete(ctx context.Context, id int64) error
	AddExecutor(ctx context.Context, ticketID, userID, projectID int64) error
	RemoveExecutor(ctx context.Context, ticketID, userID int64) error
	ListExecutors(ctx context.Context, ticketID int64) ([]Executor, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const ticketColumns = `id, title, description, status, priority, project_id,
		       responsible_user_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, ticket *Ticket) error {
	query := `
		INSERT INTO tickets (title, description, status, priority, project_id,
		                     responsible_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, ticket, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.ProjectID,
		ticket.ResponsibleUserID,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	var ticket Ticket
	if err := r.db.GetContext(ctx, &ticket, query, id); err != nil {
		return nil, fmt.Errorf("get ticket: %w", core.TranslatePgError(err))
	}

	return &ticket, nil
}

func (r *repository) ListByProject(
	ctx context.Context,
	projectID int64,
) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE project_id = $1
		ORDER BY priority, id`

	tickets := []Ticket{}
	if err := r.db.SelectContext(ctx, &tickets, query, projectID); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	return tickets, nil
}

func (r *repository) Update(ctx context.Context, ticket *Ticket) error {
	query := `
		UPDATE tickets
		SET title = $2, description = $3, status = $4, priority = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &ticket.UpdatedAt, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, ticket *Ticket) error {
	query := `
		UPDATE tickets
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &ticket.UpdatedAt, query, ticket.ID, ticket.Status)
	if err != nil {
		return fmt.Errorf("update ticket status: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM ticket_executors WHERE ticket_id = $1`, id,
		); err != nil {
			return err
		}

		return core.ExecAffecting(ctx, tx, `DELETE FROM tickets WHERE id = $1`, id)
	})
	if err != nil {
		return fmt.Errorf("delete ticket: %w", core.TranslatePgError(err))
	}

	return nil
}

// AddExecutor relies on the (user_id, project_id) foreign key into
// project_members, so assigning a non-member yields ErrForeignKey.
func (r *repository) AddExecutor(
	ctx context.Context,
	ticketID, userID, projectID int64,
) error {
	query := `
		INSERT INTO ticket_executors (ticket_id, user_id, project_id)
		VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, ticketID, userID, projectID); err != nil {
		return fmt.Errorf("add executor: %w", core.TranslatePgError(err))
	}

	return nil
}

func (r *repository) RemoveExecutor(
	ctx context.Context,
	ticketID, userID int64,
) error {
	query := `DELETE FROM ticket_executors WHERE ticket_id = $1 AND user_id = $2`

	if _, err := r.db.ExecContext(ctx, query, ticketID, userID); err != nil {
		return fmt.Errorf("remove executor: %w", err)
	}

	return nil
}

func (r *repository) ListExecutors(
	ctx context.Context,
	ticketID int64,
) ([]Executor, error) {
	query := `
		SELECT u.id, u.email, u.name, u.surname, u.is_active, u.role
		FROM ticket_executors te
		JOIN users u ON u.id = te.user_id
		WHERE te.ticket_id = $1
		ORDER BY te.id`

	executors := []Executor{}
	if err := r.db.SelectContext(ctx, &executors, query, ticketID); err != nil {
		return nil, fmt.Errorf("list executors: %w", err)
	}

	return executors, nil
}
