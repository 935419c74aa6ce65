// AngelaMos | 2026
// service.go

package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/events"
	"github.com/igorteleutsa/taskSystem/internal/policy"
	"github.com/igorteleutsa/taskSystem/internal/project"
)

// ProjectAccessor resolves a project the actor is allowed to see.
type ProjectAccessor interface {
	Get(ctx context.Context, actor policy.Actor, id int64) (*project.Project, error)
}

type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo     Repository
	projects ProjectAccessor
	users    UserLookup
	emitter  events.Emitter
	logger   *slog.Logger
	now      func() time.Time
}

type ServiceConfig struct {
	Repository Repository
	Projects   ProjectAccessor
	Users      UserLookup
	Emitter    events.Emitter
	Logger     *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:     cfg.Repository,
		projects: cfg.Projects,
		users:    cfg.Users,
		emitter:  cfg.Emitter,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Create(
	ctx context.Context,
	actor policy.Actor,
	req CreateTicketRequest,
) (*Ticket, error) {
	ticket := &Ticket{
		Title:             req.Title,
		Description:       req.Description,
		Status:            StatusTodo,
		Priority:          DefaultPriority,
		ProjectID:         req.ProjectID,
		ResponsibleUserID: actor.ID,
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}

	if err := validate(ticket); err != nil {
		return nil, err
	}

	if _, err := s.projects.Get(ctx, actor, req.ProjectID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket created",
		"ticket_id", ticket.ID,
		"project_id", ticket.ProjectID,
		"responsible_user_id", ticket.ResponsibleUserID,
	)

	return ticket, nil
}

func (s *Service) Get(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) (*Ticket, error) {
	if !policy.CanViewTicket(actor) {
		return nil, core.ForbiddenError("Not allowed to view this ticket")
	}

	return s.load(ctx, id)
}

func (s *Service) ListByProject(
	ctx context.Context,
	actor policy.Actor,
	projectID int64,
) ([]Ticket, error) {
	if _, err := s.projects.Get(ctx, actor, projectID); err != nil {
		return nil, err
	}

	return s.repo.ListByProject(ctx, projectID)
}

// Update applies a partial patch. Any authenticated caller may update a
// ticket it can reach; only deletion is role gated.
func (s *Service) Update(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	req UpdateTicketRequest,
) (*Ticket, error) {
	if !policy.CanUpdateTicket(actor) {
		return nil, core.ForbiddenError("Not allowed to update this ticket")
	}

	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		ticket.Description = req.Description
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}

	if err := validate(ticket); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, notFound(err)
	}

	return ticket, nil
}

func (s *Service) Delete(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) error {
	if !policy.CanDeleteTicket(actor) {
		return core.ForbiddenError("Not allowed to delete tickets")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}

	s.logger.InfoContext(ctx, "ticket deleted",
		"ticket_id", id,
		"deleted_by", actor.ID,
	)

	return nil
}

func (s *Service) AddExecutor(
	ctx context.Context,
	actor policy.Actor,
	ticketID, userID int64,
) (*Ticket, error) {
	ticket, err := s.executorTarget(ctx, actor, ticketID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddExecutor(ctx, ticket.ID, userID, ticket.ProjectID); err != nil {
		switch {
		case errors.Is(err, core.ErrForeignKey):
			return nil, core.ConflictError("User is not a member of the ticket's project")
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.ConflictError("User is already an executor of this ticket")
		}
		return nil, err
	}

	return ticket, nil
}

// RemoveExecutor succeeds even when the user was not assigned.
func (s *Service) RemoveExecutor(
	ctx context.Context,
	actor policy.Actor,
	ticketID, userID int64,
) (*Ticket, error) {
	ticket, err := s.executorTarget(ctx, actor, ticketID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveExecutor(ctx, ticket.ID, userID); err != nil {
		return nil, err
	}

	return ticket, nil
}

func (s *Service) ListExecutors(
	ctx context.Context,
	actor policy.Actor,
	ticketID int64,
) ([]Executor, error) {
	if !policy.CanViewTicket(actor) {
		return nil, core.ForbiddenError("Not allowed to view this ticket")
	}

	executors, err := s.repo.ListExecutors(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if len(executors) == 0 {
		return nil, core.NotFoundMessage("No executors found for this ticket.")
	}

	return executors, nil
}

// ChangeStatus persists the new status and then emits exactly one
// TicketStatusChanged. Delivery problems never fail the call.
func (s *Service) ChangeStatus(
	ctx context.Context,
	actor policy.Actor,
	ticketID int64,
	status string,
) (*Ticket, error) {
	if !ValidStatus(status) {
		return nil, core.ValidationError("Invalid status")
	}

	if !policy.CanUpdateTicket(actor) {
		return nil, core.ForbiddenError("Not allowed to update this ticket")
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticket.Status = status
	if err := s.repo.UpdateStatus(ctx, ticket); err != nil {
		return nil, notFound(err)
	}

	if s.emitter != nil {
		s.emitter.Emit(ctx, events.NewTicketStatusChanged(
			ticket.ID,
			ticket.Status,
			actor.Email,
			s.now(),
		))
	}

	return ticket, nil
}

func (s *Service) executorTarget(
	ctx context.Context,
	actor policy.Actor,
	ticketID, userID int64,
) (*Ticket, error) {
	if !policy.CanManageExecutors(actor) {
		return nil, core.ForbiddenError("Not allowed to manage executors")
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !exists {
		return nil, core.NotFoundMessage("User not found")
	}

	return ticket, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return ticket, nil
}

func validate(t *Ticket) error {
	if !ValidStatus(t.Status) {
		return core.ValidationError("Invalid status")
	}
	if !ValidPriority(t.Priority) {
		return core.ValidationError(fmt.Sprintf(
			"priority must be between %d and %d", MinPriority, MaxPriority,
		))
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError("Ticket")
	}
	return err
}
