// AngelaMos | 2026
// service.go

package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/policy"
)

type UserLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo   Repository
	users  UserLookup
	logger *slog.Logger
}

func NewService(repo Repository, users UserLookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, users: users, logger: logger}
}

func (s *Service) Create(
	ctx context.Context,
	actor policy.Actor,
	req CreateProjectRequest,
) (*Project, error) {
	status := StatusActive
	if req.Status != nil {
		status = *req.Status
	}
	if !ValidStatus(status) {
		return nil, core.ValidationError("Invalid status")
	}

	project := &Project{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		OwnerID:     actor.ID,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// Get loads a project the actor may see.
func (s *Service) Get(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) (*Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanAccessProject(actor, project) {
		return nil, core.ForbiddenError("Not allowed to access this project")
	}

	return project, nil
}

func (s *Service) ListOwned(
	ctx context.Context,
	actor policy.Actor,
) ([]Project, error) {
	return s.repo.ListByOwner(ctx, actor.ID)
}

func (s *Service) Update(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	req UpdateProjectRequest,
) (*Project, error) {
	project, err := s.manageable(ctx, actor, id, "Not allowed to update this project")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = req.Description
	}
	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, core.ValidationError("Invalid status")
		}
		project.Status = *req.Status
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, s.notFound(err)
	}

	return project, nil
}

func (s *Service) Delete(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) error {
	if _, err := s.manageable(ctx, actor, id, "Not allowed to delete this project"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.notFound(err)
	}

	s.logger.InfoContext(ctx, "project deleted",
		"project_id", id,
		"deleted_by", actor.ID,
	)

	return nil
}

func (s *Service) AddMember(
	ctx context.Context,
	actor policy.Actor,
	id, userID int64,
) (*Project, error) {
	project, err := s.manageable(ctx, actor, id, "Not allowed to add members to this project.")
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

	if err := s.repo.AddMember(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.ConflictError("User is already a member of this project")
		case errors.Is(err, core.ErrForeignKey):
			return nil, core.NotFoundMessage("User not found")
		}
		return nil, err
	}

	return project, nil
}

func (s *Service) RemoveMember(
	ctx context.Context,
	actor policy.Actor,
	id, userID int64,
) (*Project, error) {
	project, err := s.manageable(ctx, actor, id, "Not allowed to remove members from this project.")
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveMember(ctx, id, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundMessage("Member not found in the project.")
		}
		return nil, err
	}

	return project, nil
}

func (s *Service) ListMembers(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) ([]Member, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	return s.repo.ListMembers(ctx, id)
}

func (s *Service) ChangeStatus(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	status string,
) (*Project, error) {
	if !ValidStatus(status) {
		return nil, core.ValidationError("Invalid status")
	}

	project, err := s.manageable(ctx, actor, id, "Not allowed to change the status of this project.")
	if err != nil {
		return nil, err
	}

	project.Status = status
	if err := s.repo.Update(ctx, project); err != nil {
		return nil, s.notFound(err)
	}

	return project, nil
}

func (s *Service) manageable(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	denied string,
) (*Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.CanManageProject(actor, project) {
		return nil, core.ForbiddenError(denied)
	}

	return project, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.notFound(err)
	}
	return project, nil
}

func (s *Service) notFound(err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError("Project")
	}
	return err
}
