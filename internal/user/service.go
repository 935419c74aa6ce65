// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/igorteleutsa/taskSystem/internal/auth"
	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/policy"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	in auth.NewUser,
) (*auth.UserInfo, error) {
	role := in.Role
	if !policy.ValidRole(role) {
		role = policy.RoleUser
	}

	user := &User{
		Email:          strings.ToLower(in.Email),
		HashedPassword: in.HashedPassword,
		Name:           in.Name,
		Surname:        in.Surname,
		IsActive:       true,
		Role:           role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	hashedPassword string,
) error {
	return s.repo.UpdatePassword(ctx, userID, hashedPassword)
}

// Exists reports whether a user row is present. Used by the project and
// ticket registries before they reference a user.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) GetMe(ctx context.Context, actor policy.Actor) (*User, error) {
	if actor.ID == 0 {
		return nil, core.UnauthorizedError("Not authenticated")
	}

	return s.load(ctx, actor.ID)
}

func (s *Service) GetUser(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) (*User, error) {
	if !policy.CanManageUsers(actor, policy.ViewUser) {
		return nil, core.ForbiddenError("Not enough permissions")
	}

	return s.load(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	actor policy.Actor,
	params ListUsersParams,
) ([]User, int, error) {
	if !policy.CanManageUsers(actor, policy.ListUsers) {
		return nil, 0, core.ForbiddenError("Not enough permissions")
	}

	// Without a role filter the listing covers staff only.
	switch {
	case params.Role == "":
		params.Roles = []string{policy.RoleAdmin, policy.RoleManager}
	case policy.ValidRole(params.Role):
		params.Roles = []string{params.Role}
	default:
		return nil, 0, core.ValidationError("role must be one of: user manager admin")
	}

	return s.repo.List(ctx, params)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	actor policy.Actor,
	req UpdateUserRequest,
) (*User, error) {
	return s.UpdateUser(ctx, actor, actor.ID, req)
}

// UpdateUser applies a partial update. Changing a role is reserved for
// admins, including on one's own account.
func (s *Service) UpdateUser(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	if !policy.CanUpdateUser(actor, id) {
		return nil, core.ForbiddenError("Not enough permissions")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != user.Role {
		if !policy.CanManageUsers(actor, policy.ChangeRole) {
			return nil, core.ForbiddenError("Only administrators can change roles")
		}
		if !policy.ValidRole(*req.Role) {
			return nil, core.ValidationError("role must be one of: user manager admin")
		}
		user.Role = *req.Role
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Surname != nil {
		user.Surname = *req.Surname
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hashed, err := core.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.HashedPassword = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.ConflictError("Email already registered")
		case errors.Is(err, core.ErrNotFound):
			return nil, core.NotFoundError("User")
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) error {
	if !policy.CanManageUsers(actor, policy.DeleteUser) {
		return core.ForbiddenError("Not enough permissions")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("User")
		}
		return err
	}

	s.logger.InfoContext(ctx, "user deleted",
		"user_id", id,
		"deleted_by", actor.ID,
	)

	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("User")
		}
		return nil, err
	}
	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Surname:        u.Surname,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		Role:           u.Role,
	}
}

var _ auth.UserProvider = (*Service)(nil)
