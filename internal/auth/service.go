// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/middleware"
	"github.com/igorteleutsa/taskSystem/internal/policy"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

const blacklistPrefix = "blacklist:"

type UserInfo struct {
	ID             int64
	Email          string
	Name           string
	Surname        string
	HashedPassword string
	IsActive       bool
	Role           string
}

type NewUser struct {
	Email          string
	HashedPassword string
	Name           string
	Surname        string
	Role           string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, in NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// RevocationStore keeps short-lived markers for logged-out tokens.
type RevocationStore interface {
	SetFlag(ctx context.Context, key string, ttl time.Duration) error
	HasFlag(ctx context.Context, key string) (bool, error)
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	revocations  RevocationStore
	adminEmails  map[string]struct{}
	logger       *slog.Logger
}

type ServiceConfig struct {
	JWT          *JWTManager
	UserProvider UserProvider
	Revocations  RevocationStore
	AdminEmails  []string
	Logger       *slog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		jwt:          cfg.JWT,
		userProvider: cfg.UserProvider,
		revocations:  cfg.Revocations,
		adminEmails:  admins,
		logger:       logger,
	}
}

func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (*UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashedPassword, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := policy.RoleUser
	if _, ok := s.adminEmails[email]; ok {
		role = policy.RoleAdmin
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           req.Name,
		Surname:        req.Surname,
		Role:           role,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		"user_id", user.ID,
		"role", user.Role,
	)

	return user, nil
}

// Authenticate checks credentials. Unknown emails, wrong passwords and
// inactive accounts are indistinguishable to the caller.
func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
) (*UserInfo, error) {
	user, err := s.userProvider.GetByEmail(
		ctx,
		strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		&user.HashedPassword,
	)
	if err != nil {
		s.logger.WarnContext(ctx, "stored password hash unreadable",
			"user_id", user.ID,
			"error", err,
		)
		return nil, ErrInvalidCredentials
	}

	if !valid || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return user, nil
}

func (s *Service) Login(
	ctx context.Context,
	email, password string,
) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	issued, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.jwt.TTL().Seconds()),
	}, nil
}

// ResolveToken turns a bearer token into the live caller. The user row is
// re-read on every request so deactivation and role changes apply at once.
func (s *Service) ResolveToken(
	ctx context.Context,
	token string,
) (*middleware.Identity, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	if claims.TokenID != "" {
		revoked, err := s.IsAccessTokenRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, fmt.Errorf("resolve token: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("resolve token: %w", core.ErrTokenRevoked)
		}
	}

	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	if !user.IsActive {
		return nil, core.UnauthorizedError("Inactive user")
	}

	return &middleware.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, identity *middleware.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return nil
	}
	return s.RevokeAccessToken(ctx, identity.TokenID, identity.ExpiresAt)
}

func (s *Service) RevokeAccessToken(
	ctx context.Context,
	jti string,
	expiresAt time.Time,
) error {
	if s.revocations == nil {
		return nil
	}

	if err := s.revocations.SetFlag(
		ctx,
		blacklistPrefix+jti,
		time.Until(expiresAt),
	); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (s *Service) IsAccessTokenRevoked(
	ctx context.Context,
	jti string,
) (bool, error) {
	if s.revocations == nil {
		return false, nil
	}

	revoked, err := s.revocations.HasFlag(ctx, blacklistPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return revoked, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
