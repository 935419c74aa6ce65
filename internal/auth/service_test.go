// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/policy"
)

type stubUsers struct {
	nextID   int64
	byID     map[int64]*UserInfo
	rehashes int
}

func newStubUsers() *stubUsers {
	return &stubUsers{byID: make(map[int64]*UserInfo)}
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *stubUsers) GetByID(_ context.Context, id int64) (*UserInfo, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) Create(ctx context.Context, in NewUser) (*UserInfo, error) {
	if _, err := s.GetByEmail(ctx, in.Email); err == nil {
		return nil, core.ErrDuplicateKey
	}
	s.nextID++
	u := &UserInfo{
		ID:             s.nextID,
		Email:          in.Email,
		Name:           in.Name,
		Surname:        in.Surname,
		HashedPassword: in.HashedPassword,
		IsActive:       true,
		Role:           in.Role,
	}
	s.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (s *stubUsers) UpdatePassword(_ context.Context, id int64, hashed string) error {
	u, ok := s.byID[id]
	if !ok {
		return core.ErrNotFound
	}
	u.HashedPassword = hashed
	s.rehashes++
	return nil
}

type memoryFlags map[string]time.Duration

func (m memoryFlags) SetFlag(_ context.Context, key string, ttl time.Duration) error {
	m[key] = ttl
	return nil
}

func (m memoryFlags) HasFlag(_ context.Context, key string) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

type unreachableFlags struct{ err error }

func (u unreachableFlags) SetFlag(context.Context, string, time.Duration) error {
	return u.err
}

func (u unreachableFlags) HasFlag(context.Context, string) (bool, error) {
	return false, u.err
}

func newTestService(t *testing.T) (*Service, *stubUsers, memoryFlags) {
	t.Helper()
	users := newStubUsers()
	flags := memoryFlags{}
	svc := NewService(ServiceConfig{
		JWT:          newTestJWT(t, "HS256"),
		UserProvider: users,
		Revocations:  flags,
		AdminEmails:  []string{"Boss@Example.com"},
	})
	return svc, users, flags
}

func signup(t *testing.T, svc *Service, email string) *UserInfo {
	t.Helper()
	u, err := svc.Signup(context.Background(), SignupRequest{
		Email:    email,
		Password: "password123",
		Name:     "Ada",
		Surname:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("Signup(%s) error = %v", email, err)
	}
	return u
}

func TestSignupRoles(t *testing.T) {
	svc, _, _ := newTestService(t)

	regular := signup(t, svc, "dev@example.com")
	if regular.Role != policy.RoleUser {
		t.Errorf("regular Role = %q, want user", regular.Role)
	}

	boss := signup(t, svc, "boss@example.com")
	if boss.Role != policy.RoleAdmin {
		t.Errorf("bootstrap admin Role = %q, want admin", boss.Role)
	}

	_, err := svc.Signup(context.Background(), SignupRequest{
		Email:    "DEV@example.com",
		Password: "password123",
		Name:     "x",
		Surname:  "y",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate Signup() error = %v, want ErrEmailExists", err)
	}
}

func TestLoginAndResolve(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "dev@example.com")

	if _, err := svc.Login(ctx, "dev@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := svc.Login(ctx, "ghost@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}

	resp, err := svc.Login(ctx, "DEV@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 1800 {
		t.Errorf("token response = %+v", resp)
	}

	identity, err := svc.ResolveToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if identity.UserID != u.ID || identity.Email != u.Email || identity.Role != policy.RoleUser {
		t.Errorf("identity = %+v", identity)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, flags := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "dev@example.com")

	resp, err := svc.Login(ctx, "dev@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	identity, err := svc.ResolveToken(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}

	if err := svc.Logout(ctx, identity); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if ttl, ok := flags[blacklistPrefix+identity.TokenID]; !ok || ttl <= 0 {
		t.Fatalf("revocation flag = %v, %v", ttl, ok)
	}

	if _, err := svc.ResolveToken(ctx, resp.AccessToken); !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("ResolveToken() after logout error = %v, want ErrTokenRevoked", err)
	}
}

func TestResolveTokenStoreFailureIsNotACredentialError(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	signup(t, svc, "dev@example.com")

	resp, err := svc.Login(ctx, "dev@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	dial := errors.New("dial tcp: connection refused")
	broken := NewService(ServiceConfig{
		JWT:          svc.jwt,
		UserProvider: users,
		Revocations:  unreachableFlags{err: dial},
	})

	_, err = broken.ResolveToken(ctx, resp.AccessToken)
	if !errors.Is(err, dial) {
		t.Fatalf("ResolveToken() error = %v, want wrapped store error", err)
	}
	for _, sentinel := range []error{core.ErrTokenInvalid, core.ErrTokenExpired, core.ErrTokenRevoked} {
		if errors.Is(err, sentinel) {
			t.Errorf("ResolveToken() error matches %v", sentinel)
		}
	}
	if _, ok := core.IsAppError(err); ok {
		t.Errorf("ResolveToken() error = %v, want non-AppError", err)
	}
}

func TestInactiveUser(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "dev@example.com")

	resp, err := svc.Login(ctx, "dev@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	users.byID[u.ID].IsActive = false

	if _, err := svc.Login(ctx, "dev@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("inactive Login() error = %v", err)
	}

	_, err = svc.ResolveToken(ctx, resp.AccessToken)
	appErr, ok := core.IsAppError(err)
	if !ok || appErr.Message != "Inactive user" {
		t.Errorf("inactive ResolveToken() error = %v", err)
	}
}

func TestDeletedUserTokenInvalid(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "dev@example.com")

	resp, err := svc.Login(ctx, "dev@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	delete(users.byID, u.ID)

	if _, err := svc.ResolveToken(ctx, resp.AccessToken); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("ResolveToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestLegacyBcryptPasswordIsRehashed(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u, err := users.Create(ctx, NewUser{
		Email:          "old@example.com",
		HashedPassword: string(legacy),
		Role:           policy.RoleUser,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Login(ctx, "old@example.com", "password123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if users.rehashes != 1 {
		t.Errorf("rehashes = %d, want 1", users.rehashes)
	}
	if !strings.HasPrefix(users.byID[u.ID].HashedPassword, "$argon2id$") {
		t.Errorf("stored hash not upgraded")
	}
}
