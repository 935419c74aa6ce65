// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/policy"
)

type verifierFunc func(ctx context.Context, token string) (*Identity, error)

func (f verifierFunc) ResolveToken(ctx context.Context, token string) (*Identity, error) {
	return f(ctx, token)
}

func tokens(valid map[string]*Identity) TokenVerifier {
	return verifierFunc(func(_ context.Context, token string) (*Identity, error) {
		switch token {
		case "expired":
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		case "revoked":
			return nil, fmt.Errorf("resolve token: %w", core.ErrTokenRevoked)
		case "store-down":
			return nil, fmt.Errorf("check blacklist: %w", errors.New("dial tcp: connection refused"))
		}
		if id, ok := valid[token]; ok {
			return id, nil
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorResponse {
	t.Helper()
	var body core.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestAuthenticator(t *testing.T) {
	alice := &Identity{UserID: 7, Email: "alice@example.com", Role: policy.RoleUser}
	verifier := tokens(map[string]*Identity{"good": alice})

	var seen policy.Actor
	handler := Authenticator(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetActor(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "missing header", wantCode: http.StatusUnauthorized, wantErr: "UNAUTHORIZED"},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantErr: "UNAUTHORIZED"},
		{name: "expired", header: "Bearer expired", wantCode: http.StatusUnauthorized, wantErr: "TOKEN_EXPIRED"},
		{name: "revoked", header: "Bearer revoked", wantCode: http.StatusUnauthorized, wantErr: "TOKEN_REVOKED"},
		{name: "garbage", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: "TOKEN_INVALID"},
		{name: "revocation store down", header: "Bearer store-down", wantCode: http.StatusInternalServerError, wantErr: "INTERNAL_ERROR"},
		{name: "valid", header: "bearer good", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = policy.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantErr == "" {
				if seen.ID != alice.UserID || seen.Email != alice.Email {
					t.Errorf("actor = %+v", seen)
				}
				return
			}
			wantChallenge := ""
			if tt.wantCode == http.StatusUnauthorized {
				wantChallenge = "Bearer"
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != wantChallenge {
				t.Errorf("WWW-Authenticate = %q, want %q", got, wantChallenge)
			}
			if got := decodeError(t, rec).Code; got != tt.wantErr {
				t.Errorf("error code = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	handler := RequirePermission(policy.DeleteTicket)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		identity *Identity
		wantCode int
	}{
		{name: "anonymous", wantCode: http.StatusUnauthorized},
		{name: "user", identity: &Identity{UserID: 1, Role: policy.RoleUser}, wantCode: http.StatusForbidden},
		{name: "manager", identity: &Identity{UserID: 2, Role: policy.RoleManager}, wantCode: http.StatusOK},
		{name: "admin", identity: &Identity{UserID: 3, Role: policy.RoleAdmin}, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/tickets/1", nil)
			if tt.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestGetActorWithoutIdentity(t *testing.T) {
	actor := GetActor(context.Background())
	if actor != (policy.Actor{}) {
		t.Errorf("GetActor() = %+v, want zero", actor)
	}
	if policy.Can(actor, policy.ViewTicket) {
		t.Error("zero actor allowed to view tickets")
	}
}
