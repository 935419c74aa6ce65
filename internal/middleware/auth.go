// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/policy"
)

const (
	IdentityKey contextKey = "identity"
)

type TokenVerifier interface {
	ResolveToken(ctx context.Context, token string) (*Identity, error)
}

// Identity is the authenticated caller. Role is the role stored on the user
// row at request time, not the one baked into the token.
type Identity struct {
	UserID    int64
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (i *Identity) Actor() policy.Actor {
	return policy.Actor{ID: i.UserID, Email: i.Email, Role: i.Role}
}

func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				core.JSONError(w, core.UnauthorizedError("Not authenticated"))
				return
			}

			identity, err := verifier.ResolveToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission gates a route on the policy allow-list, so route-level
// and service-level checks read from the same table.
func RequirePermission(action policy.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			if userRole == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("authentication required"),
				)
				return
			}

			if !policy.Allowed(userRole, action) {
				core.JSONError(
					w,
					core.ForbiddenError("Not enough permissions"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// handleAuthError answers 401 only for credential failures. Anything else,
// such as an unreachable revocation store, is a 500.
func handleAuthError(w http.ResponseWriter, err error) {
	if appErr, ok := core.IsAppError(err); ok {
		if appErr.StatusCode == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		w.Header().Set("WWW-Authenticate", "Bearer")
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		w.Header().Set("WWW-Authenticate", "Bearer")
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid), errors.Is(err, core.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func GetUserID(ctx context.Context) int64 {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.UserID
	}
	return 0
}

func GetUserRole(ctx context.Context) string {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.Role
	}
	return ""
}

// GetActor returns the policy view of the caller; the zero Actor is denied
// by every rule.
func GetActor(ctx context.Context) policy.Actor {
	if identity := GetIdentity(ctx); identity != nil {
		return identity.Actor()
	}
	return policy.Actor{}
}

func userKey(ctx context.Context) string {
	if id := GetUserID(ctx); id != 0 {
		return strconv.FormatInt(id, 10)
	}
	return ""
}
