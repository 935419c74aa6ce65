// AngelaMos | 2026
// jwt.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/igorteleutsa/taskSystem/internal/config"
	"github.com/igorteleutsa/taskSystem/internal/core"
)

type JWTManager struct {
	key       jwk.Key
	algorithm jwa.SignatureAlgorithm
	ttl       time.Duration
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is empty")
	}

	alg, err := signatureAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	key, err := jwk.Import([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("import secret key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, alg); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &JWTManager{
		key:       key,
		algorithm: alg,
		ttl:       cfg.AccessTokenTTL(),
	}, nil
}

func signatureAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	switch strings.ToUpper(name) {
	case "", "HS256":
		return jwa.HS256(), nil
	case "HS384":
		return jwa.HS384(), nil
	case "HS512":
		return jwa.HS512(), nil
	}
	var unsupported jwa.SignatureAlgorithm
	return unsupported, fmt.Errorf("unsupported jwt algorithm %q", name)
}

type AccessTokenClaims struct {
	UserID int64
	Email  string
	Role   string
}

type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// VerifiedToken is what a valid signature proves. Role is informational;
// authorization reads the stored role.
type VerifiedToken struct {
	UserID    int64
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func (m *JWTManager) TTL() time.Duration {
	return m.ttl
}

func (m *JWTManager) Algorithm() string {
	return m.algorithm.String()
}

func (m *JWTManager) CreateAccessToken(
	claims AccessTokenClaims,
) (*IssuedToken, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	jti := uuid.New().String()

	token, err := jwt.NewBuilder().
		JwtID(jti).
		Subject(claims.Email).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim("id", claims.UserID).
		Claim("role", claims.Role).
		Claim("type", "access").
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(m.algorithm, m.key))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		Token:     string(signed),
		TokenID:   jti,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *JWTManager) VerifyAccessToken(tokenString string) (*VerifiedToken, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(m.algorithm, m.key),
		jwt.WithValidate(true),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil ||
		tokenType != "access" {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	var idFloat float64
	if err := token.Get("id", &idFloat); err != nil || idFloat <= 0 {
		return nil, fmt.Errorf(
			"verify token: missing id claim: %w",
			core.ErrTokenInvalid,
		)
	}

	var role string
	if err := token.Get("role", &role); err != nil {
		return nil, fmt.Errorf(
			"verify token: missing role claim: %w",
			core.ErrTokenInvalid,
		)
	}

	jti, _ := token.JwtID()
	exp, _ := token.Expiration()

	return &VerifiedToken{
		UserID:    int64(idFloat),
		Email:     subject,
		Role:      role,
		TokenID:   jti,
		ExpiresAt: exp,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
