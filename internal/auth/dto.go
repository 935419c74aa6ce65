// AngelaMos | 2026
// dto.go

package auth

// LoginRequest mirrors the OAuth2 password form: username carries the email.
type LoginRequest struct {
	Username string `json:"username" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type SignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Surname  string `json:"surname"  validate:"required,min=1,max=100"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	IsActive bool   `json:"is_active"`
	Role     string `json:"role"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Surname:  u.Surname,
		IsActive: u.IsActive,
		Role:     u.Role,
	}
}
