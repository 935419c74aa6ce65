// AngelaMos | 2026
// dto.go

package user

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"     validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty"  validate:"omitempty,min=8,max=128"`
	Name     *string `json:"name,omitempty"      validate:"omitempty,min=1,max=100"`
	Surname  *string `json:"surname,omitempty"   validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
	Role     *string `json:"role,omitempty"      validate:"omitempty,oneof=user manager admin"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	IsActive bool   `json:"is_active"`
	Role     string `json:"role"`
}

type ListUsersParams struct {
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Search   string   `json:"search"`
	Role     string   `json:"role"`
	Roles    []string `json:"-"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Surname:  u.Surname,
		IsActive: u.IsActive,
		Role:     u.Role,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
