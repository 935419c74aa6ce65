// AngelaMos | 2026
// dto.go

package project

import (
	"time"
)

type CreateProjectRequest struct {
	Title       string  `json:"title"                 validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof=active inactive archived"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"      validate:"omitempty,oneof=active inactive archived"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type StatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
}

type ProjectResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MemberResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	IsActive bool   `json:"is_active"`
	Role     string `json:"role"`
}

func ToProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToProjectResponseList(projects []Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, ToProjectResponse(&projects[i]))
	}
	return out
}

func ToMemberResponseList(members []Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse(m))
	}
	return out
}
