// AngelaMos | 2026
// dto.go

package ticket

import (
	"time"
)

type CreateTicketRequest struct {
	Title       string  `json:"title"                 validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	ProjectID   int64   `json:"project_id"            validate:"required,gt=0"`
}

type UpdateTicketRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
}

type ExecutorRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type StatusRequest struct {
	NewStatus string `json:"new_status" validate:"required"`
}

type TicketResponse struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       *string   `json:"description"`
	Status            string    `json:"status"`
	Priority          int       `json:"priority"`
	ProjectID         int64     `json:"project_id"`
	ResponsibleUserID int64     `json:"responsible_user_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ExecutorResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	IsActive bool   `json:"is_active"`
	Role     string `json:"role"`
}

func ToTicketResponse(t *Ticket) TicketResponse {
	return TicketResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Status:            t.Status,
		Priority:          t.Priority,
		ProjectID:         t.ProjectID,
		ResponsibleUserID: t.ResponsibleUserID,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

func ToTicketResponseList(tickets []Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, ToTicketResponse(&tickets[i]))
	}
	return out
}

func ToExecutorResponseList(executors []Executor) []ExecutorResponse {
	out := make([]ExecutorResponse, 0, len(executors))
	for _, e := range executors {
		out = append(out, ExecutorResponse(e))
	}
	return out
}
