// AngelaMos | 2026
// handler.go

package project

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/projects", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.ListOwned)
		r.Get("/{projectID}", h.Get)
		r.Put("/{projectID}", h.Update)
		r.Delete("/{projectID}", h.Delete)
		r.Put("/{projectID}/status", h.ChangeStatus)

		r.Get("/{projectID}/members", h.ListMembers)
		r.Post("/{projectID}/members", h.AddMember)
		r.Delete("/{projectID}/members/{userID}", h.RemoveMember)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	project, err := h.service.Create(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) ListOwned(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListOwned(
		r.Context(),
		middleware.GetActor(r.Context()),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponseList(projects))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	project, err := h.service.Get(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	project, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	if err := h.service.Delete(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
	); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, "Project deleted successfully")
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	project, err := h.service.ChangeStatus(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req.NewStatus,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	members, err := h.service.ListMembers(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToMemberResponseList(members))
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	project, err := h.service.AddMember(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req.UserID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	userID, ok := core.PathID(w, r, "userID")
	if !ok {
		return
	}

	project, err := h.service.RemoveMember(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		userID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(project))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
