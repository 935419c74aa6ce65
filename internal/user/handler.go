// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/middleware"
	"github.com/igorteleutsa/taskSystem/internal/policy"
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

// RegisterRoutes mounts onto a router already scoped to /users.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/", h.UpdateMe)

		r.With(middleware.RequirePermission(policy.UpdateAnyUser)).
			Put("/update/{userID}", h.UpdateUser)
		r.With(middleware.RequirePermission(policy.ListUsers)).
			Get("/", h.ListUsers)
		r.With(middleware.RequirePermission(policy.ViewUser)).
			Get("/{userID}", h.GetUser)
		r.With(middleware.RequirePermission(policy.DeleteUser)).
			Delete("/{userID}", h.DeleteUser)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}

	user, err := h.service.UpdateMe(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// UpdateUser updates any user's profile (admin only).
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.PathID(w, r, "userID")
	if !ok {
		return
	}

	req, ok := h.decodeUpdate(w, r)
	if !ok {
		return
	}

	user, err := h.service.UpdateUser(
		r.Context(),
		middleware.GetActor(r.Context()),
		userID,
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// ListUsers returns a page of users, optionally filtered by role or a
// search term matched against email, name and surname.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(
		r.Context(),
		middleware.GetActor(r.Context()),
		params,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	core.OK(w, ToUserResponseList(users))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.PathID(w, r, "userID")
	if !ok {
		return
	}

	user, err := h.service.GetUser(
		r.Context(),
		middleware.GetActor(r.Context()),
		userID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

// DeleteUser removes a user along with owned projects (admin only).
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := core.PathID(w, r, "userID")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(
		r.Context(),
		middleware.GetActor(r.Context()),
		userID,
	); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, "User deleted successfully")
}

func (h *Handler) decodeUpdate(
	w http.ResponseWriter,
	r *http.Request,
) (UpdateUserRequest, bool) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
