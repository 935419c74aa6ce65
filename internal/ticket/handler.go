// AngelaMos | 2026
// handler.go

package ticket

import (
	"encoding/json"
	"net/http"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tickets", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/list/{projectID}", h.ListByProject)
		r.Get("/{ticketID}", h.Get)
		r.Put("/{ticketID}", h.Update)
		r.With(middleware.RequirePermission(policy.DeleteTicket)).
			Delete("/{ticketID}", h.Delete)
		r.Put("/{ticketID}/status", h.ChangeStatus)

		r.Get("/{ticketID}/executors", h.ListExecutors)
		r.Post("/{ticketID}/executors", h.AddExecutor)
		r.Delete("/{ticketID}/executors/{userID}", h.RemoveExecutor)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if !h.decode(w, r, &req) {
		return
	}

	ticket, err := h.service.Create(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponse(ticket))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
	if !ok {
		return
	}

	ticket, err := h.service.Get(r.Context(), middleware.GetActor(r.Context()), id)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponse(ticket))
}

func (h *Handler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := core.PathID(w, r, "projectID")
	if !ok {
		return
	}

	tickets, err := h.service.ListByProject(
		r.Context(),
		middleware.GetActor(r.Context()),
		projectID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponseList(tickets))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
	if !ok {
		return
	}

	var req UpdateTicketRequest
	if !h.decode(w, r, &req) {
		return
	}

	ticket, err := h.service.Update(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponse(ticket))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
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

	core.Message(w, "Ticket deleted successfully")
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
	if !ok {
		return
	}

	var req StatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	ticket, err := h.service.ChangeStatus(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req.NewStatus,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponse(ticket))
}

func (h *Handler) ListExecutors(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
	if !ok {
		return
	}

	executors, err := h.service.ListExecutors(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToExecutorResponseList(executors))
}

func (h *Handler) AddExecutor(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
	if !ok {
		return
	}

	var req ExecutorRequest
	if !h.decode(w, r, &req) {
		return
	}

	ticket, err := h.service.AddExecutor(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req.UserID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponse(ticket))
}

func (h *Handler) RemoveExecutor(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "ticketID")
	if !ok {
		return
	}

	userID, ok := core.PathID(w, r, "userID")
	if !ok {
		return
	}

	ticket, err := h.service.RemoveExecutor(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		userID,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTicketResponse(ticket))
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
