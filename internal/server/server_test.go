// AngelaMos | 2026
// server_test.go

package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/igorteleutsa/taskSystem/internal/auth"
	"github.com/igorteleutsa/taskSystem/internal/config"
	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/events"
	"github.com/igorteleutsa/taskSystem/internal/middleware"
	"github.com/igorteleutsa/taskSystem/internal/project"
	"github.com/igorteleutsa/taskSystem/internal/server"
	"github.com/igorteleutsa/taskSystem/internal/ticket"
	"github.com/igorteleutsa/taskSystem/internal/user"
)

type userStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]user.User
}

func (s *userStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	s.nextID++
	u.ID = s.nextID
	s.rows[u.ID] = *u
	return nil
}

func (s *userStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *userStore) Update(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[u.ID] = *u
	return nil
}

func (s *userStore) UpdatePassword(_ context.Context, id int64, hashed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.rows[id]
	u.HashedPassword = hashed
	s.rows[id] = u
	return nil
}

func (s *userStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *userStore) List(context.Context, user.ListUsersParams) ([]user.User, int, error) {
	return nil, 0, errors.New("not used")
}

type projectStore struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]project.Project
	members map[[2]int64]bool
}

func (s *projectStore) Create(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p.ID = s.nextID
	s.rows[p.ID] = *p
	return nil
}

func (s *projectStore) GetByID(_ context.Context, id int64) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &p, nil
}

func (s *projectStore) ListByOwner(_ context.Context, ownerID int64) ([]project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []project.Project{}
	for _, p := range s.rows {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *projectStore) Update(_ context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p.ID] = *p
	return nil
}

func (s *projectStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *projectStore) AddMember(_ context.Context, projectID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[[2]int64{projectID, userID}] = true
	return nil
}

func (s *projectStore) RemoveMember(_ context.Context, projectID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, [2]int64{projectID, userID})
	return nil
}

func (s *projectStore) ListMembers(context.Context, int64) ([]project.Member, error) {
	return []project.Member{}, nil
}

func (s *projectStore) isMember(projectID, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.members[[2]int64{projectID, userID}]
}

type ticketStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]ticket.Ticket
	executors map[int64][]int64
	projects  *projectStore
}

func (s *ticketStore) Create(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	s.rows[t.ID] = *t
	return nil
}

func (s *ticketStore) GetByID(_ context.Context, id int64) (*ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &t, nil
}

func (s *ticketStore) ListByProject(_ context.Context, projectID int64) ([]ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []ticket.Ticket{}
	for _, t := range s.rows {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *ticketStore) Update(_ context.Context, t *ticket.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.ID] = *t
	return nil
}

func (s *ticketStore) UpdateStatus(ctx context.Context, t *ticket.Ticket) error {
	return s.Update(ctx, t)
}

func (s *ticketStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.rows, id)
	delete(s.executors, id)
	return nil
}

func (s *ticketStore) AddExecutor(_ context.Context, ticketID, userID, projectID int64) error {
	if !s.projects.isMember(projectID, userID) {
		return core.ErrForeignKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executors[ticketID] = append(s.executors[ticketID], userID)
	return nil
}

func (s *ticketStore) RemoveExecutor(context.Context, int64, int64) error {
	return nil
}

func (s *ticketStore) ListExecutors(_ context.Context, ticketID int64) ([]ticket.Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []ticket.Executor{}
	for _, id := range s.executors[ticketID] {
		out = append(out, ticket.Executor{ID: id})
	}
	return out, nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (e *recordingEmitter) Emit(_ context.Context, ev events.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) snapshot() []events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]events.Event(nil), e.events...)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type harness struct {
	t       *testing.T
	server  *httptest.Server
	emitter *recordingEmitter
}

func newHarness(t *testing.T, db pinger) *harness {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(config.JWTConfig{
		SecretKey:                "integration-secret-key-0123456789",
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 30,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	users := &userStore{rows: make(map[int64]user.User)}
	projects := &projectStore{
		rows:    make(map[int64]project.Project),
		members: make(map[[2]int64]bool),
	}
	tickets := &ticketStore{
		rows:      make(map[int64]ticket.Ticket),
		executors: make(map[int64][]int64),
		projects:  projects,
	}
	emitter := &recordingEmitter{}

	userSvc := user.NewService(users, nil)
	authSvc := auth.NewService(auth.ServiceConfig{
		JWT:          jwtManager,
		UserProvider: userSvc,
	})
	projectSvc := project.NewService(projects, userSvc, nil)
	ticketSvc := ticket.NewService(ticket.ServiceConfig{
		Repository: tickets,
		Projects:   projectSvc,
		Users:      userSvc,
		Emitter:    emitter,
	})

	srv := server.New(server.Config{
		Database: db,
		Gatherer: prometheus.NewRegistry(),
	})
	router := srv.Router()
	router.Use(middleware.RequestID)
	srv.RegisterOpsRoutes()

	authenticator := middleware.Authenticator(authSvc)
	router.Route("/users", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticator)
	})
	project.NewHandler(projectSvc).RegisterRoutes(router, authenticator)
	ticket.NewHandler(ticketSvc).RegisterRoutes(router, authenticator)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &harness{t: t, server: ts, emitter: emitter}
}

func (h *harness) do(method, path, token string, body any) (int, []byte) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal: %v", err)
		}
		reader = strings.NewReader(string(raw))
	}

	req, err := http.NewRequest(method, h.server.URL+path, reader)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return h.send(req)
}

func (h *harness) send(req *http.Request) (int, []byte) {
	h.t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func (h *harness) signupAndLogin(email string) (int64, string) {
	h.t.Helper()

	code, raw := h.do(http.MethodPost, "/users/signup", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test",
		"surname":  "User",
	})
	if code != http.StatusOK {
		h.t.Fatalf("signup %s: %d %s", email, code, raw)
	}
	var created auth.UserResponse
	mustDecode(h.t, raw, &created)

	form := url.Values{"username": {email}, "password": {"password123"}}
	req, err := http.NewRequest(
		http.MethodPost,
		h.server.URL+"/users/login",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	code, raw = h.send(req)
	if code != http.StatusOK {
		h.t.Fatalf("login %s: %d %s", email, code, raw)
	}
	var token auth.TokenResponse
	mustDecode(h.t, raw, &token)
	if token.TokenType != "Bearer" || token.AccessToken == "" {
		h.t.Fatalf("token response = %+v", token)
	}

	return created.ID, token.AccessToken
}

func mustDecode(t *testing.T, raw []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestProjectOwnershipScenario(t *testing.T) {
	h := newHarness(t, pinger{})

	_, ownerToken := h.signupAndLogin("owner@example.com")
	_, otherToken := h.signupAndLogin("other@example.com")

	code, raw := h.do(http.MethodPost, "/projects/", ownerToken, map[string]string{
		"title": "Apollo",
	})
	if code != http.StatusOK {
		t.Fatalf("create project: %d %s", code, raw)
	}
	var created project.ProjectResponse
	mustDecode(t, raw, &created)
	if created.Status != project.StatusActive {
		t.Errorf("status = %q, want active", created.Status)
	}

	path := "/projects/" + itoa(created.ID)

	code, raw = h.do(http.MethodDelete, path, otherToken, nil)
	if code != http.StatusForbidden {
		t.Fatalf("foreign delete: %d %s, want 403", code, raw)
	}

	code, raw = h.do(http.MethodDelete, path, ownerToken, nil)
	if code != http.StatusOK {
		t.Fatalf("owner delete: %d %s", code, raw)
	}
	var msg core.MessageResponse
	mustDecode(t, raw, &msg)
	if msg.Message != "Project deleted successfully" {
		t.Errorf("message = %q", msg.Message)
	}

	code, raw = h.do(http.MethodGet, path, ownerToken, nil)
	if code != http.StatusNotFound {
		t.Fatalf("get deleted: %d %s, want 404", code, raw)
	}
	var errBody core.ErrorResponse
	mustDecode(t, raw, &errBody)
	if errBody.Detail != "Project not found" {
		t.Errorf("detail = %q", errBody.Detail)
	}
}

func TestTicketLifecycleScenario(t *testing.T) {
	h := newHarness(t, pinger{})

	_, ownerToken := h.signupAndLogin("owner@example.com")
	workerID, workerToken := h.signupAndLogin("worker@example.com")
	outsiderID, _ := h.signupAndLogin("outsider@example.com")

	code, raw := h.do(http.MethodPost, "/projects/", ownerToken, map[string]string{"title": "Apollo"})
	if code != http.StatusOK {
		t.Fatalf("create project: %d %s", code, raw)
	}
	var proj project.ProjectResponse
	mustDecode(t, raw, &proj)

	code, raw = h.do(http.MethodPost, "/projects/"+itoa(proj.ID)+"/members", ownerToken,
		map[string]int64{"user_id": workerID})
	if code != http.StatusOK {
		t.Fatalf("add member: %d %s", code, raw)
	}

	code, raw = h.do(http.MethodPost, "/tickets/", ownerToken, map[string]any{
		"title":      "Launch",
		"project_id": proj.ID,
		"priority":   6,
	})
	if code != http.StatusBadRequest {
		t.Fatalf("priority 6: %d %s, want 400", code, raw)
	}

	code, raw = h.do(http.MethodPost, "/tickets/", ownerToken, map[string]any{
		"title":      "Launch",
		"project_id": proj.ID,
	})
	if code != http.StatusOK {
		t.Fatalf("create ticket: %d %s", code, raw)
	}
	var tk ticket.TicketResponse
	mustDecode(t, raw, &tk)
	ticketPath := "/tickets/" + itoa(tk.ID)

	code, raw = h.do(http.MethodGet, ticketPath+"/executors", workerToken, nil)
	if code != http.StatusNotFound {
		t.Fatalf("empty executors: %d %s, want 404", code, raw)
	}

	code, raw = h.do(http.MethodPost, ticketPath+"/executors", ownerToken,
		map[string]int64{"user_id": outsiderID})
	if code != http.StatusConflict {
		t.Fatalf("non-member executor: %d %s, want 409", code, raw)
	}

	code, raw = h.do(http.MethodPost, ticketPath+"/executors", ownerToken,
		map[string]int64{"user_id": workerID})
	if code != http.StatusOK {
		t.Fatalf("add executor: %d %s", code, raw)
	}

	code, raw = h.do(http.MethodPut, ticketPath+"/status", workerToken,
		map[string]string{"new_status": "done"})
	if code != http.StatusOK {
		t.Fatalf("change status: %d %s", code, raw)
	}

	emitted := h.emitter.snapshot()
	if len(emitted) != 1 {
		t.Fatalf("events = %d, want 1", len(emitted))
	}
	ev, ok := emitted[0].(events.TicketStatusChanged)
	if !ok {
		t.Fatalf("event type = %T", emitted[0])
	}
	if ev.TicketID != tk.ID || ev.NewStatus != "done" || ev.UpdatedBy != "worker@example.com" {
		t.Errorf("event = %+v", ev)
	}

	code, raw = h.do(http.MethodDelete, ticketPath, ownerToken, nil)
	if code != http.StatusForbidden {
		t.Fatalf("user deletes ticket: %d %s, want 403", code, raw)
	}
}

func TestOpsRoutes(t *testing.T) {
	h := newHarness(t, pinger{})

	code, raw := h.do(http.MethodGet, "/", "", nil)
	if code != http.StatusOK || !strings.Contains(string(raw), "Welcome to the Task Tracker API!") {
		t.Errorf("root: %d %s", code, raw)
	}

	code, raw = h.do(http.MethodGet, "/check_db", "", nil)
	if code != http.StatusOK || !strings.Contains(string(raw), "Connection successful") {
		t.Errorf("check_db: %d %s", code, raw)
	}

	code, _ = h.do(http.MethodGet, "/metrics", "", nil)
	if code != http.StatusOK {
		t.Errorf("metrics: %d", code)
	}

	down := newHarness(t, pinger{err: errors.New("connection refused")})
	code, raw = down.do(http.MethodGet, "/check_db", "", nil)
	if code != http.StatusOK || !strings.Contains(string(raw), "Connection failed") {
		t.Errorf("check_db down: %d %s", code, raw)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t, pinger{})

	for _, path := range []string{"/users/me", "/projects/", "/tickets/1"} {
		code, _ := h.do(http.MethodGet, path, "", nil)
		if code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: %d, want 401", path, code)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
