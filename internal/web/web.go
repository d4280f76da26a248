// ABOUTME: HTTP server for the roster single-page app and its JSON API
// ABOUTME: Serves the embedded app shell, student CRUD endpoints, and static assets

package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/rosterhq/roster/internal/auth"
	"github.com/rosterhq/roster/internal/roster"
	"github.com/rosterhq/roster/internal/store"
)

// User-facing error strings. Everything that isn't a validation message
// collapses to a generic sentence; internals stay in the logs.
const (
	msgInternal   = "Something went wrong. Please try again."
	msgNotFound   = "Record not found."
	msgBadRequest = "The request could not be read."
)

// Server handles the browser-facing HTTP surface.
type Server struct {
	service  *roster.Service
	sessions *auth.SessionManager
	logger   *slog.Logger
	tmpl     *template.Template
}

// New creates the web server over the record service and session manager.
func New(service *roster.Service, sessions *auth.SessionManager) *Server {
	return &Server{
		service:  service,
		sessions: sessions,
		logger:   slog.Default().With("component", "web"),
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Handler returns the fully routed handler. Everything the page touches
// runs behind the session middleware; health and static assets do not.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /static/", http.StripPrefix("/static/", s.staticHandler()))

	mux.Handle("GET /{$}", s.sessions.Middleware(http.HandlerFunc(s.handleIndex)))
	mux.Handle("GET /api/students", s.sessions.Middleware(http.HandlerFunc(s.handleListStudents)))
	mux.Handle("POST /api/students", s.sessions.Middleware(http.HandlerFunc(s.handleCreateStudent)))
	mux.Handle("PUT /api/students/{id}", s.sessions.Middleware(http.HandlerFunc(s.handleUpdateStudent)))
	mux.Handle("DELETE /api/students/{id}", s.sessions.Middleware(http.HandlerFunc(s.handleDeleteStudent)))
	mux.Handle("GET /api/students/stream", s.sessions.Middleware(http.HandlerFunc(s.handleStream)))

	return mux
}

// staticHandler serves the embedded static assets. Nothing is content
// hashed, so everything gets no-cache.
func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create static sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}

// indexData holds data for the app shell template
type indexData struct {
	Title string
}

// handleIndex renders the app shell. The list itself is driven entirely
// by the snapshot stream once the page boots.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", indexData{Title: "Student Roster"}); err != nil {
		s.logger.Error("failed to render app shell", "error", err)
	}
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// studentPayload is the JSON body accepted by create and update.
type studentPayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`
	Phone     string `json:"phone"`
}

func (p *studentPayload) toRecord() *store.Student {
	return &store.Student{
		Name:      p.Name,
		Email:     p.Email,
		StudentID: p.StudentID,
		Phone:     p.Phone,
	}
}

// handleListStudents handles GET /api/students.
// Returns the caller's current snapshot, optionally filtered by ?q=.
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	students, err := s.service.List(r.Context(), identity.OwnerID, r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Error("failed to list students", "owner_id", identity.OwnerID, "error", err)
		s.sendError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.sendJSON(w, http.StatusOK, students)
}

// handleCreateStudent handles POST /api/students.
// The new id is returned for completeness, but the page learns about the
// record through the next snapshot event, not from this response.
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())

	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}

	id, err := s.service.Create(r.Context(), identity.OwnerID, payload.toRecord())
	if err != nil {
		s.writeMutationError(w, identity.OwnerID, err)
		return
	}

	s.sendJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleUpdateStudent handles PUT /api/students/{id}.
// Full-record replace; no partial merge.
func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	id := r.PathValue("id")

	payload, ok := s.decodePayload(w, r)
	if !ok {
		return
	}

	if err := s.service.Update(r.Context(), identity.OwnerID, id, payload.toRecord()); err != nil {
		s.writeMutationError(w, identity.OwnerID, err)
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDeleteStudent handles DELETE /api/students/{id}.
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustFromContext(r.Context())
	id := r.PathValue("id")

	if err := s.service.Delete(r.Context(), identity.OwnerID, id); err != nil {
		s.writeMutationError(w, identity.OwnerID, err)
		return
	}

	s.sendJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// decodePayload reads the JSON body, writing the error response itself
// when the body is empty or malformed.
func (s *Server) decodePayload(w http.ResponseWriter, r *http.Request) (*studentPayload, bool) {
	var payload studentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, msgBadRequest)
		return nil, false
	}
	return &payload, true
}

// writeMutationError maps service errors onto the response: validation
// messages pass through verbatim, missing records are 404, anything else
// is the generic internal message.
func (s *Server) writeMutationError(w http.ResponseWriter, ownerID string, err error) {
	switch {
	case roster.IsValidationError(err):
		s.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.sendError(w, http.StatusNotFound, msgNotFound)
	default:
		s.logger.Error("mutation failed", "owner_id", ownerID, "error", err)
		s.sendError(w, http.StatusInternalServerError, msgInternal)
	}
}

// errorResponse is the JSON envelope for error responses.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, msg string) {
	s.sendJSON(w, status, errorResponse{Status: "error", Error: msg})
}
