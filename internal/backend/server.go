package backend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fmuoria/resume-tailor/internal/logger"
	"github.com/fmuoria/resume-tailor/internal/models"
	"github.com/google/uuid"
)

// Server is a small in-memory stand-in for the resume tailoring backend.
// It speaks the same HTTP contract so the client can be run and tested
// without the real service.
type Server struct {
	mu       sync.RWMutex
	users    map[string]string
	profiles []models.Profile
	tokens   map[string]string
}

// NewServer creates a stub backend with the given users (username to
// password) and profiles
func NewServer(users map[string]string, profiles []models.Profile) *Server {
	u := make(map[string]string, len(users))
	for k, v := range users {
		u[k] = v
	}
	return &Server{
		users:    u,
		profiles: append([]models.Profile(nil), profiles...),
		tokens:   make(map[string]string),
	}
}

// NewDemoServer creates a stub backend with user demo/demo and two profiles
func NewDemoServer() *Server {
	return NewServer(
		map[string]string{"demo": "demo"},
		[]models.Profile{
			{ID: "1", Name: "Software Engineer"},
			{ID: "2", Name: "Data Scientist"},
		},
	)
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /profiles", s.requireAuth(s.handleProfiles))
	mux.HandleFunc("POST /generate_dynamic_resume_pdf", s.requireAuth(s.handleGenerate))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Resume Tailor stub backend",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /login":                        "Exchange credentials for a bearer token",
			"GET /profiles":                      "List resume profiles",
			"POST /generate_dynamic_resume_pdf": "Generate a tailored resume PDF",
			"GET /health":                        "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleLogin issues a token for valid credentials
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	password, ok := s.users[req.Username]
	if !ok || password != req.Password {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}

	token := uuid.NewString()
	s.tokens[token] = req.Username
	s.respondJSON(w, http.StatusOK, models.LoginResponse{AccessToken: token})
}

// handleProfiles lists all profiles
func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	profiles := append([]models.Profile{}, s.profiles...)
	s.mu.RUnlock()

	s.respondJSON(w, http.StatusOK, models.ProfilesResponse{Profiles: profiles})
}

// handleGenerate renders a PDF from the submitted job
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// Parse multipart form
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32 MB max
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	job := models.JobSubmission{
		ProfileName:    r.FormValue("profile_name"),
		Company:        r.FormValue("company"),
		Role:           r.FormValue("role"),
		JobDescription: r.FormValue("job_description"),
	}

	if job.ProfileName == "" {
		s.respondError(w, http.StatusBadRequest, "profile_name is required")
		return
	}
	if !s.hasProfile(job.ProfileName) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Profile %q not found", job.ProfileName))
		return
	}
	if strings.TrimSpace(job.JobDescription) == "" {
		s.respondError(w, http.StatusBadRequest, "job_description is required")
		return
	}

	pdf, err := RenderPDF(resumeLines(job))
	if err != nil {
		slog.Error("failed to render PDF", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to render PDF.")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("failed to write PDF response", "error", err)
	}
}

func (s *Server) hasProfile(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

func resumeLines(job models.JobSubmission) []string {
	lines := []string{
		job.ProfileName,
		fmt.Sprintf("Tailored for %s at %s", job.Role, job.Company),
		"Generated " + time.Now().Format("2006-01-02"),
		"",
	}
	for _, line := range strings.Split(job.JobDescription, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// requireAuth rejects requests without a known bearer token
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if ok {
			s.mu.RLock()
			_, ok = s.tokens[token]
			s.mu.RUnlock()
		}
		if !ok {
			s.respondJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		next(w, r)
	}
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to encode JSON response", "error", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.NewRequestLogger().Info("request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
