package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

type Server struct {
	db           *sql.DB
	userH        *handler.UserHandler
	projectH     *handler.ProjectHandler
	taskH        *handler.TaskHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	jwtSecret    []byte
	logger       *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	projectStore := store.NewProjectStore(db)
	taskStore := store.NewTaskStore(db)

	secret := []byte(cfg.JWTSecret)

	return &Server{
		db: db,
		userH: handler.NewUserHandler(
			userStore, sessionStore, secret, cfg.JWTLifetime,
			cfg.PasswordMinLength, cfg.BcryptCost, cfg.DevMode,
			logger.With("component", "user"),
		),
		projectH:     handler.NewProjectHandler(projectStore, cfg.DevMode, logger.With("component", "project")),
		taskH:        handler.NewTaskHandler(taskStore, cfg.DevMode, logger.With("component", "task")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(10, time.Minute),
		jwtSecret:    secret,
		logger:       logger,
	}
}

// SessionStore returns the session store for the background purge loop.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for the background purge loop.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes — credential endpoints are rate limited per client IP
	limited := middleware.RateLimit(s.rateLimiter)
	outerMux.Handle("POST /user/register", limited(http.HandlerFunc(s.userH.Register)))
	outerMux.Handle("POST /user/auth", limited(http.HandlerFunc(s.userH.Auth)))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — token gate first, role gate per route
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	tokenGate := middleware.RequireAuth(s.jwtSecret, s.sessionStore)
	outerMux.Handle("/", tokenGate(protectedMux))

	chain := middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
	return middleware.Timeout(15 * time.Second)(chain)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	editors := middleware.RequireRole(model.RoleAdministrator, model.RoleEditor)
	admins := middleware.RequireRole(model.RoleAdministrator)

	mux.HandleFunc("POST /user/logout", s.userH.Logout)

	// Status enumerations
	mux.HandleFunc("GET /project/status", s.projectH.Statuses)
	mux.HandleFunc("GET /task/status", s.taskH.Statuses)

	// Project routes
	mux.HandleFunc("GET /project", s.projectH.List)
	mux.HandleFunc("GET /project/{id}", s.projectH.Get)
	mux.Handle("POST /project", editors(http.HandlerFunc(s.projectH.Create)))
	mux.Handle("PUT /project/{id}", editors(http.HandlerFunc(s.projectH.Update)))
	mux.Handle("DELETE /project/{id}", admins(http.HandlerFunc(s.projectH.Delete)))

	// Task routes
	mux.HandleFunc("GET /task", s.taskH.List)
	mux.HandleFunc("GET /task/{id}", s.taskH.Get)
	mux.Handle("POST /task", editors(http.HandlerFunc(s.taskH.Create)))
	mux.Handle("PUT /task/{id}", editors(http.HandlerFunc(s.taskH.Update)))
	mux.Handle("PUT /task/{id}/user", editors(http.HandlerFunc(s.taskH.AssignExecutor)))
	mux.Handle("DELETE /task/{id}", admins(http.HandlerFunc(s.taskH.Delete)))
}
