package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"project-analyzer-web/clients"
	"project-analyzer-web/config"
	"project-analyzer-web/handlers"
	"project-analyzer-web/services"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	router     *mux.Router
	httpServer *http.Server
	logger     services.Logger

	store         services.SessionStore
	healthService *services.HealthService

	// Handlers
	uploadHandler  *handlers.UploadHandler
	resultsHandler *handlers.ResultsHandler
}

// NewServer creates a new server instance. The session repository is optional;
// when nil, sessions live only in memory.
func NewServer(cfg *config.Config, logger services.Logger, repo services.SessionRepository) *Server {
	if logger == nil {
		logger = services.NewDefaultLogger()
	}

	client := clients.NewAnalyzerClient(&cfg.Backend)
	store := services.NewInMemorySessionStore(cfg.Session.TTL, cfg.Session.CleanupInterval, repo)
	diagram := services.NewDiagramAdapter(services.NewMermaidRenderer(), logger)

	uploadController := services.NewUploadController(client, store, logger)
	resultsController := services.NewResultsController(client, store, diagram, cfg.Features, logger)

	healthService := services.NewHealthService()
	healthService.RegisterChecker(services.NewBackendChecker(client))
	healthService.RegisterChecker(services.NewSessionStoreChecker(store))

	router := mux.NewRouter()

	server := &Server{
		config:         cfg,
		router:         router,
		logger:         logger,
		store:          store,
		healthService:  healthService,
		uploadHandler:  handlers.NewUploadHandler(uploadController, store, cfg.Session.CookieName, logger),
		resultsHandler: handlers.NewResultsHandler(resultsController, store, cfg.Session.CookieName, logger),
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Upload screen
	s.router.HandleFunc("/", s.uploadHandler.ShowUploadPage).Methods("GET")
	s.router.HandleFunc("/upload/mode", s.uploadHandler.SetMode).Methods("POST")
	s.router.HandleFunc("/analyze/files", s.uploadHandler.AnalyzeFiles).Methods("POST")
	s.router.HandleFunc("/analyze/github", s.uploadHandler.AnalyzeGitHub).Methods("POST")

	// Results screen
	s.router.HandleFunc("/results/{session}", s.resultsHandler.ShowResults).Methods("GET")
	s.router.HandleFunc("/results/{session}/route", s.resultsHandler.SelectRoute).Methods("POST")
	s.router.HandleFunc("/results/{session}/query", s.resultsHandler.SubmitQuery).Methods("POST")
	s.router.HandleFunc("/results/{session}/flow", s.resultsHandler.FlowStatus).Methods("GET")

	// Static assets
	s.router.HandleFunc("/static/app.css", handlers.ServeStylesheet).Methods("GET")

	// Operational endpoints
	s.router.HandleFunc("/api/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/api/sessions/stats", s.sessionStatsHandler).Methods("GET")
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
}

// Start starts the HTTP server and blocks until an interrupt signal arrives.
func (s *Server) Start() error {
	s.logger.Info("starting server", services.String("port", s.config.Server.Port))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	s.logger.Info("shutting down server")
	return s.Shutdown()
}

// Shutdown gracefully shuts down the server and the session store.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.store.Close()
	return err
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// healthCheck handles health check requests
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	systemHealth := s.healthService.CheckHealth(r.Context())

	statusCode := http.StatusOK
	if systemHealth.Status == services.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(systemHealth); err != nil {
		s.logger.Error("failed to encode health response", err)
		fmt.Fprintf(w, `{"error":"failed to encode health response"}`)
	}
}

// sessionStatsHandler reports session store statistics.
func (s *Server) sessionStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.store.GetStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Error("failed to encode session stats", err)
		fmt.Fprintf(w, `{"error":"failed to encode session stats"}`)
	}
}
