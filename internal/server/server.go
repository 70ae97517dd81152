package server

import (
	"context"
	"fmt"
	"net/http"

	"FCCMonitorAPI/internal/config"
	"FCCMonitorAPI/internal/handler"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/metrics"
	"FCCMonitorAPI/internal/middleware"

	"github.com/gorilla/mux"
)

// RouteRegistrar is implemented by every handler in internal/handler.
type RouteRegistrar interface {
	RegisterRoutes(r *mux.Router)
}

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	cfg        *config.Config
	log        *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger) *Server {
	router := mux.NewRouter()

	server := &Server{
		router: router,
		cfg:    cfg,
		log:    log,
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	return server
}

// RegisterHandlers mounts api handlers under /api/v1 behind the middleware
// chain and JWT auth. Health and metrics stay on the root router without auth.
func (s *Server) RegisterHandlers(healthHandler *handler.HealthHandler, apiHandlers ...RouteRegistrar) {
	cors := middleware.CORS(s.cfg.Security.CORSAllowedOrigins, s.cfg.Security.CORSAllowedMethods)

	// CORS preflights are answered before auth and method matching.
	s.router.PathPrefix("/api/v1").Methods(http.MethodOptions).Handler(cors(http.HandlerFunc(noContent)))

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.Use(middleware.RequestLogger(s.log))
	api.Use(cors)
	api.Use(middleware.Recovery(s.log))

	if s.cfg.Security.EnableRateLimit {
		api.Use(middleware.RateLimit(s.cfg.Security.RateLimitPerMinute))
	}

	authn := middleware.NewAuthenticator(s.cfg.Security.JWTSecret, s.cfg.Security.AuthEnabled, s.log.Named("auth"))
	api.Use(authn.Authenticate)

	for _, h := range apiHandlers {
		h.RegisterRoutes(api)
	}
	healthHandler.RegisterRoutes(s.router)

	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, metrics.Handler()).Methods("GET")
	}

	if !s.cfg.Security.AuthEnabled {
		s.log.Warn("API authentication is disabled; all callers act as engineer")
	}
	s.log.Info("All handlers registered")
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}
