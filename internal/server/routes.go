package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/server/handlers"
	"github.com/lughati/lughati/internal/webui"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Frontend
	s.router.Get("/", webui.IndexHandler)
	s.router.Get("/styles.css", webui.StylesHandler)
	s.router.Get("/script.js", webui.ScriptHandler)

	// API endpoints
	if s.deps.Gate != nil && s.deps.Generator != nil {
		generate := handlers.NewGenerateHandler(s.deps.Gate, s.deps.Generator, s.deps.Usage, s.deps.TrustForwardedFor)
		s.router.Post("/api/generate", generate.ServeHTTP)
	}
	if s.deps.Modes != nil {
		s.router.Get("/api/modes", handlers.NewModesHandler(s.deps.Modes).ServeHTTP)
	}

	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	// Admin signal endpoint (optional, requires LUGHATI_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	adminToken := os.Getenv("LUGHATI_ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no LUGHATI_ADMIN_TOKEN set)")
		}
		return
	}

	// Create HTTP signal handler with bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	// Register admin endpoint
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
