package routes

import (
	"net/http"

	"github.com/mBrond/chat-medicamentos/internal/api/handlers"
	"github.com/mBrond/chat-medicamentos/internal/api/middleware"
	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	chatHandler       *handlers.ChatHandler
	suggestionHandler *handlers.SuggestionHandler
	healthHandler     *handlers.HealthHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	allowedOrigins  []string
}

// NewRouter creates a new router. cacheMiddleware and metrics may be nil.
func NewRouter(
	chatHandler *handlers.ChatHandler,
	suggestionHandler *handlers.SuggestionHandler,
	healthHandler *handlers.HealthHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		chatHandler:       chatHandler,
		suggestionHandler: suggestionHandler,
		healthHandler:     healthHandler,
		cacheMiddleware:   cacheMiddleware,
		metrics:           metrics,
		allowedOrigins:    allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /health/ready", r.healthHandler.Ready)

	r.mux.HandleFunc("POST /chat", r.chatHandler.Chat)
	r.mux.HandleFunc("GET /api/medications/suggest", r.suggestionHandler.SuggestMedications)

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits next to the mux so it sees the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ResponseOptimization(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
