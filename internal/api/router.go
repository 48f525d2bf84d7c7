package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"telegram-dwh/internal/logic"
	"telegram-dwh/internal/media"
	"telegram-dwh/internal/persona"
	"telegram-dwh/internal/telegram"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Router holds the HTTP multiplexer and dependencies
type Router struct {
	mux             *http.ServeMux
	chatHandler     *ChatHandler
	authHandler     *AuthHandler
	mediaHandler    *MediaHandler
	personaHandler  *PersonaHandler
	upstreamTimeout time.Duration
}

// NewRouter creates a new router with all routes configured.
// upstreamTimeout caps how long any single request may spend on upstream
// calls; zero disables the cap.
func NewRouter(svc *logic.Service, gateway *telegram.Gateway, store *media.Store, analyzer *persona.Analyzer, upstreamTimeout time.Duration) *Router {
	r := &Router{
		mux:             http.NewServeMux(),
		chatHandler:     NewChatHandler(svc),
		authHandler:     NewAuthHandler(gateway),
		mediaHandler:    NewMediaHandler(store),
		personaHandler:  NewPersonaHandler(analyzer),
		upstreamTimeout: upstreamTimeout,
	}
	r.setupRoutes()
	return r
}

// setupRoutes configures all HTTP routes
func (r *Router) setupRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", HealthHandler)

	// Chat routes
	r.mux.HandleFunc("GET /chats", r.chatHandler.List)
	r.mux.HandleFunc("GET /chats/{id}/messages", r.chatHandler.Messages)
	r.mux.HandleFunc("POST /chats/{id}/send_message", r.chatHandler.SendMessage)
	r.mux.HandleFunc("GET /chats/{id}/persona_mirror", r.personaHandler.Mirror)

	// Media routes
	r.mux.HandleFunc("GET /media/{chat_id}/{message_id}", r.mediaHandler.Media)
	r.mux.HandleFunc("GET /chat_avatar/{chat_id}", r.mediaHandler.Avatar)

	// Auth routes
	r.mux.HandleFunc("POST /auth/request_code", r.authHandler.RequestCode)
	r.mux.HandleFunc("POST /auth/submit_code", r.authHandler.SubmitCode)
	r.mux.HandleFunc("GET /auth/status", r.authHandler.Status)
	r.mux.HandleFunc("POST /auth/logout", r.authHandler.Logout)
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()

	// Add CORS headers for development
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if req.Method == "OPTIONS" {
		log.Printf("[HTTP] CORS preflight method=OPTIONS path=%s", req.URL.Path)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Skip logging for health checks and blob serving
	shouldLog := req.URL.Path != "/health" &&
		!strings.HasPrefix(req.URL.Path, "/media/") &&
		!strings.HasPrefix(req.URL.Path, "/chat_avatar/")

	if shouldLog {
		log.Printf("[HTTP] Request started method=%s path=%s", req.Method, req.URL.Path)
	}

	// Bound upstream work by the configured timeout
	if r.upstreamTimeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), r.upstreamTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	// Wrap response writer to capture status code
	wrapped := newResponseWriter(w)
	r.mux.ServeHTTP(wrapped, req)

	if shouldLog {
		log.Printf("[HTTP] Request completed method=%s path=%s status=%d duration=%v",
			req.Method, req.URL.Path, wrapped.statusCode, time.Since(start))
	}
}
