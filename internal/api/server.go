// Package api is the voice-call HTTP server: it fronts the Convex
// deployment and LiveKit for the payment reminder workflow.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/phantompay/invoice-cli/pkg/convex"
	"github.com/phantompay/invoice-cli/pkg/livekit"
)

// Server is the voice-call HTTP API server. A nil livekit client means
// credentials were not configured; call endpoints then report that
// instead of failing at startup.
type Server struct {
	router  chi.Router
	convex  convex.Client
	livekit livekit.Client
	lkURL   string
}

// NewServer creates and configures the HTTP server.
func NewServer(cvx convex.Client, lk livekit.Client, livekitURL string) *Server {
	s := &Server{
		convex:  cvx,
		livekit: lk,
		lkURL:   livekitURL,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/initiate-call", s.handleInitiateCall)
	r.Get("/api/call-status", s.handleCallStatus)
	r.Get("/api/customers-to-call", s.handleCustomersToCall)

	s.router = r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
