package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/leorestored/leo-restored/internal/infra/logging"
	"github.com/leorestored/leo-restored/internal/usecase"
)

type Server struct {
	chatUC usecase.ChatUseCase
	auth   *AuthManager
	log    *zerolog.Logger
}

func NewServer(chatUC usecase.ChatUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "Web").Logger()
	return &Server{chatUC: chatUC, auth: auth, log: &l}
}

// Router wires all routes. Only the clear endpoint is destructive and sits
// behind admin auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/conversations", s.handleConversations)
		r.Post("/admin/login", s.handleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/conversations/clear", s.handleClear)
		})
	})

	return r
}

// traceMiddleware stamps every request with a trace id and logs it on the
// way out.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-Id", traceID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.log.Debug().
			Str("trace_id", traceID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
