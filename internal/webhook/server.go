// ABOUTME: HTTP surface for messaging webhooks and a small JSON API.
// ABOUTME: chi router with request IDs, CORS, recovery, and structured request logging.
package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/logging"
)

// DefaultRequestTimeout bounds one request, including any generated reply.
const DefaultRequestTimeout = 60 * time.Second

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// CORSOrigins lists allowed browser origins; empty allows any.
	CORSOrigins    []string
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// Server serves the webhook and API routes.
type Server struct {
	svc     *coach.Service
	logger  *log.Logger
	timeout time.Duration
	origins []string
}

// NewServer creates a server over the coaching service.
func NewServer(svc *coach.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	return &Server{
		svc:     svc,
		logger:  opts.Logger,
		timeout: opts.RequestTimeout,
		origins: opts.CORSOrigins,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}).Handler)

	r.Post("/webhook", s.handleWebhook)

	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Get("/entries", s.handleListEntries)
		r.Post("/entries", s.handleLogDay)
		r.Get("/entries/{date}", s.handleGetEntry)
		r.Delete("/entries/{date}", s.handleDeleteEntry)
		r.Get("/weekly", s.handleWeekly)
		r.Get("/profile", s.handleGetProfile)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
