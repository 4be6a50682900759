package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Vivid/internal/api/middlewares"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Sessions       *handlers.SessionHandler
	Profiles       *handlers.ProfileHandler
	Preferences    *handlers.PreferencesHandler
	Tokens         *appMiddleware.SessionTokens
	AllowedOrigins []string
	Timeout        time.Duration
}

// NewRouter builds and wires all routes.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if d.Timeout > 0 {
		r.Use(middleware.Timeout(d.Timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appMiddleware.HeaderName},
		ExposedHeaders:   []string{appMiddleware.HeaderName},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/focus/suggestions", d.Sessions.FocusSuggestions)

		api.Route("/profiles", func(p chi.Router) {
			p.Get("/", d.Profiles.List)
			p.Post("/", d.Profiles.Create)
			p.Put("/{id}", d.Profiles.Update)
			p.Delete("/{id}", d.Profiles.Delete)
		})

		api.Get("/preferences/theme", d.Preferences.GetTheme)
		api.Put("/preferences/theme", d.Preferences.SetTheme)

		// per interaction context
		api.Group(func(sc chi.Router) {
			sc.Use(d.Tokens.Middleware)
			sc.Get("/session", d.Sessions.Get)
			sc.Post("/session/video", d.Sessions.UploadVideo)
			sc.Post("/session/generate", d.Sessions.Generate)
			sc.Post("/session/refine", d.Sessions.Refine)
			sc.Post("/session/reset", d.Sessions.Reset)
			sc.Put("/session/detail", d.Sessions.SetDetail)
			sc.Post("/session/focus", d.Sessions.AddFocus)
			sc.Delete("/session/focus/{label}", d.Sessions.RemoveFocus)
			sc.Put("/session/profiles/{id}", d.Sessions.SelectProfile)
		})
	})

	return r
}

// Server wraps the HTTP server instance.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
