// Package server exposes the scheduling API consumed by the web client and
// the voice assistant.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/auth"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/config"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/intent"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/storage"
)

type Deps struct {
	Config config.Config
	Log    *slog.Logger
	Store  *storage.Store
	Tokens *auth.TokenManager
	Parser *intent.Parser
	Synth  ports.SpeechSynthesizer
}

type Server struct {
	cfg    config.Config
	log    *slog.Logger
	store  *storage.Store
	tokens *auth.TokenManager
	parser *intent.Parser
	synth  ports.SpeechSynthesizer
}

func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:    deps.Config,
		log:    log,
		store:  deps.Store,
		tokens: deps.Tokens,
		parser: deps.Parser,
		synth:  deps.Synth,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := auth.Middleware(s.tokens)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)

		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", s.handleRegister)
			ar.Post("/login", s.handleLogin)
			ar.With(requireAuth).Get("/me", s.handleCurrentUser)
			ar.With(requireAuth).Patch("/me", s.handleUpdateUser)
		})

		api.Route("/meetings", func(mr chi.Router) {
			mr.Use(requireAuth)
			mr.Get("/", s.handleListMeetings)
			mr.Post("/", s.handleCreateMeeting)
			mr.Put("/{meetingID}", s.handleUpdateMeeting)
			mr.Delete("/{meetingID}", s.handleDeleteMeeting)
		})

		api.Route("/voice", func(vr chi.Router) {
			vr.Use(requireAuth)
			vr.Post("/process", s.handleProcessVoice)
			vr.Get("/greeting", s.handleGreeting)
		})

		api.Route("/calendar", func(cr chi.Router) {
			cr.Use(requireAuth)
			cr.Get("/events", s.handleCalendarEvents)
			cr.Post("/sync", s.handleCalendarSync)
		})
	})

	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// within the configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-serveErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
