// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes study generation, quiz tracking, flashcard review,
// and settings as a JSON HTTP API for a browser front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/settings"
	"github.com/pdiddy/studycraft/internal/study"
	"github.com/pdiddy/studycraft/pkg/types"
)

// Generator produces study material. *study.Service implements it.
type Generator interface {
	Generate(ctx context.Context, req study.Request) (types.StudyContent, error)
	DeepStudy(ctx context.Context, topic string, level types.StudyLevel, creds types.Credentials) (types.DeepStudyLevel, error)
	Tutor(ctx context.Context, topic, question, lesson string, creds types.Credentials) (types.TutorAnswer, error)
	ProjectIdeas(ctx context.Context, topic string, creds types.Credentials) (types.ProjectIdeas, error)
}

// Progress tracks quiz and flashcard history. *adaptive.Tracker implements it.
type Progress interface {
	Ingest(ctx context.Context, topic string, results []types.QuizResult) (types.PerformanceRecord, error)
	Record(ctx context.Context, topic string) (types.PerformanceRecord, bool, error)
	All(ctx context.Context) (map[string]types.PerformanceRecord, error)
	Reset(ctx context.Context, topic string) error
	ReviewCard(ctx context.Context, id string, remembered bool) (types.FlashcardProgress, error)
}

// Options wires the server's collaborators.
type Options struct {
	Study    Generator
	Progress Progress
	Settings settings.KV

	// Credentials from flags, environment, or secret files. They take
	// precedence over keys saved in settings.
	Credentials types.Credentials

	AllowedOrigins []string
	Logger         *zap.Logger
}

// Server serves the studycraft API.
type Server struct {
	opts Options
	log  *zap.Logger
}

// New returns a server for opts.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{opts: opts, log: log}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.generate)
		r.Post("/deep-study", s.deepStudy)
		r.Post("/tutor", s.tutor)
		r.Post("/projects", s.projects)

		r.Post("/quiz/{topic}/results", s.quizResults)
		r.Get("/performance", s.allPerformance)
		r.Get("/performance/{topic}", s.performance)
		r.Delete("/performance/{topic}", s.resetPerformance)

		r.Post("/flashcards/{id}/review", s.reviewCard)

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("server: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("server: listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// userSettings returns the stored settings and the credentials to use for
// one request: the request's own keys, then the server's, then the saved ones.
// A corrupt settings record is replaced by the defaults.
func (s *Server) userSettings(ctx context.Context, override types.Credentials) (types.Settings, types.Credentials, error) {
	st := settings.Defaults()
	if s.opts.Settings != nil {
		var err error
		st, err = settings.Load(ctx, s.opts.Settings)
		switch {
		case errors.Is(err, settings.ErrCorrupt):
			s.log.Warn("server: settings unreadable, using defaults", zap.Error(err))
			st = settings.Defaults()
		case err != nil:
			return st, types.Credentials{}, err
		}
	}
	return st, override.Merge(s.opts.Credentials).Merge(st.Credentials), nil
}
