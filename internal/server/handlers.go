// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/adaptive"
	"github.com/pdiddy/studycraft/internal/settings"
	"github.com/pdiddy/studycraft/internal/study"
	"github.com/pdiddy/studycraft/pkg/types"
)

// maxBody caps request bodies; tutor requests carry lesson text.
const maxBody = 1 << 20

func jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, map[string]string{"error": message}, status)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v); err != nil {
		errorResponse(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// pathParam returns the unescaped route parameter name.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return strings.TrimSpace(raw)
}

// generationError maps a generation failure to a status code.
func (s *Server) generationError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, study.ErrEmptyTopic):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	s.log.Warn("server: generation failed", zap.Int("status", status), zap.Error(err))
	errorResponse(w, err.Error(), status)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("server: internal error", zap.Error(err))
	errorResponse(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}

type generateRequest struct {
	Topic       string            `json:"topic"`
	Mode        types.Mode        `json:"mode"`
	Difficulty  types.Difficulty  `json:"difficulty"`
	FetchMedia  *bool             `json:"fetch_media"`
	Credentials types.Credentials `json:"credentials"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		errorResponse(w, "topic is required", http.StatusBadRequest)
		return
	}
	if req.Mode != "" && req.Mode != types.ModeAI && req.Mode != types.ModeOffline {
		errorResponse(w, "mode must be ai or offline", http.StatusBadRequest)
		return
	}
	if req.Difficulty != "" && !req.Difficulty.Valid() {
		errorResponse(w, "unknown difficulty", http.StatusBadRequest)
		return
	}

	st, creds, err := s.userSettings(r.Context(), req.Credentials)
	if err != nil {
		s.internalError(w, err)
		return
	}
	sreq := study.Request{
		Topic:             req.Topic,
		Mode:              st.Mode,
		Credentials:       creds,
		FetchMedia:        st.AutoFetchMedia,
		Difficulty:        req.Difficulty,
		DefaultDifficulty: st.DefaultDifficulty,
	}
	if req.Mode != "" {
		sreq.Mode = req.Mode
	}
	if req.FetchMedia != nil {
		sreq.FetchMedia = *req.FetchMedia
	}

	content, err := s.opts.Study.Generate(r.Context(), sreq)
	if err != nil {
		s.generationError(w, err)
		return
	}
	jsonResponse(w, content, http.StatusOK)
}

type deepStudyRequest struct {
	Topic       string            `json:"topic"`
	Level       types.StudyLevel  `json:"level"`
	Credentials types.Credentials `json:"credentials"`
}

func (s *Server) deepStudy(w http.ResponseWriter, r *http.Request) {
	var req deepStudyRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		errorResponse(w, "topic is required", http.StatusBadRequest)
		return
	}
	if req.Level == "" {
		req.Level = types.LevelFoundation
	}
	if !slices.Contains(types.StudyLevels, req.Level) {
		errorResponse(w, "unknown level", http.StatusBadRequest)
		return
	}
	_, creds, err := s.userSettings(r.Context(), req.Credentials)
	if err != nil {
		s.internalError(w, err)
		return
	}
	lesson, err := s.opts.Study.DeepStudy(r.Context(), req.Topic, req.Level, creds)
	if err != nil {
		s.generationError(w, err)
		return
	}
	jsonResponse(w, lesson, http.StatusOK)
}

type tutorRequest struct {
	Topic       string            `json:"topic"`
	Question    string            `json:"question"`
	Context     string            `json:"context"`
	Credentials types.Credentials `json:"credentials"`
}

func (s *Server) tutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Question) == "" {
		errorResponse(w, "topic and question are required", http.StatusBadRequest)
		return
	}
	_, creds, err := s.userSettings(r.Context(), req.Credentials)
	if err != nil {
		s.internalError(w, err)
		return
	}
	ans, err := s.opts.Study.Tutor(r.Context(), req.Topic, req.Question, req.Context, creds)
	if err != nil {
		s.generationError(w, err)
		return
	}
	jsonResponse(w, ans, http.StatusOK)
}

type projectsRequest struct {
	Topic       string            `json:"topic"`
	Credentials types.Credentials `json:"credentials"`
}

func (s *Server) projects(w http.ResponseWriter, r *http.Request) {
	var req projectsRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		errorResponse(w, "topic is required", http.StatusBadRequest)
		return
	}
	_, creds, err := s.userSettings(r.Context(), req.Credentials)
	if err != nil {
		s.internalError(w, err)
		return
	}
	ideas, err := s.opts.Study.ProjectIdeas(r.Context(), req.Topic, creds)
	if err != nil {
		s.generationError(w, err)
		return
	}
	jsonResponse(w, ideas, http.StatusOK)
}

// TopicProgress is a performance record with the values derived from it.
type TopicProgress struct {
	Topic       string                  `json:"topic"`
	Record      types.PerformanceRecord `json:"record"`
	Mastery     int                     `json:"mastery"`
	Recommended types.Difficulty        `json:"recommended_difficulty"`
	FollowUp    types.FollowUp          `json:"follow_up"`
}

func progressOf(topic string, rec types.PerformanceRecord) TopicProgress {
	m := adaptive.MasteryOf(rec)
	return TopicProgress{
		Topic:       topic,
		Record:      rec,
		Mastery:     m,
		Recommended: adaptive.Recommend(m),
		FollowUp:    adaptive.BuildFollowUp(rec),
	}
}

type quizRequest struct {
	Results []types.QuizResult `json:"results"`
}

func (s *Server) quizResults(w http.ResponseWriter, r *http.Request) {
	topic := pathParam(r, "topic")
	var req quizRequest
	if !decode(w, r, &req) {
		return
	}
	if topic == "" || len(req.Results) == 0 {
		errorResponse(w, "topic and results are required", http.StatusBadRequest)
		return
	}
	rec, err := s.opts.Progress.Ingest(r.Context(), topic, req.Results)
	if err != nil {
		s.internalError(w, err)
		return
	}
	jsonResponse(w, progressOf(topic, rec), http.StatusOK)
}

func (s *Server) allPerformance(w http.ResponseWriter, r *http.Request) {
	all, err := s.opts.Progress.All(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if all == nil {
		all = map[string]types.PerformanceRecord{}
	}
	jsonResponse(w, all, http.StatusOK)
}

func (s *Server) performance(w http.ResponseWriter, r *http.Request) {
	topic := pathParam(r, "topic")
	rec, ok, err := s.opts.Progress.Record(r.Context(), topic)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if !ok {
		errorResponse(w, "no performance record for topic", http.StatusNotFound)
		return
	}
	jsonResponse(w, progressOf(topic, rec), http.StatusOK)
}

func (s *Server) resetPerformance(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Progress.Reset(r.Context(), pathParam(r, "topic")); err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reviewRequest struct {
	Remembered *bool `json:"remembered"`
}

type reviewResponse struct {
	ID       string                  `json:"id"`
	Progress types.FlashcardProgress `json:"progress"`
	Mastery  int                     `json:"mastery"`
}

func (s *Server) reviewCard(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	var req reviewRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Remembered == nil {
		errorResponse(w, "remembered is required", http.StatusBadRequest)
		return
	}
	p, err := s.opts.Progress.ReviewCard(r.Context(), id, *req.Remembered)
	if errors.Is(err, adaptive.ErrUnknownCard) {
		errorResponse(w, "unknown flashcard", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	jsonResponse(w, reviewResponse{ID: id, Progress: p, Mastery: p.Mastery()}, http.StatusOK)
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	st, _, err := s.userSettings(r.Context(), types.Credentials{})
	if err != nil {
		s.internalError(w, err)
		return
	}
	jsonResponse(w, settings.Redacted(st), http.StatusOK)
}

// putSettings decodes the body over the stored record, so omitted fields
// keep their values. A credential sent back in its redacted form is kept.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	if s.opts.Settings == nil {
		errorResponse(w, "settings are read-only", http.StatusNotImplemented)
		return
	}
	current, _, err := s.userSettings(r.Context(), types.Credentials{})
	if err != nil {
		s.internalError(w, err)
		return
	}
	next := current
	if !decode(w, r, &next) {
		return
	}
	next.Credentials = keepRedacted(next.Credentials, current.Credentials)
	if err := settings.Validate(next); err != nil {
		errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := settings.Save(r.Context(), s.opts.Settings, next); err != nil {
		s.internalError(w, err)
		return
	}
	jsonResponse(w, settings.Redacted(next), http.StatusOK)
}

func keepRedacted(next, current types.Credentials) types.Credentials {
	masked := settings.Redacted(types.Settings{Credentials: current}).Credentials
	keep := func(n, c, m string) string {
		if n != "" && n == m {
			return c
		}
		return n
	}
	return types.Credentials{
		OpenRouter: keep(next.OpenRouter, current.OpenRouter, masked.OpenRouter),
		Gemini:     keep(next.Gemini, current.Gemini, masked.Gemini),
		RapidAPI:   keep(next.RapidAPI, current.RapidAPI, masked.RapidAPI),
		Anthropic:  keep(next.Anthropic, current.Anthropic, masked.Anthropic),
		Pexels:     keep(next.Pexels, current.Pexels, masked.Pexels),
	}
}
