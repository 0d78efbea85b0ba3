// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package study is the top-level generation service. It tries the AI
// provider chain, falls back to the encyclopedia sources and then to a
// generic template, derives flashcards, and attaches media. A generation
// request for a non-blank topic always yields valid content.
package study

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/adaptive"
	"github.com/pdiddy/studycraft/internal/extract"
	"github.com/pdiddy/studycraft/internal/media"
	"github.com/pdiddy/studycraft/internal/orchestrator"
	"github.com/pdiddy/studycraft/internal/prompt"
	"github.com/pdiddy/studycraft/internal/provider"
	"github.com/pdiddy/studycraft/internal/synth"
	"github.com/pdiddy/studycraft/pkg/types"
)

// ErrEmptyTopic is returned for a blank topic.
var ErrEmptyTopic = eris.New("study: empty topic")

// ErrInvalidChain marks a provider chain that could not be built from the
// configuration. Generate and ProjectIdeas treat it like an exhausted chain.
var ErrInvalidChain = errors.New("study: invalid provider chain")

// Aggregator is the offline encyclopedia path.
type Aggregator interface {
	Aggregate(ctx context.Context, query string) *types.OrganizedContent
}

// Enricher fetches media for a topic.
type Enricher interface {
	Enrich(ctx context.Context, topic, key string) (types.MediaSet, error)
}

// History supplies past performance for the difficulty hint.
type History interface {
	Record(ctx context.Context, topic string) (types.PerformanceRecord, bool, error)
}

// GenerationFailedError reports a request that produced no result.
type GenerationFailedError struct {
	Shape types.Shape
	Topic string
	Err   error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("study: %s for %q failed: %v", e.Shape, e.Topic, e.Err)
}

func (e *GenerationFailedError) Unwrap() error { return e.Err }

// Options wires the service's collaborators. Every field is optional: a
// nil Aggregator goes straight to the generic template, a nil Media skips
// enrichment, and a nil History uses the request's default difficulty.
type Options struct {
	Aggregator Aggregator
	Media      Enricher
	History    History

	// Chain configures provider construction. A nil Limiters is replaced
	// by limiters built from the generation config.
	Chain orchestrator.ChainOptions

	Logger *zap.Logger

	// Rand shuffles offline quiz options. Nil seeds from the clock.
	Rand *rand.Rand
}

// Service generates study material.
type Service struct {
	cfg  types.GenerateConfig
	opts Options
	log  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a service for cfg.
func New(cfg types.GenerateConfig, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Chain.Logger == nil {
		opts.Chain.Logger = opts.Logger
	}
	if opts.Chain.Limiters == nil {
		opts.Chain.Limiters = provider.NewLimiters(cfg.RequestsPerMinute)
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{cfg: cfg, opts: opts, log: opts.Logger, rng: rng}
}

// Request is one study-content generation request.
type Request struct {
	Topic       string
	Mode        types.Mode
	Credentials types.Credentials

	// FetchMedia attaches images and videos when a Pexels key is present.
	FetchMedia bool

	// Difficulty overrides the level derived from past performance.
	Difficulty types.Difficulty

	// DefaultDifficulty applies when the topic has no history.
	DefaultDifficulty types.Difficulty
}

// Generate produces study content for req.Topic. In AI mode the provider
// chain runs first; if every provider fails the encyclopedia path runs,
// and if that finds nothing the generic template is used. Only a blank
// topic or a cancelled ctx returns an error.
func (s *Service) Generate(ctx context.Context, req Request) (types.StudyContent, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return types.StudyContent{}, &GenerationFailedError{Shape: types.ShapeStudyContent, Err: ErrEmptyTopic}
	}
	log := s.log.With(zap.String("topic", topic))

	var content types.StudyContent
	generated := false
	if req.Mode != types.ModeOffline {
		c, err := s.generateAI(ctx, topic, req)
		var failed *orchestrator.AllProvidersFailedError
		switch {
		case err == nil:
			content, generated = c, true
		case ctx.Err() != nil:
			return types.StudyContent{}, &GenerationFailedError{Shape: types.ShapeStudyContent, Topic: topic, Err: err}
		case errors.As(err, &failed):
			log.Warn("study: AI strategy exhausted, falling back", zap.Int("attempts", len(failed.Attempts)))
		case errors.Is(err, ErrInvalidChain):
			log.Warn("study: provider chain unusable, falling back", zap.Error(err))
		default:
			return types.StudyContent{}, &GenerationFailedError{Shape: types.ShapeStudyContent, Topic: topic, Err: err}
		}
	}
	if !generated {
		content = s.offline(ctx, topic, log)
	}

	if content.Topic == "" {
		content.Topic = topic
	}
	content.Flashcards = synth.DeriveFlashcards(content.Topic, content)
	content.Tutorials = media.YouTubeLinks(content.Topic)

	if req.FetchMedia && s.opts.Media != nil && strings.TrimSpace(req.Credentials.Pexels) != "" {
		set, err := s.opts.Media.Enrich(ctx, content.Topic, req.Credentials.Pexels)
		if err != nil {
			log.Warn("study: media enrichment failed", zap.Error(err))
			content.Images, content.Videos = []types.Media{}, []types.Media{}
		} else {
			content.Images, content.Videos = set.Images, set.Videos
		}
	}
	return content, nil
}

func (s *Service) generateAI(ctx context.Context, topic string, req Request) (types.StudyContent, error) {
	difficulty, weak := s.hint(ctx, topic, req)
	text, err := prompt.StudyContent(topic, difficulty, weak)
	if err != nil {
		return types.StudyContent{}, err
	}
	chain, err := s.chain(req.Credentials)
	if err != nil {
		return types.StudyContent{}, err
	}
	res, err := orchestrator.Generate(ctx, chain,
		orchestrator.Request{Shape: types.ShapeStudyContent, Prompt: orchestrator.Prompt(s.cfg, text)},
		synth.NormalizeStudyContent)
	if err != nil {
		return types.StudyContent{}, err
	}
	c := res.Value
	c.Topic = topic
	c.Source = res.Provider
	return c, nil
}

func (s *Service) offline(ctx context.Context, topic string, log *zap.Logger) types.StudyContent {
	var org *types.OrganizedContent
	if s.opts.Aggregator != nil {
		org = s.opts.Aggregator.Aggregate(ctx, topic)
	}
	if org == nil {
		log.Info("study: generic fallback used")
		return synth.GenericContent(topic)
	}
	log.Debug("study: using encyclopedia content", zap.Int("sources", org.SourcesUsed()))
	s.mu.Lock()
	defer s.mu.Unlock()
	return synth.FromArticles(org, s.rng)
}

// hint picks the prompt difficulty and weak areas: an explicit override,
// else the level recommended from history, else the default.
func (s *Service) hint(ctx context.Context, topic string, req Request) (types.Difficulty, []string) {
	var weak []string
	var recommended types.Difficulty
	if s.opts.History != nil {
		rec, ok, err := s.opts.History.Record(ctx, topic)
		if err != nil {
			s.log.Debug("study: history unavailable", zap.Error(err))
		}
		if ok && rec.Attempts > 0 {
			recommended = adaptive.Recommend(adaptive.MasteryOf(rec))
			weak = rec.WeakAreas
		}
	}
	switch {
	case req.Difficulty.Valid():
		return req.Difficulty, weak
	case recommended != "":
		return recommended, weak
	case req.DefaultDifficulty.Valid():
		return req.DefaultDifficulty, weak
	}
	return types.Intermediate, weak
}

func (s *Service) chain(creds types.Credentials) (orchestrator.Chain, error) {
	chain, err := orchestrator.BuildChain(s.cfg, creds, s.opts.Chain)
	if err != nil {
		return chain, errors.Join(ErrInvalidChain, err)
	}
	return chain, nil
}

// DeepStudy generates the lesson for one level of topic. There is no
// offline fallback for lessons.
func (s *Service) DeepStudy(ctx context.Context, topic string, level types.StudyLevel, creds types.Credentials) (types.DeepStudyLevel, error) {
	topic = strings.TrimSpace(topic)
	fail := func(err error) (types.DeepStudyLevel, error) {
		return types.DeepStudyLevel{}, &GenerationFailedError{Shape: types.ShapeDeepStudy, Topic: topic, Err: err}
	}
	if topic == "" {
		return fail(ErrEmptyTopic)
	}
	text, subject, err := prompt.DeepStudy(topic, level)
	if err != nil {
		return fail(err)
	}
	chain, err := s.chain(creds)
	if err != nil {
		return fail(err)
	}
	res, err := orchestrator.Generate(ctx, chain,
		orchestrator.Request{Shape: types.ShapeDeepStudy, Prompt: orchestrator.Prompt(s.cfg, text)},
		synth.NormalizeDeepStudy)
	if err != nil {
		return fail(err)
	}
	lesson := res.Value
	lesson.Topic, lesson.Subject, lesson.Level = topic, subject, level
	return lesson, nil
}

// Tutor answers a follow-up question about topic, grounded in the current
// lesson text when one is given. A reply that is not a
// JSON answer object is used verbatim as the answer.
func (s *Service) Tutor(ctx context.Context, topic, question, lesson string, creds types.Credentials) (types.TutorAnswer, error) {
	topic, question = strings.TrimSpace(topic), strings.TrimSpace(question)
	fail := func(err error) (types.TutorAnswer, error) {
		return types.TutorAnswer{}, &GenerationFailedError{Shape: types.ShapeTutorAnswer, Topic: topic, Err: err}
	}
	if topic == "" {
		return fail(ErrEmptyTopic)
	}
	if question == "" {
		return fail(eris.New("study: empty question"))
	}
	text, err := prompt.Tutor(topic, question, lesson)
	if err != nil {
		return fail(err)
	}
	chain, err := s.chain(creds)
	if err != nil {
		return fail(err)
	}
	res, err := orchestrator.GenerateText(ctx, chain,
		orchestrator.Request{Shape: types.ShapeTutorAnswer, Prompt: orchestrator.Prompt(s.cfg, text)},
		ParseTutorReply)
	if err != nil {
		return fail(err)
	}
	return res.Value, nil
}

// ParseTutorReply decodes a tutor reply, falling back to the trimmed text
// as the answer when it holds no valid answer object.
func ParseTutorReply(text string) (types.TutorAnswer, error) {
	if raw, err := extract.ExtractJSON(text); err == nil {
		if ans, err := synth.NormalizeTutorAnswer(raw); err == nil {
			return ans, nil
		}
	}
	answer := strings.TrimSpace(text)
	if answer == "" {
		return types.TutorAnswer{}, eris.New("study: empty tutor reply")
	}
	return types.TutorAnswer{Answer: answer, FollowUpSuggestions: []string{}}, nil
}

// ProjectIdeas suggests projects for topic, falling back to templated
// ideas when every provider fails.
func (s *Service) ProjectIdeas(ctx context.Context, topic string, creds types.Credentials) (types.ProjectIdeas, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return types.ProjectIdeas{}, &GenerationFailedError{Shape: types.ShapeProjectIdeas, Err: ErrEmptyTopic}
	}
	text, err := prompt.ProjectIdeas(topic)
	if err != nil {
		return types.ProjectIdeas{}, &GenerationFailedError{Shape: types.ShapeProjectIdeas, Topic: topic, Err: err}
	}
	chain, err := s.chain(creds)
	if err != nil {
		s.log.Warn("study: provider chain unusable, using generic ideas", zap.String("topic", topic), zap.Error(err))
		return synth.GenericProjectIdeas(topic), nil
	}
	res, err := orchestrator.Generate(ctx, chain,
		orchestrator.Request{Shape: types.ShapeProjectIdeas, Prompt: orchestrator.Prompt(s.cfg, text)},
		synth.NormalizeProjectIdeas)
	if err != nil {
		if ctx.Err() != nil {
			return types.ProjectIdeas{}, &GenerationFailedError{Shape: types.ShapeProjectIdeas, Topic: topic, Err: err}
		}
		s.log.Info("study: generic fallback used", zap.String("topic", topic), zap.String("shape", string(types.ShapeProjectIdeas)))
		return synth.GenericProjectIdeas(topic), nil
	}
	ideas := res.Value
	ideas.Topic = topic
	return ideas, nil
}
