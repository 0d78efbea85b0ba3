// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synth builds canonical study records. It validates provider JSON
// against the expected shape, synthesizes content from encyclopedia articles,
// supplies the generic placeholder, and derives flashcards.
package synth

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pdiddy/studycraft/pkg/types"
)

// NormalizationError reports a parsed payload that lacks the structure
// required for its shape.
type NormalizationError struct {
	Shape  types.Shape
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("synth: normalize %s: %s", e.Shape, e.Reason)
}

func normErr(shape types.Shape, format string, args ...any) error {
	return &NormalizationError{Shape: shape, Reason: fmt.Sprintf(format, args...)}
}

// requireKeys decodes raw as an object and checks that every key is present.
func requireKeys(shape types.Shape, raw json.RawMessage, keys ...string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return normErr(shape, "payload is not an object: %v", err)
	}
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return normErr(shape, "missing required field %q", k)
		}
	}
	return nil
}

type studyPayload struct {
	Notes  []string `json:"notes"`
	Slides []struct {
		Title        string   `json:"title"`
		BulletPoints []string `json:"bulletPoints"`
	} `json:"slides"`
	Quiz []struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex *float64 `json:"correctIndex"`
		Explanation  string   `json:"explanation"`
	} `json:"quiz"`
	ImageKeywords []string `json:"imageKeywords"`
}

// NormalizeStudyContent validates a provider payload and returns canonical
// content. Blank notes, blank bullets, slides without bullets, and quiz
// items with fewer than two options or no question are dropped. A missing,
// fractional, or out-of-range correctIndex fails the whole payload, as do
// empty notes or slides after cleaning.
func NormalizeStudyContent(raw json.RawMessage) (types.StudyContent, error) {
	const shape = types.ShapeStudyContent
	if err := requireKeys(shape, raw, "notes", "slides", "quiz"); err != nil {
		return types.StudyContent{}, err
	}
	var p studyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.StudyContent{}, normErr(shape, "invalid field types: %v", err)
	}

	var out types.StudyContent
	out.Notes = cleanStrings(p.Notes)

	for _, s := range p.Slides {
		bullets := cleanStrings(s.BulletPoints)
		title := strings.TrimSpace(s.Title)
		if title == "" || len(bullets) == 0 {
			continue
		}
		out.Slides = append(out.Slides, types.Slide{Title: title, BulletPoints: bullets})
	}

	out.Quiz = []types.QuizItem{}
	for i, q := range p.Quiz {
		question := strings.TrimSpace(q.Question)
		if len(q.Options) < 2 || question == "" {
			continue
		}
		if q.CorrectIndex == nil {
			return types.StudyContent{}, normErr(shape, "quiz item %d: missing correctIndex", i)
		}
		idx := *q.CorrectIndex
		if idx != math.Trunc(idx) || idx < 0 || int(idx) >= len(q.Options) {
			return types.StudyContent{}, normErr(shape, "quiz item %d: correctIndex %v outside [0,%d)", i, idx, len(q.Options))
		}
		out.Quiz = append(out.Quiz, types.QuizItem{
			Question:     question,
			Options:      trimAll(q.Options),
			CorrectIndex: int(idx),
			Explanation:  strings.TrimSpace(q.Explanation),
		})
	}

	if len(out.Notes) == 0 {
		return types.StudyContent{}, normErr(shape, "no usable notes")
	}
	if len(out.Slides) == 0 {
		return types.StudyContent{}, normErr(shape, "no usable slides")
	}
	out.ImageKeywords = cleanStrings(p.ImageKeywords)
	return out, nil
}

type deepStudyPayload struct {
	Level       string               `json:"level"`
	Title       string               `json:"title"`
	KeyQuestion string               `json:"keyQuestion"`
	Content     []types.ContentBlock `json:"content"`
	SelfCheck   string               `json:"selfCheck"`
}

// NormalizeDeepStudy validates a deep-study lesson. Blocks without a type
// or without any body are dropped; the lesson needs a title and at least
// one block.
func NormalizeDeepStudy(raw json.RawMessage) (types.DeepStudyLevel, error) {
	const shape = types.ShapeDeepStudy
	if err := requireKeys(shape, raw, "title", "content"); err != nil {
		return types.DeepStudyLevel{}, err
	}
	var p deepStudyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.DeepStudyLevel{}, normErr(shape, "invalid field types: %v", err)
	}

	out := types.DeepStudyLevel{
		Level:       types.StudyLevel(strings.TrimSpace(p.Level)),
		Title:       strings.TrimSpace(p.Title),
		KeyQuestion: strings.TrimSpace(p.KeyQuestion),
		SelfCheck:   strings.TrimSpace(p.SelfCheck),
	}
	if out.Title == "" {
		return types.DeepStudyLevel{}, normErr(shape, "blank title")
	}
	for _, b := range p.Content {
		b.Type = strings.TrimSpace(b.Type)
		b.Text = strings.TrimSpace(b.Text)
		b.Items = cleanStrings(b.Items)
		b.Steps = cleanStrings(b.Steps)
		b.Examples = cleanStrings(b.Examples)
		b.Resources = cleanStrings(b.Resources)
		if b.Type == "" || !hasBody(b) {
			continue
		}
		out.Content = append(out.Content, b)
	}
	if len(out.Content) == 0 {
		return types.DeepStudyLevel{}, normErr(shape, "no usable content blocks")
	}
	return out, nil
}

func hasBody(b types.ContentBlock) bool {
	return b.Text != "" || len(b.Items) > 0 || len(b.Steps) > 0 || len(b.Examples) > 0 ||
		strings.TrimSpace(b.Problem) != "" || len(b.Resources) > 0
}

type projectPayload struct {
	Topic    string `json:"topic"`
	Projects struct {
		Beginner     []projectIdeaPayload `json:"beginner"`
		Intermediate []projectIdeaPayload `json:"intermediate"`
		Advanced     []projectIdeaPayload `json:"advanced"`
	} `json:"projects"`
}

type projectIdeaPayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Skills       []string `json:"skills"`
	TimeEstimate string   `json:"timeEstimate"`
	Tools        []string `json:"tools"`
}

// NormalizeProjectIdeas validates project suggestions. Ideas without a
// title are dropped; at least one idea must remain across all levels.
func NormalizeProjectIdeas(raw json.RawMessage) (types.ProjectIdeas, error) {
	const shape = types.ShapeProjectIdeas
	if err := requireKeys(shape, raw, "projects"); err != nil {
		return types.ProjectIdeas{}, err
	}
	var p projectPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.ProjectIdeas{}, normErr(shape, "invalid field types: %v", err)
	}

	out := types.ProjectIdeas{
		Topic:        strings.TrimSpace(p.Topic),
		Beginner:     cleanIdeas(p.Projects.Beginner),
		Intermediate: cleanIdeas(p.Projects.Intermediate),
		Advanced:     cleanIdeas(p.Projects.Advanced),
	}
	if len(out.Beginner)+len(out.Intermediate)+len(out.Advanced) == 0 {
		return types.ProjectIdeas{}, normErr(shape, "no usable projects")
	}
	return out, nil
}

func cleanIdeas(in []projectIdeaPayload) []types.ProjectIdea {
	out := []types.ProjectIdea{}
	for _, p := range in {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}
		out = append(out, types.ProjectIdea{
			Title:        title,
			Description:  strings.TrimSpace(p.Description),
			Skills:       cleanStrings(p.Skills),
			TimeEstimate: strings.TrimSpace(p.TimeEstimate),
			Tools:        cleanStrings(p.Tools),
		})
	}
	return out
}

// NormalizeTutorAnswer validates a tutor reply; the answer must be non-blank.
func NormalizeTutorAnswer(raw json.RawMessage) (types.TutorAnswer, error) {
	const shape = types.ShapeTutorAnswer
	if err := requireKeys(shape, raw, "answer"); err != nil {
		return types.TutorAnswer{}, err
	}
	var p struct {
		Answer              string   `json:"answer"`
		FollowUpSuggestions []string `json:"followUpSuggestions"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.TutorAnswer{}, normErr(shape, "invalid field types: %v", err)
	}
	answer := strings.TrimSpace(p.Answer)
	if answer == "" {
		return types.TutorAnswer{}, normErr(shape, "blank answer")
	}
	return types.TutorAnswer{Answer: answer, FollowUpSuggestions: cleanStrings(p.FollowUpSuggestions)}, nil
}

// cleanStrings trims each entry and drops blanks. The result is never nil.
func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
