// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/studycraft/pkg/types"
)

// levelSpec describes how one deep-study level is framed and which
// content blocks it asks for.
type levelSpec struct {
	Framing     string
	Title       string
	KeyQuestion string
	Blocks      string
	SelfCheck   string
}

// levelSpecs holds Framing, Title and KeyQuestion as templates over .Topic.
var levelSpecs = map[types.StudyLevel]levelSpec{
	types.LevelFoundation: {
		Framing:     `You are teaching "{{.Topic}}" to someone with ZERO prior knowledge.`,
		Title:       "Understanding the Basics of {{.Topic}}",
		KeyQuestion: "What is {{.Topic}} and why does it matter?",
		Blocks: `{"type": "definition", "text": "Simple, clear definition"},
        {"type": "analogy", "text": "Real-world analogy to make it relatable"},
        {"type": "keyPoints", "items": ["3-4 fundamental concepts"]},
        {"type": "funFact", "text": "Interesting fact to spark curiosity"}`,
		SelfCheck: "A simple question to verify understanding",
	},
	types.LevelUnderstanding: {
		Framing:     `Building on foundation knowledge, explain HOW "{{.Topic}}" works in depth.`,
		Title:       "How {{.Topic}} Works",
		KeyQuestion: "What are the mechanisms and principles behind {{.Topic}}?",
		Blocks: `{"type": "mechanism", "text": "Detailed explanation of how it works"},
        {"type": "components", "items": ["Key components/parts with explanations"]},
        {"type": "process", "steps": ["Step-by-step process if applicable"]},
        {"type": "connections", "text": "How this connects to related concepts"}`,
		SelfCheck: "A deeper question to verify understanding",
	},
	types.LevelApplication: {
		Framing:     `Show practical applications and examples of "{{.Topic}}".`,
		Title:       "Applying {{.Topic}} in Practice",
		KeyQuestion: "How is {{.Topic}} used in real life?",
		Blocks: `{"type": "realWorld", "examples": ["3-4 real-world applications"]},
        {"type": "exercise", "problem": "A practice problem or scenario", "solution": "Step-by-step solution"},
        {"type": "commonMistakes", "items": ["Common misconceptions to avoid"]}`,
		SelfCheck: "An application-based question",
	},
	types.LevelMastery: {
		Framing:     `Advanced concepts and edge cases of "{{.Topic}}" for mastery.`,
		Title:       "Mastering {{.Topic}}",
		KeyQuestion: "What are the advanced aspects and nuances of {{.Topic}}?",
		Blocks: `{"type": "advanced", "text": "Advanced concepts and nuances"},
        {"type": "edgeCases", "items": ["Edge cases, exceptions, or special scenarios"]},
        {"type": "expertTips", "items": ["Tips from expert perspective"]},
        {"type": "furtherStudy", "resources": ["Suggested topics for further exploration"]}`,
		SelfCheck: "A challenging mastery-level question",
	},
}

var deepStudyTmpl = template.Must(template.New("deep-study").Parse(`{{.Framing}}

TEACHING STYLE: {{.Style}}

Generate a JSON response with:
{
    "level": "{{.Level}}",
    "title": "{{.Title}}",
    "keyQuestion": "{{.KeyQuestion}}",
    "content": [
        {{.Blocks}}
    ],
    "selfCheck": "{{.SelfCheck}}"
}
`))

// DeepStudy renders the prompt for one deep-study level of topic. The
// subject is detected from the topic and selects the teaching style.
func DeepStudy(topic string, level types.StudyLevel) (string, types.Subject, error) {
	spec, ok := levelSpecs[level]
	if !ok {
		return "", "", eris.Errorf("prompt: unknown study level %q", level)
	}
	subject := DetectSubject(topic)

	expand := func(s string) (string, error) {
		t, err := template.New("field").Parse(s)
		if err != nil {
			return "", eris.Wrap(err, "prompt: parse level field")
		}
		return render(t, struct{ Topic string }{topic})
	}

	data := struct {
		levelSpec
		Level types.StudyLevel
		Style string
	}{Level: level, Style: TeachingStyle(subject)}

	var err error
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&data.Framing, spec.Framing},
		{&data.Title, spec.Title},
		{&data.KeyQuestion, spec.KeyQuestion},
	} {
		if *f.dst, err = expand(f.src); err != nil {
			return "", "", err
		}
	}
	data.Blocks = spec.Blocks
	data.SelfCheck = spec.SelfCheck

	out, err := render(deepStudyTmpl, data)
	if err != nil {
		return "", "", err
	}
	return out, subject, nil
}
