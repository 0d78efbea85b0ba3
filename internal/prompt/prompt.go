// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt renders the generation prompts sent to providers. Each
// prompt asks for exactly one JSON object in a fixed shape.
package prompt

import (
	"bytes"
	"regexp"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/studycraft/pkg/types"
)

var studyContentTmpl = template.Must(template.New("study").Funcs(template.FuncMap{"join": strings.Join}).Parse(`You are an expert educational content creator. Based on the topic, create comprehensive study materials.

Topic: {{.Topic}}
Learner level: {{.Difficulty}}

IMPORTANT: Respond ONLY with valid JSON, no markdown code blocks. Generate:
{
  "notes": ["6-8 clear educational notes about the topic"],
  "slides": [
    {"title": "Slide Title", "bulletPoints": ["3-4 bullet points per slide"]}
  ],
  "quiz": [
    {
      "question": "Clear multiple choice question",
      "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
      "correctIndex": 0,
      "explanation": "Explanation of the correct answer"
    }
  ],
  "imageKeywords": ["2-3 short image search phrases"]
}
{{- if .WeakAreas}}

Give extra attention to these areas the learner struggled with: {{join .WeakAreas ", "}}.
{{- end}}
`))

var tutorTmpl = template.Must(template.New("tutor").Parse(`You are an expert tutor teaching about "{{.Topic}}".

CONTEXT: The student has been learning about: {{.Context}}

STUDENT'S QUESTION: {{.Question}}

Provide a helpful, clear answer. If the question is unclear, ask for clarification.
Format your response as JSON:
{
    "answer": "Your detailed answer",
    "followUpSuggestions": ["2-3 related questions they might want to ask next"]
}
`))

var projectsTmpl = template.Must(template.New("projects").Parse(`Generate creative project ideas for learning about "{{.Topic}}".

Return JSON format:
{
    "topic": "{{.Topic}}",
    "projects": {
        "beginner": [{"title": "Project name", "description": "What the project does", "skills": ["skills learned"], "timeEstimate": "1-2 hours", "tools": ["tools needed"]}],
        "intermediate": [{"title": "Project name", "description": "What the project does", "skills": ["skills learned"], "timeEstimate": "3-5 hours", "tools": ["tools needed"]}],
        "advanced": [{"title": "Project name", "description": "What the project does", "skills": ["skills learned"], "timeEstimate": "1-2 weeks", "tools": ["tools needed"]}]
    }
}

Provide 2-3 projects per level.
`))

// Ping is the minimal prompt used to verify a credential.
const Ping = `Reply with exactly this JSON object and nothing else: {"ok": true}`

// StudyContent renders the notes/slides/quiz prompt. weakAreas, when
// non-empty, steer the content toward topics the learner missed.
func StudyContent(topic string, difficulty types.Difficulty, weakAreas []string) (string, error) {
	if difficulty == "" {
		difficulty = types.Intermediate
	}
	return render(studyContentTmpl, struct {
		Topic      string
		Difficulty types.Difficulty
		WeakAreas  []string
	}{topic, difficulty, weakAreas})
}

// Tutor renders the follow-up question prompt.
func Tutor(topic, question, context string) (string, error) {
	if context == "" {
		context = topic
	}
	return render(tutorTmpl, struct{ Topic, Question, Context string }{topic, question, context})
}

// ProjectIdeas renders the project suggestion prompt.
func ProjectIdeas(topic string) (string, error) {
	return render(projectsTmpl, struct{ Topic string }{topic})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", eris.Wrapf(err, "prompt: render %s", t.Name())
	}
	return buf.String(), nil
}

// subjectPatterns are checked in order; the first match wins.
var subjectPatterns = []struct {
	subject types.Subject
	re      *regexp.Regexp
}{
	{types.SubjectScience, regexp.MustCompile(`physics|chemistry|biology|quantum|atom|molecule|cell|dna|evolution|gravity|energy|force`)},
	{types.SubjectMathematics, regexp.MustCompile(`math|calculus|algebra|geometry|equation|theorem|integral|derivative|statistics|probability`)},
	{types.SubjectCoding, regexp.MustCompile(`programming|code|javascript|python|react|algorithm|function|variable|loop|api|database`)},
	{types.SubjectHistory, regexp.MustCompile(`war|century|ancient|empire|king|revolution|civilization|era|dynasty|historical`)},
	{types.SubjectGeography, regexp.MustCompile(`country|continent|ocean|mountain|river|climate|population|capital|region|map`)},
}

// DetectSubject classifies a topic for deep study by substring patterns.
func DetectSubject(topic string) types.Subject {
	lower := strings.ToLower(topic)
	for _, sp := range subjectPatterns {
		if sp.re.MatchString(lower) {
			return sp.subject
		}
	}
	return types.SubjectGeneral
}

var teachingStyles = map[types.Subject]string{
	types.SubjectScience:     `Use visual analogies, real-world examples, and explain the "why" behind phenomena. Include relevant experiments or observations.`,
	types.SubjectMathematics: "Show step-by-step solutions, explain the logic, use visual representations. Build from simple to complex.",
	types.SubjectCoding:      "Include code examples with syntax highlighting markers. Explain with practical use cases. Show before/after comparisons.",
	types.SubjectHistory:     "Provide timeline context, cause-and-effect relationships, key figures, and lasting impacts.",
	types.SubjectGeography:   "Include spatial relationships, statistics, cultural context, and environmental factors.",
	types.SubjectGeneral:     "Use clear explanations, relevant examples, and build logical connections between concepts.",
}

// TeachingStyle returns the instruction paragraph for a subject.
func TeachingStyle(s types.Subject) string {
	if style, ok := teachingStyles[s]; ok {
		return style
	}
	return teachingStyles[types.SubjectGeneral]
}
