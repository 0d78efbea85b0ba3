// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StudyLevel is one step of the progressive deep-study path.
type StudyLevel string

const (
	LevelFoundation    StudyLevel = "foundation"
	LevelUnderstanding StudyLevel = "understanding"
	LevelApplication   StudyLevel = "application"
	LevelMastery       StudyLevel = "mastery"
)

// StudyLevels lists the deep-study levels in teaching order.
var StudyLevels = []StudyLevel{LevelFoundation, LevelUnderstanding, LevelApplication, LevelMastery}

// Subject is the broad subject detected from a topic for deep study.
type Subject string

const (
	SubjectScience     Subject = "science"
	SubjectMathematics Subject = "mathematics"
	SubjectCoding      Subject = "coding"
	SubjectHistory     Subject = "history"
	SubjectGeography   Subject = "geography"
	SubjectGeneral     Subject = "general"
)

// DeepStudyLevel is the generated lesson for one StudyLevel.
type DeepStudyLevel struct {
	Topic       string         `json:"topic" yaml:"topic"`
	Subject     Subject        `json:"subject" yaml:"subject"`
	Level       StudyLevel     `json:"level" yaml:"level"`
	Title       string         `json:"title" yaml:"title"`
	KeyQuestion string         `json:"key_question" yaml:"key_question"`
	Content     []ContentBlock `json:"content" yaml:"content"`
	SelfCheck   string         `json:"self_check" yaml:"self_check"`
}

// ContentBlock is one typed section of a deep-study lesson. Which fields
// are set depends on Type (definition, analogy, keyPoints, exercise, ...).
type ContentBlock struct {
	Type      string   `json:"type" yaml:"type"`
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	Items     []string `json:"items,omitempty" yaml:"items,omitempty"`
	Steps     []string `json:"steps,omitempty" yaml:"steps,omitempty"`
	Examples  []string `json:"examples,omitempty" yaml:"examples,omitempty"`
	Problem   string   `json:"problem,omitempty" yaml:"problem,omitempty"`
	Solution  string   `json:"solution,omitempty" yaml:"solution,omitempty"`
	Resources []string `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// TutorAnswer is the tutor's reply to a follow-up question.
type TutorAnswer struct {
	Answer              string   `json:"answer" yaml:"answer"`
	FollowUpSuggestions []string `json:"follow_up_suggestions" yaml:"follow_up_suggestions"`
}

// ProjectIdeas groups hands-on project suggestions by difficulty.
type ProjectIdeas struct {
	Topic        string        `json:"topic" yaml:"topic"`
	Beginner     []ProjectIdea `json:"beginner" yaml:"beginner"`
	Intermediate []ProjectIdea `json:"intermediate" yaml:"intermediate"`
	Advanced     []ProjectIdea `json:"advanced" yaml:"advanced"`
}

// ProjectIdea is one suggested project.
type ProjectIdea struct {
	Title        string   `json:"title" yaml:"title"`
	Description  string   `json:"description" yaml:"description"`
	Skills       []string `json:"skills" yaml:"skills"`
	TimeEstimate string   `json:"time_estimate" yaml:"time_estimate"`
	Tools        []string `json:"tools" yaml:"tools"`
}
