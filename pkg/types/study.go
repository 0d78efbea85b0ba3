// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StudyContent is the canonical output of one generation cycle.
// Notes and Slides are never empty; every QuizItem has at least two
// options and a CorrectIndex inside them.
type StudyContent struct {
	// Topic is the clean topic the content was generated for.
	Topic string `json:"topic" yaml:"topic"`

	Notes  []string   `json:"notes" yaml:"notes"`
	Slides []Slide    `json:"slides" yaml:"slides"`
	Quiz   []QuizItem `json:"quiz" yaml:"quiz"`

	// Flashcards are derived from Quiz and Notes, never generated directly.
	Flashcards []Flashcard `json:"flashcards" yaml:"flashcards"`

	// ImageKeywords are search hints for media enrichment.
	ImageKeywords []string `json:"image_keywords,omitempty" yaml:"image_keywords,omitempty"`

	// Images and Videos are nil unless media enrichment ran. A failed
	// enrichment leaves them as empty slices.
	Images []Media `json:"images,omitempty" yaml:"images,omitempty"`
	Videos []Media `json:"videos,omitempty" yaml:"videos,omitempty"`

	// Tutorials are video-search suggestions for the topic.
	Tutorials []SearchLink `json:"tutorials,omitempty" yaml:"tutorials,omitempty"`

	// Source describes where the content came from (provider name,
	// encyclopedia summary, or the generic template).
	Source    string   `json:"source" yaml:"source"`
	SourceURL string   `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Sources   []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Deep is true when the topic carried a deep-search modifier.
	Deep bool `json:"deep,omitempty" yaml:"deep,omitempty"`
}

// Slide is one presentation slide.
type Slide struct {
	Title        string   `json:"title" yaml:"title"`
	BulletPoints []string `json:"bullet_points" yaml:"bullet_points"`
}

// QuizItem is one multiple-choice question.
type QuizItem struct {
	Question     string   `json:"question" yaml:"question"`
	Options      []string `json:"options" yaml:"options"`
	CorrectIndex int      `json:"correct_index" yaml:"correct_index"`
	Explanation  string   `json:"explanation" yaml:"explanation"`
}

// Answer returns the text of the correct option.
func (q QuizItem) Answer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// CardType distinguishes how a flashcard was derived.
type CardType string

const (
	CardQuiz    CardType = "quiz"
	CardConcept CardType = "concept"
)

// Flashcard is a front/back review card.
type Flashcard struct {
	ID          string   `json:"id" yaml:"id"`
	Type        CardType `json:"type" yaml:"type"`
	Front       string   `json:"front" yaml:"front"`
	Back        string   `json:"back" yaml:"back"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Media describes one image or video attached to study content.
type Media struct {
	URL          string `json:"url" yaml:"url"`
	ThumbnailURL string `json:"thumbnail_url" yaml:"thumbnail_url"`
	Description  string `json:"description" yaml:"description"`
	Attribution  string `json:"attribution" yaml:"attribution"`
}

// MediaSet is the result of one enrichment call.
type MediaSet struct {
	Images []Media `json:"images" yaml:"images"`
	Videos []Media `json:"videos" yaml:"videos"`
}

// Article is one encyclopedia page returned by a source.
type Article struct {
	SourceName  string `json:"source_name" yaml:"source_name"`
	Title       string `json:"title" yaml:"title"`
	Content     string `json:"content" yaml:"content"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`

	// Score is assigned by the aggregator; sources leave it zero.
	Score int `json:"score" yaml:"score"`
}

// OrganizedContent is the encyclopedia aggregator's ranked result for one topic.
type OrganizedContent struct {
	// Topic is the clean search term with deep-search modifiers removed.
	Topic string `json:"topic" yaml:"topic"`

	// Deep is true when the query asked for deep coverage.
	Deep bool `json:"deep" yaml:"deep"`

	// Introduction prefers the simplified source, else the top-scored article.
	Introduction *Article `json:"introduction" yaml:"introduction"`

	// MainContent prefers the primary encyclopedia, else the top-scored article.
	MainContent *Article `json:"main_content" yaml:"main_content"`

	// DeepDive is a structured-learning article, or nil when none was fetched.
	DeepDive *Article `json:"deep_dive,omitempty" yaml:"deep_dive,omitempty"`

	// AllSources holds every fetched article sorted by score, highest first.
	AllSources []Article `json:"all_sources" yaml:"all_sources"`
}

// SourcesUsed returns the number of articles fetched.
func (o OrganizedContent) SourcesUsed() int { return len(o.AllSources) }

// Shape names the JSON schema a generation request expects back.
type Shape string

const (
	ShapeStudyContent Shape = "study_content"
	ShapeDeepStudy    Shape = "deep_study"
	ShapeProjectIdeas Shape = "project_ideas"
	ShapeTutorAnswer  Shape = "tutor_answer"
)

// SearchLink is a suggested external search, such as a video tutorial query.
type SearchLink struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
}
