// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Difficulty is the recommended content level for a topic.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// PerformanceRecord is the persisted per-topic quiz history.
// Correct never exceeds Attempts; WeakAreas holds at most five entries,
// most recent last.
type PerformanceRecord struct {
	Attempts    int        `json:"attempts" yaml:"attempts"`
	Correct     int        `json:"correct" yaml:"correct"`
	WeakAreas   []string   `json:"weak_areas" yaml:"weak_areas"`
	LastStudied time.Time  `json:"last_studied" yaml:"last_studied"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
}

// QuizResult is the outcome of one answered question.
type QuizResult struct {
	Question string `json:"question" yaml:"question"`
	Correct  bool   `json:"correct" yaml:"correct"`
}

// FollowUpTier is the message band chosen from the mastery level.
type FollowUpTier string

const (
	TierDone        FollowUpTier = "done"
	TierStruggling  FollowUpTier = "struggling"
	TierProgressing FollowUpTier = "progressing"
	TierPolishing   FollowUpTier = "polishing"
)

// Priority ranks a follow-up suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is one weak area the learner should revisit.
type Suggestion struct {
	Area     string   `json:"area" yaml:"area"`
	Action   string   `json:"action" yaml:"action"`
	Priority Priority `json:"priority" yaml:"priority"`
}

// FollowUp is the feedback panel content for a topic.
type FollowUp struct {
	Tier        FollowUpTier `json:"tier" yaml:"tier"`
	Message     string       `json:"message" yaml:"message"`
	Mastery     int          `json:"mastery" yaml:"mastery"`
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`
}

// FlashcardProgress is the persisted review history of one flashcard.
// The scheduling fields mirror an FSRS card.
type FlashcardProgress struct {
	Correct int `json:"correct" yaml:"correct"`
	Total   int `json:"total" yaml:"total"`

	Due           time.Time `json:"due" yaml:"due"`
	Stability     float64   `json:"stability" yaml:"stability"`
	Difficulty    float64   `json:"difficulty" yaml:"difficulty"`
	ElapsedDays   int       `json:"elapsed_days" yaml:"elapsed_days"`
	ScheduledDays int       `json:"scheduled_days" yaml:"scheduled_days"`
	Reps          int       `json:"reps" yaml:"reps"`
	Lapses        int       `json:"lapses" yaml:"lapses"`
	State         int       `json:"state" yaml:"state"`
	LastReview    time.Time `json:"last_review" yaml:"last_review"`
}

// Mastery returns round(100 * Correct / Total), or 0 with no reviews.
func (p FlashcardProgress) Mastery() int {
	return Percent(p.Correct, p.Total)
}

// Percent returns round(100 * part / whole), or 0 when whole is zero.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
