// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	fsrs "github.com/open-spaced-repetition/go-fsrs"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/studycraft/internal/adaptive"
	"github.com/pdiddy/studycraft/pkg/types"
)

// topicProgress is the progress report for one topic.
type topicProgress struct {
	Topic       string                  `json:"topic" yaml:"topic"`
	Record      types.PerformanceRecord `json:"record" yaml:"record"`
	Mastery     int                     `json:"mastery" yaml:"mastery"`
	Recommended types.Difficulty        `json:"recommended_difficulty" yaml:"recommended_difficulty"`
	FollowUp    types.FollowUp          `json:"follow_up" yaml:"follow_up"`
}

func newTopicProgress(topic string, rec types.PerformanceRecord) topicProgress {
	m := adaptive.MasteryOf(rec)
	return topicProgress{
		Topic:       topic,
		Record:      rec,
		Mastery:     m,
		Recommended: adaptive.Recommend(m),
		FollowUp:    adaptive.BuildFollowUp(rec),
	}
}

func writeTopicProgress(w io.Writer, p topicProgress) {
	fmt.Fprintf(w, "%s: %d/%d correct, mastery %d%%, next level %s\n",
		p.Topic, p.Record.Correct, p.Record.Attempts, p.Mastery, p.Recommended)
	if len(p.Record.WeakAreas) > 0 {
		fmt.Fprintf(w, "Weak areas: %s\n", strings.Join(p.Record.WeakAreas, ", "))
	}
	writeFollowUp(w, p.FollowUp)
}

// --- quiz ---

var quizCmd = &cobra.Command{
	Use:   "quiz [topic] [results-file]",
	Short: "Record quiz results for a topic",
	Long: `Quiz reads answered questions from a JSON or YAML file, a list of
{question, correct} entries, and adds them to the topic's performance
record. Missed questions contribute weak-area concepts.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuiz,
}

func runQuiz(cmd *cobra.Command, args []string) error {
	results, err := loadQuizResults(args[1])
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("%s holds no quiz results", args[1])
	}

	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.Tracker.Ingest(ctx, args[0], results)
	if err != nil {
		return err
	}
	p := newTopicProgress(strings.TrimSpace(args[0]), rec)
	return render(cmd, p, func(w io.Writer) { writeTopicProgress(w, p) })
}

func loadQuizResults(path string) ([]types.QuizResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading quiz results: %w", err)
	}
	var results []types.QuizResult
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &results)
	} else {
		err = yaml.Unmarshal(data, &results)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return results, nil
}

// --- progress ---

var progressCmd = &cobra.Command{
	Use:   "progress [topic]",
	Short: "Show mastery and recommended difficulty",
	Long: `Progress shows the performance record, mastery, next difficulty, and
follow-up suggestions for a topic, or a summary of every topic when none
is given. --reset deletes the topic's record; --difficulty sets it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if len(args) == 0 {
		all, err := e.Tracker.All(ctx)
		if err != nil {
			return err
		}
		topics := make([]string, 0, len(all))
		for t := range all {
			topics = append(topics, t)
		}
		sort.Strings(topics)
		list := make([]topicProgress, 0, len(topics))
		for _, t := range topics {
			list = append(list, newTopicProgress(t, all[t]))
		}
		return render(cmd, list, func(w io.Writer) {
			if len(list) == 0 {
				fmt.Fprintln(w, "No quiz history yet.")
				return
			}
			fmt.Fprintf(w, "%-30s  %-8s  %-7s  %s\n", "Topic", "Score", "Mastery", "Next")
			fmt.Fprintln(w, strings.Repeat("-", 64))
			for _, p := range list {
				fmt.Fprintf(w, "%-30s  %-8s  %6d%%  %s\n", p.Topic,
					fmt.Sprintf("%d/%d", p.Record.Correct, p.Record.Attempts), p.Mastery, p.Recommended)
			}
		})
	}

	topic := strings.TrimSpace(args[0])
	if reset, _ := cmd.Flags().GetBool("reset"); reset {
		if err := e.Tracker.Reset(ctx, topic); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reset progress for %s\n", topic)
		return nil
	}
	if d, _ := cmd.Flags().GetString("difficulty"); d != "" {
		if err := e.Tracker.SetDifficulty(ctx, topic, types.Difficulty(d)); err != nil {
			return err
		}
	}

	rec, ok, err := e.Tracker.Record(ctx, topic)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no quiz history for %q", topic)
	}
	p := newTopicProgress(topic, rec)
	return render(cmd, p, func(w io.Writer) { writeTopicProgress(w, p) })
}

// --- flashcards ---

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Review flashcards and see which are due",
}

var flashcardsReviewCmd = &cobra.Command{
	Use:   "review [card-id] [remembered|forgot|again|hard|good|easy]",
	Short: "Record one flashcard review",
	Long: `Review records a self-graded review and reschedules the card.
"remembered" and "forgot" are shorthands for good and again.`,
	Args: cobra.ExactArgs(2),
	RunE: runFlashcardsReview,
}

var ratings = map[string]fsrs.Rating{
	"remembered": fsrs.Good,
	"forgot":     fsrs.Again,
	"again":      fsrs.Again,
	"hard":       fsrs.Hard,
	"good":       fsrs.Good,
	"easy":       fsrs.Easy,
}

func runFlashcardsReview(cmd *cobra.Command, args []string) error {
	rating, ok := ratings[strings.ToLower(args[1])]
	if !ok {
		return fmt.Errorf("unknown rating %q", args[1])
	}

	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	p, err := e.Tracker.RateCard(ctx, args[0], rating)
	if err != nil {
		return err
	}
	return render(cmd, p, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d/%d remembered, mastery %d%%, next review %s\n",
			args[0], p.Correct, p.Total, p.Mastery(), p.Due.Local().Format(time.RFC1123))
	})
}

var flashcardsDueCmd = &cobra.Command{
	Use:   "due [card-id...]",
	Short: "List which of the given cards are due for review",
	Long: `Due prints the given card ids that are due now with their mastery.
Cards never reviewed are always due.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		due, err := e.Tracker.DueCards(ctx, args, time.Now())
		if err != nil {
			return err
		}
		mastery := make(map[string]int, len(due))
		for _, id := range due {
			if mastery[id], err = e.Tracker.CardMastery(ctx, id); err != nil {
				return err
			}
		}
		return render(cmd, due, func(w io.Writer) {
			for _, id := range due {
				fmt.Fprintf(w, "%s  %3d%%\n", id, mastery[id])
			}
			fmt.Fprintf(w, "\n%d of %d due\n", len(due), len(args))
		})
	},
}

func init() {
	progressCmd.Flags().Bool("reset", false, "delete the topic's performance record")
	progressCmd.Flags().String("difficulty", "", "set the topic's difficulty: beginner, intermediate, advanced")

	flashcardsCmd.AddCommand(flashcardsReviewCmd)
	flashcardsCmd.AddCommand(flashcardsDueCmd)

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(flashcardsCmd)
}
