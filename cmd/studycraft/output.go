// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/studycraft/pkg/types"
)

// render writes v in the --format chosen on cmd. text is used for "text".
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	format, _ := cmd.Flags().GetString("format")
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
}

func writeStudyContent(w io.Writer, c types.StudyContent) {
	fmt.Fprintf(w, "Topic: %s\nSource: %s\n", c.Topic, c.Source)
	if c.SourceURL != "" {
		fmt.Fprintf(w, "URL: %s\n", c.SourceURL)
	}

	heading(w, "Notes")
	for _, n := range c.Notes {
		fmt.Fprintf(w, "- %s\n", n)
	}

	heading(w, "Slides")
	for i, s := range c.Slides {
		fmt.Fprintf(w, "%d. %s\n", i+1, s.Title)
		for _, b := range s.BulletPoints {
			fmt.Fprintf(w, "   * %s\n", b)
		}
	}

	heading(w, "Quiz")
	for i, q := range c.Quiz {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Question)
		for j, o := range q.Options {
			mark := " "
			if j == q.CorrectIndex {
				mark = "*"
			}
			fmt.Fprintf(w, "   %s %c) %s\n", mark, 'a'+j, o)
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", q.Explanation)
		}
	}

	heading(w, "Flashcards")
	for _, f := range c.Flashcards {
		fmt.Fprintf(w, "%s\n    Q: %s\n    A: %s\n", f.ID, f.Front, f.Back)
	}

	if len(c.Images)+len(c.Videos) > 0 {
		heading(w, "Media")
		for _, m := range c.Images {
			fmt.Fprintf(w, "image: %s (%s)\n", m.URL, m.Attribution)
		}
		for _, m := range c.Videos {
			fmt.Fprintf(w, "video: %s (%s)\n", m.URL, m.Attribution)
		}
	}

	if len(c.Tutorials) > 0 {
		heading(w, "Tutorials")
		for _, t := range c.Tutorials {
			fmt.Fprintf(w, "%s\n    %s\n", t.Title, t.URL)
		}
	}
}

func writeLesson(w io.Writer, l types.DeepStudyLevel) {
	fmt.Fprintf(w, "%s (%s, %s)\n", l.Title, l.Level, l.Subject)
	if l.KeyQuestion != "" {
		fmt.Fprintf(w, "Key question: %s\n", l.KeyQuestion)
	}
	for _, b := range l.Content {
		heading(w, b.Type)
		if b.Text != "" {
			fmt.Fprintln(w, b.Text)
		}
		for _, list := range [][]string{b.Items, b.Steps, b.Examples, b.Resources} {
			for _, it := range list {
				fmt.Fprintf(w, "- %s\n", it)
			}
		}
		if b.Problem != "" {
			fmt.Fprintf(w, "Problem: %s\n", b.Problem)
		}
		if b.Solution != "" {
			fmt.Fprintf(w, "Solution: %s\n", b.Solution)
		}
	}
	if l.SelfCheck != "" {
		heading(w, "Self check")
		fmt.Fprintln(w, l.SelfCheck)
	}
}

func writeProjectIdeas(w io.Writer, p types.ProjectIdeas) {
	fmt.Fprintf(w, "Projects for %s\n", p.Topic)
	groups := []struct {
		name  string
		ideas []types.ProjectIdea
	}{
		{"Beginner", p.Beginner},
		{"Intermediate", p.Intermediate},
		{"Advanced", p.Advanced},
	}
	for _, g := range groups {
		heading(w, g.name)
		for _, idea := range g.ideas {
			fmt.Fprintf(w, "%s (%s)\n    %s\n", idea.Title, idea.TimeEstimate, idea.Description)
			if len(idea.Skills) > 0 {
				fmt.Fprintf(w, "    skills: %s\n", strings.Join(idea.Skills, ", "))
			}
		}
	}
}

func writeFollowUp(w io.Writer, f types.FollowUp) {
	fmt.Fprintf(w, "%s (mastery %d%%)\n", f.Message, f.Mastery)
	for _, s := range f.Suggestions {
		fmt.Fprintf(w, "  [%s] %s: %s\n", s.Priority, s.Area, s.Action)
	}
}
