// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/studycraft/pkg/types"
)

// --- deep-study ---

var deepStudyCmd = &cobra.Command{
	Use:   "deep-study [topic]",
	Short: "Generate one level of a progressive lesson",
	Long: `Deep-study generates a lesson for one of four levels: foundation,
understanding, application, mastery. The subject (science, mathematics,
coding, history, geography) is detected from the topic and sets the
teaching style. Lessons need an LLM provider; there is no offline path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDeepStudy,
}

func runDeepStudy(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("level")
	if !slices.Contains(types.StudyLevels, types.StudyLevel(level)) {
		return fmt.Errorf("unsupported level %q: use foundation, understanding, application, or mastery", level)
	}

	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	lesson, err := e.Study.DeepStudy(ctx, strings.Join(args, " "), types.StudyLevel(level), e.Credentials)
	if err != nil {
		return err
	}
	return render(cmd, lesson, func(w io.Writer) { writeLesson(w, lesson) })
}

// --- tutor ---

var tutorCmd = &cobra.Command{
	Use:   "tutor [topic] [question]",
	Short: "Ask a follow-up question about a topic",
	Long: `Tutor answers a question about a topic. Pass --context with a file
holding the current lesson text to ground the answer in it.`,
	Args: cobra.ExactArgs(2),
	RunE: runTutor,
}

func runTutor(cmd *cobra.Command, args []string) error {
	var lesson string
	if path, _ := cmd.Flags().GetString("context"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading context: %w", err)
		}
		lesson = string(data)
	}

	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ans, err := e.Study.Tutor(ctx, args[0], args[1], lesson, e.Credentials)
	if err != nil {
		return err
	}
	return render(cmd, ans, func(w io.Writer) {
		fmt.Fprintln(w, ans.Answer)
		if len(ans.FollowUpSuggestions) > 0 {
			fmt.Fprintln(w, "\nTry asking:")
			for _, s := range ans.FollowUpSuggestions {
				fmt.Fprintf(w, "- %s\n", s)
			}
		}
	})
}

// --- projects ---

var projectsCmd = &cobra.Command{
	Use:   "projects [topic]",
	Short: "Suggest hands-on projects for a topic",
	Long: `Projects suggests beginner, intermediate, and advanced projects.
When no provider answers, templated ideas are returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProjects,
}

func runProjects(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ideas, err := e.Study.ProjectIdeas(ctx, strings.Join(args, " "), e.Credentials)
	if err != nil {
		return err
	}
	return render(cmd, ideas, func(w io.Writer) { writeProjectIdeas(w, ideas) })
}

func init() {
	deepStudyCmd.Flags().String("level", string(types.LevelFoundation), "lesson level: foundation, understanding, application, mastery")
	tutorCmd.Flags().String("context", "", "file with the lesson text the question is about")

	rootCmd.AddCommand(deepStudyCmd)
	rootCmd.AddCommand(tutorCmd)
	rootCmd.AddCommand(projectsCmd)
}
