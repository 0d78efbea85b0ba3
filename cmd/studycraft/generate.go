// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/studycraft/internal/study"
	"github.com/pdiddy/studycraft/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate notes, slides, a quiz, and flashcards for a topic",
	Long: `Generate builds study content for a topic. In AI mode the configured
provider chain runs first; when every provider fails, free encyclopedia
sources are used, and when those find nothing a generic template is used.
Include a modifier such as "detailed", "in-depth" or "deep search" anywhere
in the topic to fetch a structured deep dive in offline mode.

Mode, media, and default difficulty come from stored settings unless the
flags override them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("mode", "", "generation mode: ai or offline (default from settings)")
	generateCmd.Flags().String("difficulty", "", "override the difficulty: beginner, intermediate, advanced")
	generateCmd.Flags().Bool("media", false, "attach Pexels images and videos (default from settings)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := initEnv(ctx, cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	req := study.Request{
		Topic:             strings.Join(args, " "),
		Mode:              e.Settings.Mode,
		Credentials:       e.Credentials,
		FetchMedia:        e.Settings.AutoFetchMedia,
		DefaultDifficulty: e.Settings.DefaultDifficulty,
	}
	if mode, _ := cmd.Flags().GetString("mode"); mode != "" {
		req.Mode = types.Mode(mode)
		if req.Mode != types.ModeAI && req.Mode != types.ModeOffline {
			return fmt.Errorf("unsupported mode %q: use ai or offline", mode)
		}
	}
	if d, _ := cmd.Flags().GetString("difficulty"); d != "" {
		req.Difficulty = types.Difficulty(d)
		if !req.Difficulty.Valid() {
			return fmt.Errorf("unsupported difficulty %q", d)
		}
	}
	if cmd.Flags().Changed("media") {
		req.FetchMedia, _ = cmd.Flags().GetBool("media")
	}

	content, err := e.Study.Generate(ctx, req)
	if err != nil {
		return err
	}
	return render(cmd, content, func(w io.Writer) { writeStudyContent(w, content) })
}
