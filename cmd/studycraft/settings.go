// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/studycraft/internal/settings"
	"github.com/pdiddy/studycraft/pkg/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change stored preferences",
	Long: `Settings manages the preferences stored in the local database: API
keys, learning mode, automatic media, and default difficulty. Keys are
always shown redacted.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := initEnv(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		s := settings.Redacted(e.Settings)
		return render(cmd, s, func(w io.Writer) { writeSettings(w, s) })
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [field] [value]",
	Short: "Change one stored setting",
	Long: `Set changes one field. Fields: openrouter_api_key, gemini_api_key,
rapidapi_key, anthropic_api_key, pexels_api_key, learning_mode (ai or
offline), auto_fetch_images (true or false), default_difficulty.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := initEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := settings.Set(e.Settings, args[0], args[1])
		if err != nil {
			return err
		}
		if err := settings.Save(ctx, e.Store, s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
		return nil
	},
}

func writeSettings(w io.Writer, s types.Settings) {
	rows := []struct{ k, v string }{
		{"learning_mode", string(s.Mode)},
		{"auto_fetch_images", fmt.Sprint(s.AutoFetchMedia)},
		{"default_difficulty", string(s.DefaultDifficulty)},
		{"openrouter_api_key", s.OpenRouter},
		{"gemini_api_key", s.Gemini},
		{"rapidapi_key", s.RapidAPI},
		{"anthropic_api_key", s.Anthropic},
		{"pexels_api_key", s.Pexels},
	}
	for _, r := range rows {
		v := r.v
		if v == "" {
			v = "(not set)"
		}
		fmt.Fprintf(w, "%-20s  %s\n", r.k, v)
	}
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
