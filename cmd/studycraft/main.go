// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the studycraft CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/config"
	"github.com/pdiddy/studycraft/internal/secrets"
	"github.com/pdiddy/studycraft/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is loaded once in PersistentPreRunE.
	cfg types.Config

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string
)

// rootCmd is the base command for the studycraft CLI.
var rootCmd = &cobra.Command{
	Use:   "studycraft",
	Short: "Generate study material for any topic",
	Long: `studycraft turns a topic into notes, slides, a quiz, and flashcards.

In AI mode it asks a chain of LLM providers in turn and falls back to free
encyclopedia sources when none answers. Quiz results feed an adaptive
tracker that picks the difficulty of the next session and schedules
flashcard reviews. The same operations are served over HTTP by "serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is normal.
		_ = godotenv.Load()

		cfgFile, _ := cmd.Flags().GetString("config")
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if storePath, _ := cmd.Flags().GetString("store"); storePath != "" {
			c.Store.Path = storePath
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			c.Log.Level = level
		}
		cfg = c
		if err := config.InitLogger(cfg.Log); err != nil {
			return err
		}

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			zap.L().Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./studycraft.yaml or ~/.config/studycraft/studycraft.yaml)")
	pf.String("store", "", "SQLite database path (default from config)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.StringP("format", "o", "text", "output format: text, json, or yaml")

	pf.String("openrouter-key", "", "OpenRouter API key")
	pf.String("gemini-key", "", "Gemini API key")
	pf.String("rapidapi-key", "", "RapidAPI key")
	pf.String("anthropic-key", "", "Anthropic API key")
	pf.String("pexels-key", "", "Pexels API key for images and videos")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
