// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/orchestrator"
	"github.com/pdiddy/studycraft/internal/provider"
	"github.com/pdiddy/studycraft/internal/study"
)

var checkKeyCmd = &cobra.Command{
	Use:   "check-key [credential]",
	Short: "Test an API key against each LLM provider",
	Long: `Check-key sends a minimal prompt with the credential to each provider
in turn (openrouter, gemini, rapidapi, anthropic) and reports the result
per provider. It stops at the first provider that answers and exits 0;
if none does it exits 1.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckKey,
}

func init() {
	checkKeyCmd.Flags().StringSlice("provider", nil, "providers to try, in order (default all)")
	checkKeyCmd.Flags().Duration("timeout", 30*time.Second, "timeout per provider")

	rootCmd.AddCommand(checkKeyCmd)
}

func runCheckKey(cmd *cobra.Command, args []string) error {
	kinds, _ := cmd.Flags().GetStringSlice("provider")
	for _, k := range kinds {
		if provider.DefaultModels(k) == nil {
			return fmt.Errorf("unknown provider %q: use one of %s", k, strings.Join(provider.Kinds(), ", "))
		}
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	checks, ok := study.CheckKey(cmd.Context(), args[0], kinds, timeout,
		orchestrator.ChainOptions{Logger: zap.L()})

	if err := render(cmd, checks, func(w io.Writer) {
		for _, c := range checks {
			status := "OK"
			if !c.OK {
				status = "FAIL " + c.Error
			}
			fmt.Fprintf(w, "%-12s  %-6s  %s\n", c.Provider, c.Elapsed.Round(time.Millisecond), status)
		}
	}); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no provider accepted the key")
	}
	return nil
}
