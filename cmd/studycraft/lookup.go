// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/encyclopedia"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [term]",
	Short: "Query the encyclopedia sources without generating content",
	Long: `Lookup runs the offline aggregation for a term and prints the ranked
articles with the role each one plays (introduction, main, deep dive).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := encyclopedia.New(cfg.Encyclopedia, zap.L())
		org := agg.Aggregate(cmd.Context(), strings.Join(args, " "))
		return render(cmd, org, func(w io.Writer) { encyclopedia.FormatTable(org, w) })
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
