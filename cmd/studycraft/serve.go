// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the studycraft JSON API",
	Long: `Serve starts the HTTP API used by the browser front end. Keys given as
flags, environment variables, or .secrets/ files apply to every request and
take precedence over keys saved in settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(server.Options{
			Study:          e.Study,
			Progress:       e.Tracker,
			Settings:       e.Store,
			Credentials:    cliCredentials(cmd),
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         zap.L(),
		})
		return srv.ListenAndServe(ctx, port)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
