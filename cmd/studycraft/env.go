// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/adaptive"
	"github.com/pdiddy/studycraft/internal/encyclopedia"
	"github.com/pdiddy/studycraft/internal/media"
	"github.com/pdiddy/studycraft/internal/orchestrator"
	"github.com/pdiddy/studycraft/internal/secrets"
	"github.com/pdiddy/studycraft/internal/settings"
	"github.com/pdiddy/studycraft/internal/store"
	"github.com/pdiddy/studycraft/internal/study"
	"github.com/pdiddy/studycraft/pkg/types"
)

// env holds the components one command needs.
type env struct {
	Store    *store.Store
	Tracker  *adaptive.Tracker
	Study    *study.Service
	Settings types.Settings

	// Credentials resolved for this invocation, highest precedence first:
	// flags, environment or config file, .secrets/, stored settings.
	Credentials types.Credentials
}

// Close releases the store.
func (e *env) Close() {
	if e.Store != nil {
		e.Store.Close()
	}
}

// initEnv opens the store and builds the study service from cfg.
func initEnv(ctx context.Context, cmd *cobra.Command) (*env, error) {
	kv, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	st, err := settings.Load(ctx, kv)
	if err != nil {
		zap.L().Warn("settings unreadable, using defaults", zap.Error(err))
	}

	log := zap.L()
	tracker := adaptive.NewTracker(kv)
	svc := study.New(cfg.Generate, study.Options{
		Aggregator: encyclopedia.New(cfg.Encyclopedia, log),
		Media:      media.New(cfg.Media, log),
		History:    tracker,
		Chain:      orchestrator.ChainOptions{Logger: log},
		Logger:     log,
	})

	return &env{
		Store:       kv,
		Tracker:     tracker,
		Study:       svc,
		Settings:    st,
		Credentials: cliCredentials(cmd).Merge(st.Credentials),
	}, nil
}

// cliCredentials merges flag, environment/config, and secret-file keys.
func cliCredentials(cmd *cobra.Command) types.Credentials {
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	flags := types.Credentials{
		OpenRouter: flag("openrouter-key"),
		Gemini:     flag("gemini-key"),
		RapidAPI:   flag("rapidapi-key"),
		Anthropic:  flag("anthropic-key"),
		Pexels:     flag("pexels-key"),
	}
	return flags.Merge(cfg.Credentials).Merge(secrets.Credentials(loadedSecrets))
}
