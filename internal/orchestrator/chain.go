// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/provider"
	"github.com/pdiddy/studycraft/pkg/types"
)

// Factory constructs one provider. provider.New satisfies it.
type Factory func(kind, model, key string, opts provider.Options) (provider.Provider, error)

// ChainOptions configures BuildChain.
type ChainOptions struct {
	// Options are passed to every provider; Limiter is overwritten per kind.
	Options provider.Options

	// Limiters supplies one limiter per provider kind. Nil disables limiting.
	Limiters *provider.Limiters

	// Factory builds providers. Nil uses provider.New.
	Factory Factory

	Logger *zap.Logger
}

// BuildChain turns configured chain entries and caller credentials into a
// Chain. An empty entry list uses provider.DefaultChain. Credentials are
// bound per entry; a blank key yields a provider that the chain skips.
func BuildChain(cfg types.GenerateConfig, creds types.Credentials, opts ChainOptions) (Chain, error) {
	entries := cfg.Chain
	if len(entries) == 0 {
		entries = provider.DefaultChain()
	}
	factory := opts.Factory
	if factory == nil {
		factory = provider.New
	}

	chain := Chain{Timeout: cfg.ProviderTimeout, Logger: opts.Logger}
	for i, e := range entries {
		po := opts.Options
		po.Limiter = opts.Limiters.For(e.Provider)
		p, err := factory(e.Provider, e.Model, creds.ForProvider(e.Provider), po)
		if err != nil {
			return Chain{}, eris.Wrapf(err, "orchestrator: chain entry %d", i)
		}
		chain.Providers = append(chain.Providers, p)
	}
	return chain, nil
}

// Prompt builds a provider prompt from the generation settings.
func Prompt(cfg types.GenerateConfig, text string) provider.Prompt {
	return provider.Prompt{Text: text, Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens}
}
