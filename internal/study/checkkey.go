// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/extract"
	"github.com/pdiddy/studycraft/internal/orchestrator"
	"github.com/pdiddy/studycraft/internal/prompt"
	"github.com/pdiddy/studycraft/internal/provider"
)

// KeyCheck is the outcome of trying one credential against one provider.
type KeyCheck struct {
	Provider string        `json:"provider" yaml:"provider"`
	OK       bool          `json:"ok" yaml:"ok"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// CheckKey sends a minimal prompt with key to each provider kind in turn
// and stops at the first that answers with JSON. It reports whether any
// provider accepted the key. opts.Factory defaults to provider.New.
func CheckKey(ctx context.Context, key string, kinds []string, timeout time.Duration, opts orchestrator.ChainOptions) ([]KeyCheck, bool) {
	if len(kinds) == 0 {
		kinds = provider.Kinds()
	}
	if timeout <= 0 {
		timeout = orchestrator.DefaultTimeout
	}
	factory := opts.Factory
	if factory == nil {
		factory = provider.New
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var checks []KeyCheck
	for _, kind := range kinds {
		start := time.Now()
		err := ping(ctx, factory, kind, key, timeout, opts.Options)
		c := KeyCheck{Provider: kind, OK: err == nil, Elapsed: time.Since(start)}
		if err != nil {
			c.Error = err.Error()
			log.Debug("study: key check failed", zap.String("provider", kind), zap.Error(err))
		}
		checks = append(checks, c)
		if c.OK {
			return checks, true
		}
		if ctx.Err() != nil {
			break
		}
	}
	return checks, false
}

func ping(ctx context.Context, factory orchestrator.Factory, kind, key string, timeout time.Duration, opts provider.Options) error {
	p, err := factory(kind, "", key, opts)
	if err != nil {
		return err
	}
	if !p.HasCredential() {
		return eris.Wrap(provider.ErrMissingCredential, kind)
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	text, err := p.Complete(pctx, provider.Prompt{Text: prompt.Ping, MaxTokens: 50})
	if err != nil {
		return err
	}
	var reply struct {
		OK bool `json:"ok"`
	}
	return extract.Decode(text, &reply)
}
