// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator runs one generation request down an ordered chain of
// providers. Providers are tried one at a time; the first reply that
// extracts and normalizes wins and the rest are never called.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/internal/extract"
	"github.com/pdiddy/studycraft/internal/provider"
	"github.com/pdiddy/studycraft/pkg/types"
)

// DefaultTimeout bounds one provider attempt when Chain.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// ReasonMissingCredential is the attempt reason for a skipped provider.
const ReasonMissingCredential = "missing credential"

// Chain is an ordered provider list with its per-attempt deadline.
type Chain struct {
	Providers []provider.Provider
	Timeout   time.Duration
	Logger    *zap.Logger
}

func (c Chain) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Chain) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// Request is one generation request.
type Request struct {
	Shape  types.Shape
	Prompt provider.Prompt
}

// Normalizer validates an extracted JSON object for one shape.
type Normalizer[T any] func(json.RawMessage) (T, error)

// Attempt records the outcome of one failed or skipped provider.
type Attempt struct {
	Provider string `json:"provider" yaml:"provider"`
	Reason   string `json:"reason" yaml:"reason"`
	Skipped  bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Err      error  `json:"-" yaml:"-"`
}

// Result is a successful generation and the failures that preceded it.
type Result[T any] struct {
	Value    T
	Provider string
	Attempts []Attempt
}

// AllProvidersFailedError reports that no provider in the chain produced a
// usable result.
type AllProvidersFailedError struct {
	Shape    types.Shape
	Attempts []Attempt
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("orchestrator: no providers configured for %s", e.Shape)
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Provider + ": " + a.Reason
	}
	return fmt.Sprintf("orchestrator: all %d providers failed for %s: %s", len(e.Attempts), e.Shape, strings.Join(parts, "; "))
}

// Unwrap exposes the per-attempt causes to errors.Is and errors.As.
func (e *AllProvidersFailedError) Unwrap() []error {
	var errs []error
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Parser turns a provider's raw completion text into a value.
type Parser[T any] func(text string) (T, error)

// Generate tries each provider in chain order. Providers without a
// credential are skipped with no network call. A provider error, an
// extraction error, or a normalization error is recorded and the next
// provider is tried. If ctx is cancelled the chain stops and the returned
// error joins ctx.Err() with the aggregate failure.
func Generate[T any](ctx context.Context, chain Chain, req Request, normalize Normalizer[T]) (Result[T], error) {
	return GenerateText(ctx, chain, req, func(text string) (T, error) {
		raw, err := extract.ExtractJSON(text)
		if err != nil {
			var zero T
			return zero, err
		}
		return normalize(raw)
	})
}

// GenerateText is Generate with a caller-supplied parser in place of JSON
// extraction and normalization.
func GenerateText[T any](ctx context.Context, chain Chain, req Request, parse Parser[T]) (Result[T], error) {
	log := chain.logger().With(zap.String("shape", string(req.Shape)))
	var attempts []Attempt

	for _, p := range chain.Providers {
		if err := ctx.Err(); err != nil {
			return Result[T]{Attempts: attempts}, errors.Join(err, &AllProvidersFailedError{Shape: req.Shape, Attempts: attempts})
		}
		if !p.HasCredential() {
			log.Debug("orchestrator: provider skipped", zap.String("provider", p.Name()), zap.String("reason", ReasonMissingCredential))
			attempts = append(attempts, Attempt{
				Provider: p.Name(),
				Reason:   ReasonMissingCredential,
				Skipped:  true,
				Err:      &provider.Error{Kind: provider.KindAuth, Provider: p.Name(), Err: provider.ErrMissingCredential},
			})
			continue
		}

		start := time.Now()
		value, err := attempt(ctx, chain.timeout(), p, req, parse)
		if err != nil {
			log.Warn("orchestrator: provider failed",
				zap.String("provider", p.Name()),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			attempts = append(attempts, Attempt{Provider: p.Name(), Reason: err.Error(), Err: err})
			continue
		}

		log.Info("orchestrator: provider succeeded",
			zap.String("provider", p.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Int("failed_before", len(attempts)))
		return Result[T]{Value: value, Provider: p.Name(), Attempts: attempts}, nil
	}

	failure := &AllProvidersFailedError{Shape: req.Shape, Attempts: attempts}
	if err := ctx.Err(); err != nil {
		return Result[T]{Attempts: attempts}, errors.Join(err, failure)
	}
	return Result[T]{Attempts: attempts}, failure
}

// attempt runs one provider under its own deadline and parses the reply.
func attempt[T any](ctx context.Context, timeout time.Duration, p provider.Provider, req Request, parse Parser[T]) (T, error) {
	var zero T
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := p.Complete(actx, req.Prompt)
	if err != nil {
		if errors.Is(actx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, eris.Wrapf(err, "timed out after %s", timeout)
		}
		return zero, err
	}
	return parse(text)
}
