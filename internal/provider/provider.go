// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider adapts external text-generation APIs to one interface.
// Each Complete call issues at most one network request and never retries;
// retrying across providers belongs to the orchestrator.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/pdiddy/studycraft/pkg/types"
)

// Provider kinds in default priority order.
const (
	KindOpenRouter = "openrouter"
	KindGemini     = "gemini"
	KindRapidAPI   = "rapidapi"
	KindAnthropic  = "anthropic"
)

// Provider turns a prompt into completion text.
type Provider interface {
	// Name identifies the provider and model, e.g. "gemini:gemini-1.5-flash".
	Name() string
	// HasCredential reports whether a non-blank key is configured.
	HasCredential() bool
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Prompt is one completion request. A non-positive MaxTokens uses
// DefaultMaxTokens.
type Prompt struct {
	Text        string
	Temperature float64
	MaxTokens   int
}

// DefaultMaxTokens caps completions when Prompt.MaxTokens is unset.
const DefaultMaxTokens = 4000

func (p Prompt) maxTokens() int {
	if p.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return p.MaxTokens
}

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindHTTP  ErrorKind = "http_error"
	KindEmpty ErrorKind = "empty_completion"
	KindAuth  ErrorKind = "auth_error"
)

// ErrMissingCredential is the cause of an auth Error raised before any
// network call because the key is blank.
var ErrMissingCredential = eris.New("missing credential")

// Error is returned by every Provider on failure. StatusCode is zero when
// no HTTP response was received.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "provider %s: %s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// statusError maps a non-2xx status to an Error. 401 and 403 are auth failures.
func statusError(name string, status int, cause error) *Error {
	kind := KindHTTP
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuth
	}
	return &Error{Kind: kind, Provider: name, StatusCode: status, Err: cause}
}

// checkKey fails with an auth Error when key is blank.
func checkKey(name, key string) error {
	if strings.TrimSpace(key) == "" {
		return &Error{Kind: KindAuth, Provider: name, Err: ErrMissingCredential}
	}
	return nil
}

// wait blocks on the limiter, if any.
func wait(ctx context.Context, name string, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return &Error{Kind: KindHTTP, Provider: name, Err: eris.Wrap(err, "rate limiter")}
	}
	return nil
}

// Options are shared construction settings for all backends.
type Options struct {
	// HTTPClient is used for requests. Nil uses a client with a 60s timeout.
	HTTPClient *http.Client

	// Limiter throttles calls. Nil disables throttling.
	Limiter *rate.Limiter

	// Referer is sent as HTTP-Referer to OpenRouter.
	Referer string
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// defaultModels lists the models tried per kind, best first.
var defaultModels = map[string][]string{
	KindOpenRouter: {
		"arcee-ai/trinity-large-preview:free",
		"google/gemini-2.0-flash-exp:free",
		"meta-llama/llama-3.2-3b-instruct:free",
		"qwen/qwen-2-7b-instruct:free",
	},
	KindGemini:    {"gemini-2.0-flash-exp", "gemini-1.5-flash", "gemini-pro"},
	KindRapidAPI:  {"gpt-4o-mini"},
	KindAnthropic: {"claude-haiku-4-5-20251001"},
}

// Kinds returns the known provider kinds in default priority order.
func Kinds() []string {
	return []string{KindOpenRouter, KindGemini, KindRapidAPI, KindAnthropic}
}

// DefaultModels returns the models known for kind, best first.
func DefaultModels(kind string) []string {
	return append([]string(nil), defaultModels[kind]...)
}

// DefaultChain is the built-in priority order: two free OpenRouter models,
// two Gemini models, RapidAPI, then Anthropic.
func DefaultChain() []types.ChainEntry {
	return []types.ChainEntry{
		{Provider: KindOpenRouter, Model: defaultModels[KindOpenRouter][0]},
		{Provider: KindOpenRouter, Model: defaultModels[KindOpenRouter][1]},
		{Provider: KindGemini, Model: defaultModels[KindGemini][0]},
		{Provider: KindGemini, Model: defaultModels[KindGemini][1]},
		{Provider: KindRapidAPI, Model: defaultModels[KindRapidAPI][0]},
		{Provider: KindAnthropic, Model: defaultModels[KindAnthropic][0]},
	}
}

// New constructs a backend by kind. An empty model selects the kind's first
// default model. A blank key is accepted; the provider then reports
// HasCredential false and fails Complete without a network call.
func New(kind, model, key string, opts Options) (Provider, error) {
	if model == "" {
		models := defaultModels[kind]
		if len(models) > 0 {
			model = models[0]
		}
	}
	switch kind {
	case KindOpenRouter:
		return NewOpenRouter(model, key, opts), nil
	case KindGemini:
		return NewGemini(model, key, opts), nil
	case KindRapidAPI:
		return NewRapidAPI(model, key, opts), nil
	case KindAnthropic:
		return NewAnthropic(model, key, opts), nil
	}
	return nil, eris.Errorf("provider: unknown kind %q", kind)
}

// Limiters hands out one rate.Limiter per provider kind so that chain
// entries sharing a backend share its quota.
type Limiters struct {
	mu    sync.Mutex
	every time.Duration
	byKey map[string]*rate.Limiter
}

// NewLimiters returns limiters allowing perMinute calls per kind. Zero or
// negative disables limiting.
func NewLimiters(perMinute int) *Limiters {
	l := &Limiters{byKey: make(map[string]*rate.Limiter)}
	if perMinute > 0 {
		l.every = time.Minute / time.Duration(perMinute)
	}
	return l
}

// For returns the limiter for kind, or nil when limiting is disabled.
func (l *Limiters) For(kind string) *rate.Limiter {
	if l == nil || l.every == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.byKey[kind]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.every), 1)
		l.byKey[kind] = lim
	}
	return lim
}
