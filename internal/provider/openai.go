// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Base URLs for the OpenAI-compatible backends. Package-level vars for
// test substitution.
var (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	rapidAPIBaseURL   = "https://gpt-4o-mini2.p.rapidapi.com/v1"
)

const (
	rapidAPIHost = "gpt-4o-mini2.p.rapidapi.com"
	appTitle     = "Study Craft AI"
)

// ChatBackend calls an OpenAI-compatible chat-completions endpoint.
// OpenRouter authenticates with a bearer token; RapidAPI with its own
// headers, added by a wrapping transport.
type ChatBackend struct {
	kind    string
	model   string
	key     string
	client  *openai.Client
	limiter *rate.Limiter
}

// NewOpenRouter returns a backend for the OpenRouter API.
func NewOpenRouter(model, key string, opts Options) *ChatBackend {
	headers := map[string]string{"X-Title": appTitle}
	if opts.Referer != "" {
		headers["HTTP-Referer"] = opts.Referer
	}
	return newChatBackend(KindOpenRouter, openRouterBaseURL, model, key, headers, opts)
}

// NewRapidAPI returns a backend for the RapidAPI-hosted GPT-4o mini endpoint.
func NewRapidAPI(model, key string, opts Options) *ChatBackend {
	headers := map[string]string{
		"x-rapidapi-key":  key,
		"x-rapidapi-host": rapidAPIHost,
	}
	return newChatBackend(KindRapidAPI, rapidAPIBaseURL, model, key, headers, opts)
}

func newChatBackend(kind, baseURL, model, key string, headers map[string]string, opts Options) *ChatBackend {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = withHeaders(opts.httpClient(), headers)
	return &ChatBackend{
		kind:    kind,
		model:   model,
		key:     key,
		client:  openai.NewClientWithConfig(cfg),
		limiter: opts.Limiter,
	}
}

// Name returns "<kind>:<model>".
func (b *ChatBackend) Name() string { return b.kind + ":" + b.model }

// HasCredential reports whether the key is non-blank.
func (b *ChatBackend) HasCredential() bool { return strings.TrimSpace(b.key) != "" }

// Complete sends the prompt as a single user message.
func (b *ChatBackend) Complete(ctx context.Context, p Prompt) (string, error) {
	name := b.Name()
	if err := checkKey(name, b.key); err != nil {
		return "", err
	}
	if err := wait(ctx, name, b.limiter); err != nil {
		return "", err
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: p.Text},
		},
		Temperature: float32(p.Temperature),
		MaxTokens:   p.maxTokens(),
	})
	if err != nil {
		return "", classifyOpenAIError(name, err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindEmpty, Provider: name}
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: KindEmpty, Provider: name}
	}
	return text, nil
}

// classifyOpenAIError recovers the HTTP status from go-openai's error types.
func classifyOpenAIError(name string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(name, apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(name, reqErr.HTTPStatusCode, err)
	}
	return &Error{Kind: KindHTTP, Provider: name, Err: err}
}

// headerTransport sets fixed headers on every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// withHeaders returns a shallow copy of c whose transport adds headers.
func withHeaders(c *http.Client, headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return c
	}
	cp := *c
	base := cp.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	cp.Transport = &headerTransport{base: base, headers: headers}
	return &cp
}
