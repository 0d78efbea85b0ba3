// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// anthropicBaseURL overrides the SDK endpoint when non-empty. Package-level
// var for test substitution.
var anthropicBaseURL = ""

// ClaudeBackend calls the Anthropic Messages API through the official SDK.
// SDK-level retries are disabled.
type ClaudeBackend struct {
	model   string
	key     string
	client  sdk.Client
	limiter *rate.Limiter
}

// NewAnthropic returns a backend for the Anthropic API.
func NewAnthropic(model, key string, opts Options) *ClaudeBackend {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
		option.WithHTTPClient(opts.httpClient()),
	}
	if anthropicBaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(anthropicBaseURL))
	}
	return &ClaudeBackend{
		model:   model,
		key:     key,
		client:  sdk.NewClient(reqOpts...),
		limiter: opts.Limiter,
	}
}

// Name returns "anthropic:<model>".
func (c *ClaudeBackend) Name() string { return KindAnthropic + ":" + c.model }

// HasCredential reports whether the key is non-blank.
func (c *ClaudeBackend) HasCredential() bool { return strings.TrimSpace(c.key) != "" }

// Complete sends the prompt as one user message and joins the text blocks.
func (c *ClaudeBackend) Complete(ctx context.Context, p Prompt) (string, error) {
	name := c.Name()
	if err := checkKey(name, c.key); err != nil {
		return "", err
	}
	if err := wait(ctx, name, c.limiter); err != nil {
		return "", err
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(p.maxTokens()),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(p.Text))},
		Temperature: sdk.Float(p.Temperature),
	})
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", statusError(name, apiErr.StatusCode, err)
		}
		return "", &Error{Kind: KindHTTP, Provider: name, Err: err}
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &Error{Kind: KindEmpty, Provider: name}
	}
	return text.String(), nil
}
