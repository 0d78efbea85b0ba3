// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// geminiAPIBase is the Gemini models endpoint. Package-level var for test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 512

// GeminiBackend calls the Gemini generateContent REST endpoint.
type GeminiBackend struct {
	model   string
	key     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewGemini returns a backend for the Gemini API.
func NewGemini(model, key string, opts Options) *GeminiBackend {
	return &GeminiBackend{
		model:   model,
		key:     key,
		client:  opts.httpClient(),
		limiter: opts.Limiter,
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Name returns "gemini:<model>".
func (g *GeminiBackend) Name() string { return KindGemini + ":" + g.model }

// HasCredential reports whether the key is non-blank.
func (g *GeminiBackend) HasCredential() bool { return strings.TrimSpace(g.key) != "" }

// Complete posts the prompt and returns the text parts of the first candidate.
func (g *GeminiBackend) Complete(ctx context.Context, p Prompt) (string, error) {
	name := g.Name()
	if err := checkKey(name, g.key); err != nil {
		return "", err
	}
	if err := wait(ctx, name, g.limiter); err != nil {
		return "", err
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: p.Text}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     p.Temperature,
			MaxOutputTokens: p.maxTokens(),
		},
	})
	if err != nil {
		return "", &Error{Kind: KindHTTP, Provider: name, Err: eris.Wrap(err, "marshaling request")}
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent", geminiAPIBase, url.PathEscape(g.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindHTTP, Provider: name, Err: eris.Wrap(err, "creating request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.key)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &Error{Kind: KindHTTP, Provider: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", statusError(name, resp.StatusCode, eris.Errorf("Gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", &Error{Kind: KindHTTP, Provider: name, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "decoding Gemini response")}
	}
	if len(gr.Candidates) == 0 {
		return "", &Error{Kind: KindEmpty, Provider: name}
	}

	var text strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &Error{Kind: KindEmpty, Provider: name}
	}
	return text.String(), nil
}
