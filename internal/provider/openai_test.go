// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatCompletion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"choices": []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestOpenRouter_Complete(t *testing.T) {
	var gotBody struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Study Craft AI", r.Header.Get("X-Title"))
		assert.Equal(t, "http://localhost:5173", r.Header.Get("HTTP-Referer"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion(`{"notes":["a"]}`)))
	}))
	defer ts.Close()

	old := openRouterBaseURL
	openRouterBaseURL = ts.URL
	defer func() { openRouterBaseURL = old }()

	p := NewOpenRouter("some/model:free", "or-key", Options{HTTPClient: ts.Client(), Referer: "http://localhost:5173"})
	text, err := p.Complete(context.Background(), Prompt{Text: "Topic: cells", Temperature: 0.7, MaxTokens: 4000})
	require.NoError(t, err)

	assert.Equal(t, `{"notes":["a"]}`, text)
	assert.Equal(t, "openrouter:some/model:free", p.Name())
	assert.Equal(t, "some/model:free", gotBody.Model)
	assert.Equal(t, 4000, gotBody.MaxTokens)
	assert.InDelta(t, 0.7, gotBody.Temperature, 0.001)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "Topic: cells", gotBody.Messages[0].Content)
}

func TestRapidAPI_Headers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rapid-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, rapidAPIHost, r.Header.Get("x-rapidapi-host"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion("hello")))
	}))
	defer ts.Close()

	old := rapidAPIBaseURL
	rapidAPIBaseURL = ts.URL
	defer func() { rapidAPIBaseURL = old }()

	p := NewRapidAPI("gpt-4o-mini", "rapid-key", Options{HTTPClient: ts.Client()})
	text, err := p.Complete(context.Background(), Prompt{Text: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestChatBackend_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
	}{
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"message":"boom","type":"server_error"}}`,
			wantKind:   KindHTTP,
			wantStatus: 500,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error":{"message":"bad key","type":"auth"}}`,
			wantKind:   KindAuth,
			wantStatus: 401,
		},
		{
			name:       "quota exhausted with non-json body",
			status:     http.StatusTooManyRequests,
			body:       `slow down`,
			wantKind:   KindHTTP,
			wantStatus: 429,
		},
		{
			name:     "empty completion",
			status:   http.StatusOK,
			body:     chatCompletion("   "),
			wantKind: KindEmpty,
		},
		{
			name:     "no choices",
			status:   http.StatusOK,
			body:     `{"id":"x","choices":[]}`,
			wantKind: KindEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			old := openRouterBaseURL
			openRouterBaseURL = ts.URL
			defer func() { openRouterBaseURL = old }()

			p := NewOpenRouter("m", "k", Options{HTTPClient: ts.Client()})
			_, err := p.Complete(context.Background(), Prompt{Text: "x"})

			var perr *Error
			require.True(t, errors.As(err, &perr), "want *Error, got %v", err)
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, tt.wantStatus, perr.StatusCode)
			assert.Equal(t, "openrouter:m", perr.Provider)
		})
	}
}

func TestChatBackend_BlankKeySkipsNetwork(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	old := openRouterBaseURL
	openRouterBaseURL = ts.URL
	defer func() { openRouterBaseURL = old }()

	p := NewOpenRouter("m", "  ", Options{HTTPClient: ts.Client()})
	assert.False(t, p.HasCredential())

	_, err := p.Complete(context.Background(), Prompt{Text: "x"})
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindAuth, perr.Kind)
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
