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

func withGeminiServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := geminiAPIBase
	geminiAPIBase = ts.URL
	t.Cleanup(func() {
		geminiAPIBase = old
		ts.Close()
	})
	return ts
}

func TestGemini_Complete(t *testing.T) {
	ts := withGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "explain cells", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 2048, req.GenerationConfig.MaxOutputTokens)

		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"notes\":"},{"text":"[\"x\"]}"}]}}]}`))
	})

	g := NewGemini("gemini-1.5-flash", "g-key", Options{HTTPClient: ts.Client()})
	text, err := g.Complete(context.Background(), Prompt{Text: "explain cells", MaxTokens: 2048})
	require.NoError(t, err)
	assert.Equal(t, `{"notes":["x"]}`, text)
}

func TestGemini_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantStatus int
	}{
		{name: "quota", status: http.StatusTooManyRequests, body: `{"error":{"message":"quota exceeded"}}`, wantKind: KindHTTP, wantStatus: 429},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, wantKind: KindAuth, wantStatus: 403},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantKind: KindEmpty},
		{name: "blank text", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, wantKind: KindEmpty},
		{name: "malformed body", status: http.StatusOK, body: `not json`, wantKind: KindHTTP, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withGeminiServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := NewGemini("gemini-pro", "k", Options{HTTPClient: ts.Client()}).
				Complete(context.Background(), Prompt{Text: "x"})

			var perr *Error
			require.True(t, errors.As(err, &perr), "want *Error, got %v", err)
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, tt.wantStatus, perr.StatusCode)
		})
	}
}

func TestGemini_BlankKeySkipsNetwork(t *testing.T) {
	var calls int32
	ts := withGeminiServer(t, func(_ http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := NewGemini("gemini-pro", "", Options{HTTPClient: ts.Client()}).
		Complete(context.Background(), Prompt{Text: "x"})
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
