// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package study

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/studycraft/internal/orchestrator"
	"github.com/pdiddy/studycraft/internal/provider"
)

func TestCheckKey(t *testing.T) {
	tests := []struct {
		name     string
		replies  map[string]string
		key      string
		wantOK   bool
		wantSeen []string
	}{
		{
			name:     "first success stops",
			replies:  map[string]string{provider.KindGemini: `{"ok": true}`, provider.KindRapidAPI: `{"ok": true}`},
			key:      "k",
			wantOK:   true,
			wantSeen: []string{provider.KindOpenRouter, provider.KindGemini},
		},
		{
			name:     "mistyped reply is rejected",
			replies:  map[string]string{provider.KindOpenRouter: `{"ok": "sure"}`, provider.KindGemini: `{"ok": true}`},
			key:      "k",
			wantOK:   true,
			wantSeen: []string{provider.KindOpenRouter, provider.KindGemini},
		},
		{
			name:     "all fail",
			replies:  map[string]string{provider.KindAnthropic: "no json here"},
			key:      "k",
			wantSeen: []string{provider.KindOpenRouter, provider.KindGemini, provider.KindRapidAPI, provider.KindAnthropic},
		},
		{
			name:     "blank key makes no calls",
			replies:  map[string]string{provider.KindOpenRouter: `{"ok": true}`},
			key:      "",
			wantSeen: []string{provider.KindOpenRouter, provider.KindGemini, provider.KindRapidAPI, provider.KindAnthropic},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backends{replies: tt.replies}
			checks, ok := CheckKey(context.Background(), tt.key, nil, time.Second, orchestrator.ChainOptions{Factory: b.factory})
			assert.Equal(t, tt.wantOK, ok)

			var seen []string
			for _, c := range checks {
				seen = append(seen, c.Provider)
			}
			assert.Equal(t, tt.wantSeen, seen)
			require.NotEmpty(t, checks)
			last := checks[len(checks)-1]
			assert.Equal(t, tt.wantOK, last.OK)
			if !tt.wantOK {
				assert.NotEmpty(t, last.Error)
			}
			if tt.key == "" {
				assert.Zero(t, b.calls.Load())
			}
		})
	}
}
