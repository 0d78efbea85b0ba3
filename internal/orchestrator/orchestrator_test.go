// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/studycraft/internal/extract"
	"github.com/pdiddy/studycraft/internal/provider"
	"github.com/pdiddy/studycraft/internal/synth"
	"github.com/pdiddy/studycraft/pkg/types"
)

// fakeProvider returns a canned reply and counts calls.
type fakeProvider struct {
	name  string
	key   string
	reply string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) HasCredential() bool { return f.key != "" }

func (f *fakeProvider) Complete(ctx context.Context, _ provider.Prompt) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", &provider.Error{Kind: provider.KindHTTP, Provider: f.name, Err: ctx.Err()}
		}
	}
	return f.reply, f.err
}

const studyReply = "Sure! ```json\n" + `{"notes":["Cells are small."],"slides":[{"title":"Cells","bulletPoints":["tiny"]}],"quiz":[]}` + "\n```"

var studyReq = Request{Shape: types.ShapeStudyContent, Prompt: provider.Prompt{Text: "cells"}}

func TestGenerateShortCircuits(t *testing.T) {
	p1 := &fakeProvider{name: "p1", key: "k", err: &provider.Error{Kind: provider.KindHTTP, Provider: "p1", StatusCode: 500}}
	p2 := &fakeProvider{name: "p2", key: "k", reply: studyReply}
	p3 := &fakeProvider{name: "p3", key: "k", reply: studyReply}

	res, err := Generate(context.Background(), Chain{Providers: []provider.Provider{p1, p2, p3}}, studyReq, synth.NormalizeStudyContent)
	require.NoError(t, err)
	assert.Equal(t, "p2", res.Provider)
	assert.Equal(t, []string{"Cells are small."}, res.Value.Notes)
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, "p1", res.Attempts[0].Provider)

	assert.EqualValues(t, 1, p1.calls.Load())
	assert.EqualValues(t, 1, p2.calls.Load())
	assert.EqualValues(t, 0, p3.calls.Load(), "providers after a success are never called")
}

func TestGenerateSkipsBlankCredential(t *testing.T) {
	blank := &fakeProvider{name: "blank", reply: studyReply}
	ok := &fakeProvider{name: "ok", key: "k", reply: studyReply}

	res, err := Generate(context.Background(), Chain{Providers: []provider.Provider{blank, ok}}, studyReq, synth.NormalizeStudyContent)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Provider)
	assert.EqualValues(t, 0, blank.calls.Load())
	require.Len(t, res.Attempts, 1)
	assert.True(t, res.Attempts[0].Skipped)
	assert.Equal(t, ReasonMissingCredential, res.Attempts[0].Reason)
}

func TestGenerateTreatsBadPayloadsAsFailures(t *testing.T) {
	prose := &fakeProvider{name: "prose", key: "k", reply: "I cannot help with that."}
	badIndex := &fakeProvider{name: "bad-index", key: "k", reply: `{"notes":["n"],"slides":[{"title":"t","bulletPoints":["b"]}],"quiz":[{"question":"q","options":["a","b","c"],"correctIndex":5}]}`}
	good := &fakeProvider{name: "good", key: "k", reply: studyReply}

	res, err := Generate(context.Background(), Chain{Providers: []provider.Provider{prose, badIndex, good}}, studyReq, synth.NormalizeStudyContent)
	require.NoError(t, err)
	assert.Equal(t, "good", res.Provider)
	require.Len(t, res.Attempts, 2)

	var ee *extract.Error
	assert.True(t, errors.As(res.Attempts[0].Err, &ee))
	var ne *synth.NormalizationError
	assert.True(t, errors.As(res.Attempts[1].Err, &ne))
}

func TestGenerateAllFail(t *testing.T) {
	p1 := &fakeProvider{name: "p1", key: "k", err: &provider.Error{Kind: provider.KindAuth, Provider: "p1", StatusCode: 401}}
	p2 := &fakeProvider{name: "p2", key: "k", err: &provider.Error{Kind: provider.KindEmpty, Provider: "p2"}}
	p3 := &fakeProvider{name: "p3"}

	_, err := Generate(context.Background(), Chain{Providers: []provider.Provider{p1, p2, p3}}, studyReq, synth.NormalizeStudyContent)
	require.Error(t, err)

	var all *AllProvidersFailedError
	require.True(t, errors.As(err, &all))
	require.Len(t, all.Attempts, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{all.Attempts[0].Provider, all.Attempts[1].Provider, all.Attempts[2].Provider})
	assert.Contains(t, err.Error(), "all 3 providers failed for study_content")

	var pe *provider.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, provider.KindAuth, pe.Kind)
}

func TestGenerateEmptyChain(t *testing.T) {
	_, err := Generate(context.Background(), Chain{}, studyReq, synth.NormalizeStudyContent)
	var all *AllProvidersFailedError
	require.True(t, errors.As(err, &all))
	assert.Contains(t, err.Error(), "no providers configured")
}

func TestGeneratePerProviderTimeout(t *testing.T) {
	slow := &fakeProvider{name: "slow", key: "k", delay: time.Second}
	fast := &fakeProvider{name: "fast", key: "k", reply: studyReply}

	start := time.Now()
	res, err := Generate(context.Background(), Chain{Providers: []provider.Provider{slow, fast}, Timeout: 20 * time.Millisecond}, studyReq, synth.NormalizeStudyContent)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "fast", res.Provider)
	require.Len(t, res.Attempts, 1)
	assert.Contains(t, res.Attempts[0].Reason, "timed out")
}

func TestGenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &fakeProvider{name: "p", key: "k", reply: studyReply}

	_, err := Generate(ctx, Chain{Providers: []provider.Provider{p}}, studyReq, synth.NormalizeStudyContent)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var all *AllProvidersFailedError
	assert.True(t, errors.As(err, &all))
	assert.EqualValues(t, 0, p.calls.Load())
}

func TestGenerateLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	chain := Chain{
		Providers: []provider.Provider{
			&fakeProvider{name: "skip"},
			&fakeProvider{name: "fail", key: "k", reply: "nothing"},
			&fakeProvider{name: "win", key: "k", reply: studyReply},
		},
		Logger: zap.New(core),
	}
	_, err := Generate(context.Background(), chain, studyReq, synth.NormalizeStudyContent)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("orchestrator: provider skipped").Len())
	assert.Equal(t, 1, logs.FilterMessage("orchestrator: provider failed").Len())
	succeeded := logs.FilterMessage("orchestrator: provider succeeded").All()
	require.Len(t, succeeded, 1)
	assert.Equal(t, "win", succeeded[0].ContextMap()["provider"])
}

func TestGenerateOtherShapes(t *testing.T) {
	p := &fakeProvider{name: "p", key: "k", reply: `Answer: {"answer": "Because {braces} are fine", "followUpSuggestions": []}`}
	res, err := Generate(context.Background(), Chain{Providers: []provider.Provider{p}}, Request{Shape: types.ShapeTutorAnswer}, synth.NormalizeTutorAnswer)
	require.NoError(t, err)
	assert.Equal(t, "Because {braces} are fine", res.Value.Answer)

	custom := func(raw json.RawMessage) (map[string]any, error) {
		var m map[string]any
		err := json.Unmarshal(raw, &m)
		return m, err
	}
	p2 := &fakeProvider{name: "p2", key: "k", reply: `{"ok": true}`}
	res2, err := Generate(context.Background(), Chain{Providers: []provider.Provider{p2}}, Request{Shape: "ping"}, custom)
	require.NoError(t, err)
	assert.Equal(t, true, res2.Value["ok"])
}

func TestBuildChain(t *testing.T) {
	var built []string
	factory := func(kind, model, key string, _ provider.Options) (provider.Provider, error) {
		built = append(built, kind+"/"+model+"/"+key)
		return &fakeProvider{name: kind, key: key}, nil
	}
	cfg := types.GenerateConfig{
		Chain:           []types.ChainEntry{{Provider: "gemini", Model: "m1"}, {Provider: "openrouter"}},
		ProviderTimeout: 5 * time.Second,
	}
	chain, err := BuildChain(cfg, types.Credentials{Gemini: "g"}, ChainOptions{Factory: factory})
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini/m1/g", "openrouter//"}, built)
	assert.Equal(t, 5*time.Second, chain.Timeout)
	require.Len(t, chain.Providers, 2)
	assert.True(t, chain.Providers[0].HasCredential())
	assert.False(t, chain.Providers[1].HasCredential())

	def, err := BuildChain(types.GenerateConfig{}, types.Credentials{}, ChainOptions{})
	require.NoError(t, err)
	assert.Len(t, def.Providers, len(provider.DefaultChain()))
	assert.Equal(t, DefaultTimeout, def.timeout())

	_, err = BuildChain(types.GenerateConfig{Chain: []types.ChainEntry{{Provider: "nope"}}}, types.Credentials{}, ChainOptions{})
	assert.Error(t, err)
}

func TestGenerateTextUsesParser(t *testing.T) {
	bad := &fakeProvider{name: "bad", key: "k", err: &provider.Error{Kind: provider.KindEmpty, Provider: "bad"}}
	prose := &fakeProvider{name: "prose", key: "k", reply: "Plants make sugar from light."}

	parse := func(text string) (string, error) {
		if text == "" {
			return "", errors.New("empty")
		}
		return "answer: " + text, nil
	}
	res, err := GenerateText(context.Background(), Chain{Providers: []provider.Provider{bad, prose}}, Request{Shape: types.ShapeTutorAnswer}, parse)
	require.NoError(t, err)
	assert.Equal(t, "prose", res.Provider)
	assert.Equal(t, "answer: Plants make sugar from light.", res.Value)
	require.Len(t, res.Attempts, 1)
}
