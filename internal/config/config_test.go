// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/pkg/types"
)

// inTempDir runs the test from an empty directory so no studycraft.yaml
// is found, with every credential variable cleared.
func inTempDir(t *testing.T) string {
	t.Helper()
	for key, env := range credentialEnv {
		t.Setenv(env, "")
		t.Setenv(prefixedEnv(key), "")
	}
	dir := t.TempDir()
	orig, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, filepath.Join("data", "studycraft.db"), cfg.Store.Path)
	assert.Equal(t, 60*time.Second, cfg.Generate.ProviderTimeout)
	assert.InDelta(t, 0.7, cfg.Generate.Temperature, 0.001)
	assert.Equal(t, 4000, cfg.Generate.MaxTokens)
	assert.Empty(t, cfg.Generate.Chain)
	assert.Equal(t, 10*time.Second, cfg.Encyclopedia.SourceTimeout)
	assert.Equal(t, "studycraft/0.1", cfg.Encyclopedia.UserAgent)
	assert.Equal(t, 10, cfg.Media.ImageCount)
	assert.Equal(t, 3, cfg.Media.VideoCount)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, types.Credentials{}, cfg.Credentials, "no built-in credentials")
}

func TestLoadFromYAML(t *testing.T) {
	dir := inTempDir(t)
	yaml := `
log:
  level: debug
  format: json
generate:
  provider_timeout: 15s
  requests_per_minute: 30
  chain:
    - provider: gemini
      model: gemini-1.5-flash
    - provider: openrouter
encyclopedia:
  user_agent: test-agent
  disabled: [wiktionary]
server:
  port: 9090
  allowed_origins: ["https://study.example"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studycraft.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.Generate.ProviderTimeout)
	assert.Equal(t, 30, cfg.Generate.RequestsPerMinute)
	assert.Equal(t, []types.ChainEntry{
		{Provider: "gemini", Model: "gemini-1.5-flash"},
		{Provider: "openrouter"},
	}, cfg.Generate.Chain)
	assert.Equal(t, "test-agent", cfg.Encyclopedia.UserAgent)
	assert.Equal(t, []string{"wiktionary"}, cfg.Encyclopedia.Disabled)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://study.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 4000, cfg.Generate.MaxTokens, "unset keys keep defaults")
}

func TestLoadExplicitFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  path: /tmp/x.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	dir := inTempDir(t)
	yaml := "generate:\n  chain:\n    - provider: gemini\n    - provider: gemeni\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studycraft.yaml"), []byte(yaml), 0o644))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `generate.chain[1]: unknown provider "gemeni"`)
}

func TestLoadEnv(t *testing.T) {
	inTempDir(t)
	t.Setenv("STUDYCRAFT_LOG_LEVEL", "warn")
	t.Setenv("STUDYCRAFT_SERVER_PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "g-env")
	t.Setenv("STUDYCRAFT_CREDENTIALS_PEXELS", "px-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "g-env", cfg.Credentials.Gemini)
	assert.Equal(t, "px-env", cfg.Credentials.Pexels)
	assert.Empty(t, cfg.Credentials.OpenRouter)
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	require.NoError(t, InitLogger(types.LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(types.LogConfig{Level: "error", Format: "json"}))
	assert.False(t, zap.L().Core().Enabled(zap.WarnLevel))

	assert.Error(t, InitLogger(types.LogConfig{Level: "loud"}))
}
