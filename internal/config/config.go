// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the studycraft configuration and sets up logging.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/studycraft/internal/provider"
	"github.com/pdiddy/studycraft/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. STUDYCRAFT_LOG_LEVEL.
const EnvPrefix = "STUDYCRAFT"

// credentialEnv lists the conventional variable names accepted for each
// credential besides the prefixed form.
var credentialEnv = map[string]string{
	"credentials.openrouter": "OPENROUTER_API_KEY",
	"credentials.gemini":     "GEMINI_API_KEY",
	"credentials.rapidapi":   "RAPIDAPI_KEY",
	"credentials.anthropic":  "ANTHROPIC_API_KEY",
	"credentials.pexels":     "PEXELS_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("store.path", filepath.Join("data", "studycraft.db"))
	v.SetDefault("generate.provider_timeout", 60*time.Second)
	v.SetDefault("generate.temperature", 0.7)
	v.SetDefault("generate.max_tokens", 4000)
	v.SetDefault("generate.requests_per_minute", 0)
	v.SetDefault("encyclopedia.timeout", 30*time.Second)
	v.SetDefault("encyclopedia.user_agent", "studycraft/0.1")
	v.SetDefault("encyclopedia.source_timeout", 10*time.Second)
	v.SetDefault("media.timeout", 30*time.Second)
	v.SetDefault("media.user_agent", "studycraft/0.1")
	v.SetDefault("media.image_count", 10)
	v.SetDefault("media.video_count", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	for key := range credentialEnv {
		v.SetDefault(key, "")
	}
}

// Load reads configuration from cfgFile, or from studycraft.yaml in the
// working directory or ~/.config/studycraft/ when cfgFile is empty, then
// applies STUDYCRAFT_* environment overrides. A missing config file is
// not an error.
func Load(cfgFile string) (types.Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("studycraft")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "studycraft"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		if err := v.BindEnv(key, prefixedEnv(key), env); err != nil {
			return types.Config{}, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, eris.Wrap(err, "config: read file")
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, eris.Wrap(err, "config: unmarshal")
	}
	if err := validateChain(cfg.Generate.Chain); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// prefixedEnv returns the STUDYCRAFT_* variable name for key.
func prefixedEnv(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func validateChain(entries []types.ChainEntry) error {
	kinds := provider.Kinds()
	for i, e := range entries {
		if !slices.Contains(kinds, e.Provider) {
			return eris.Errorf("config: generate.chain[%d]: unknown provider %q (want one of %s)",
				i, e.Provider, strings.Join(kinds, ", "))
		}
	}
	return nil
}

// InitLogger builds the global zap logger. Format "console" selects the
// development encoder; anything else logs JSON.
func InitLogger(cfg types.LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)
	return nil
}
