// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings loads and saves the persisted user preferences.
package settings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/pdiddy/studycraft/internal/store"
	"github.com/pdiddy/studycraft/pkg/types"
)

// Key is the store key of the settings record.
const Key = "settings"

// ErrCorrupt is returned by Load when the stored record cannot be decoded.
// The settings returned alongside it are the defaults.
var ErrCorrupt = errors.New("settings: corrupt record")

// KV is the subset of the store settings needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Defaults returns the settings used when nothing is stored. No credential
// has a default.
func Defaults() types.Settings {
	return types.Settings{
		Mode:              types.ModeAI,
		AutoFetchMedia:    true,
		DefaultDifficulty: types.Intermediate,
	}
}

// Load returns the stored settings decoded over Defaults, so fields that
// are missing from the stored record keep their defaults. Invalid mode or
// difficulty values are reset to the default.
func Load(ctx context.Context, kv KV) (types.Settings, error) {
	s := Defaults()
	raw, err := kv.Get(ctx, Key)
	if errors.Is(err, store.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, eris.Wrap(err, "settings: load")
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return Defaults(), eris.Wrapf(ErrCorrupt, "settings: decode: %v", err)
	}
	return sanitize(s), nil
}

// Validate reports an invalid mode or default difficulty.
func Validate(s types.Settings) error {
	if s.Mode != types.ModeAI && s.Mode != types.ModeOffline {
		return eris.Errorf("settings: invalid mode %q", s.Mode)
	}
	if !s.DefaultDifficulty.Valid() {
		return eris.Errorf("settings: invalid default difficulty %q", s.DefaultDifficulty)
	}
	return nil
}

// Save validates and stores s.
func Save(ctx context.Context, kv KV, s types.Settings) error {
	if err := Validate(s); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "settings: encode")
	}
	return eris.Wrap(kv.Put(ctx, Key, raw), "settings: save")
}

func sanitize(s types.Settings) types.Settings {
	def := Defaults()
	if s.Mode != types.ModeAI && s.Mode != types.ModeOffline {
		s.Mode = def.Mode
	}
	if !s.DefaultDifficulty.Valid() {
		s.DefaultDifficulty = def.DefaultDifficulty
	}
	return s
}

// Set applies one named field to s. Names match the persisted JSON keys.
func Set(s types.Settings, name, value string) (types.Settings, error) {
	switch name {
	case "openrouter_api_key":
		s.OpenRouter = value
	case "gemini_api_key":
		s.Gemini = value
	case "rapidapi_key":
		s.RapidAPI = value
	case "anthropic_api_key":
		s.Anthropic = value
	case "pexels_api_key":
		s.Pexels = value
	case "learning_mode":
		s.Mode = types.Mode(value)
	case "auto_fetch_images":
		switch value {
		case "true", "1", "yes", "on":
			s.AutoFetchMedia = true
		case "false", "0", "no", "off":
			s.AutoFetchMedia = false
		default:
			return s, eris.Errorf("settings: %s must be true or false, got %q", name, value)
		}
	case "default_difficulty":
		s.DefaultDifficulty = types.Difficulty(value)
	default:
		return s, eris.Errorf("settings: unknown field %q", name)
	}
	return s, nil
}

// Redacted returns s with every credential masked for display.
func Redacted(s types.Settings) types.Settings {
	mask := func(k string) string {
		if k == "" {
			return ""
		}
		if len(k) <= 8 {
			return "****"
		}
		return k[:4] + "****" + k[len(k)-4:]
	}
	s.OpenRouter = mask(s.OpenRouter)
	s.Gemini = mask(s.Gemini)
	s.RapidAPI = mask(s.RapidAPI)
	s.Anthropic = mask(s.Anthropic)
	s.Pexels = mask(s.Pexels)
	return s
}
