// Package translate provides the text translation backends used when
// ingesting recipes in one language and storing them in both.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fooddb/internal/config"
	"fooddb/internal/platform/gemini"
	"fooddb/internal/platform/localllm"
)

// ErrEmptyTranslation is returned when a backend answers with no text.
var ErrEmptyTranslation = errors.New("empty translation")

// Translator translates text between two language codes such as "he" and "en".
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Func adapts a function to the Translator interface.
type Func func(ctx context.Context, text, from, to string) (string, error)

func (f Func) Translate(ctx context.Context, text, from, to string) (string, error) {
	return f(ctx, text, from, to)
}

// Noop returns text unchanged.
type Noop struct{}

func (Noop) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

// OrOriginal translates text and falls back to the original on any failure.
// Empty text and same-language requests are returned as is.
func OrOriginal(ctx context.Context, t Translator, text, from, to string) string {
	if t == nil || strings.TrimSpace(text) == "" || from == to {
		return text
	}
	out, err := t.Translate(ctx, text, from, to)
	if err != nil || strings.TrimSpace(out) == "" {
		return text
	}
	return out
}

// New builds the translator selected by cfg, wrapped in a redis cache when
// caching is enabled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Translator, error) {
	var t Translator
	switch cfg.Translate.Provider {
	case "google", "":
		t = NewGoogleClient(cfg.Translate.BaseURL, cfg.Translate.Timeout)
	case "gemini":
		c, err := gemini.NewClient(ctx, cfg.Translate.GeminiAPIKey, cfg.Translate.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		t = c
	case "local":
		t = localllm.NewClient(cfg.Translate.LocalURL, cfg.Translate.LocalModel, cfg.Translate.Timeout)
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown translate provider %q", cfg.Translate.Provider)
	}

	if !cfg.Cache.Enabled {
		return t, nil
	}
	cache, err := NewRedisCache(ctx, t, cfg.Cache.RedisAddr, cfg.Cache.TTL, log)
	if err != nil {
		log.Warn("translation cache unavailable, continuing without it", zap.Error(err))
		return t, nil
	}
	return cache, nil
}
