package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/core"
	"github.com/markdave123-py/Vivid/internal/models"
)

// ThemeKey is the KV record holding the display theme as a JSON string.
const ThemeKey = "vvd-theme"

type PreferenceService struct {
	kv     core.KVStore
	logger *zap.Logger
}

func NewPreferenceService(kv core.KVStore, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{kv: kv, logger: logger}
}

// Theme returns the stored theme, or the default when none or garbage is stored.
func (s *PreferenceService) Theme(ctx context.Context) (models.Theme, error) {
	raw, ok, err := s.kv.Get(ctx, ThemeKey)
	if err != nil {
		return "", fmt.Errorf("load theme: %w", err)
	}
	if !ok {
		return models.DefaultTheme, nil
	}

	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("ignoring malformed theme record", zap.Error(err))
		return models.DefaultTheme, nil
	}
	theme, err := models.ParseTheme(v)
	if err != nil {
		s.logger.Warn("ignoring unknown theme", zap.String("theme", v))
		return models.DefaultTheme, nil
	}
	return theme, nil
}

func (s *PreferenceService) SetTheme(ctx context.Context, theme models.Theme) error {
	raw, err := json.Marshal(string(theme))
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, ThemeKey, raw); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *PreferenceService) ToggleTheme(ctx context.Context) (models.Theme, error) {
	cur, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := cur.Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
