package models

import (
	"fmt"
	"strings"
)

// Profile describes a recurring person so the model can identify them by name.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Pronouns    string `json:"pronouns,omitempty"`
	Description string `json:"description"`
}

// DetailLevel controls how verbose the requested description is.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailAverage  DetailLevel = "average"
	DetailDetailed DetailLevel = "detailed"
)

// DefaultDetailLevel is active for every fresh session.
const DefaultDetailLevel = DetailAverage

// ParseDetailLevel accepts the three known levels, case-insensitively.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch lvl := DetailLevel(strings.ToLower(strings.TrimSpace(s))); lvl {
	case DetailBrief, DetailAverage, DetailDetailed:
		return lvl, nil
	default:
		return "", fmt.Errorf("unknown detail level %q", s)
	}
}

// Role attributes a Turn to one side of the conversation.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message exchanged with the remote model.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Theme is the persisted presentation preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when no preference was stored yet.
const DefaultTheme = ThemeDark

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}
