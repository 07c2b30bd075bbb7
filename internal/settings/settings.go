// Package settings keeps per-visitor display preferences in the session.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	scs "github.com/alexedwards/scs/v2"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

const (
	DefaultTheme    = ThemeDark
	DefaultLanguage = "tr"

	themeKey    = "portfolio-theme"
	languageKey = "portfolio-language"
)

var ErrInvalid = errors.New("invalid settings")

var supportedLanguages = map[string]bool{"tr": true, "en": true}

type Settings struct {
	Theme    Theme  `json:"theme"`
	Language string `json:"language"`
}

func Defaults() Settings {
	return Settings{Theme: DefaultTheme, Language: DefaultLanguage}
}

// Validate normalizes s in place. Empty fields are left for Merge to fill.
func (s *Settings) Validate() error {
	s.Theme = Theme(strings.ToLower(strings.TrimSpace(string(s.Theme))))
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))
	if s.Theme != "" && s.Theme != ThemeDark && s.Theme != ThemeLight {
		return fmt.Errorf("%w: theme must be dark or light", ErrInvalid)
	}
	if s.Language != "" && !supportedLanguages[s.Language] {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalid, s.Language)
	}
	return nil
}

// Merge overlays the non-empty fields of patch.
func (s Settings) Merge(patch Settings) Settings {
	if patch.Theme != "" {
		s.Theme = patch.Theme
	}
	if patch.Language != "" {
		s.Language = patch.Language
	}
	return s
}

// Store loads and saves settings explicitly; nothing is written on read.
type Store struct {
	sess *scs.SessionManager
}

func NewStore(sess *scs.SessionManager) *Store {
	return &Store{sess: sess}
}

func (st *Store) Load(ctx context.Context) Settings {
	s := Defaults()
	if v := st.sess.GetString(ctx, themeKey); v != "" {
		s.Theme = Theme(v)
	}
	if v := st.sess.GetString(ctx, languageKey); v != "" {
		s.Language = v
	}
	return s
}

func (st *Store) Save(ctx context.Context, s Settings) {
	st.sess.Put(ctx, themeKey, string(s.Theme))
	st.sess.Put(ctx, languageKey, s.Language)
}
