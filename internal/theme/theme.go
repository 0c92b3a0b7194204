// Package theme persists and applies the light/dark preference.
package theme

import (
	"context"

	"riverside-client/internal/common/config"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/storage"
	"riverside-client/internal/view"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	classLight = "light-theme"

	// Toggle glyphs: sun for the light theme, crescent moon for dark.
	iconLight = "☀"
	iconDark  = "\U0001F319"
)

// Manager applies the theme to the root surface element and keeps the
// stored preference in sync. Dark is the default.
type Manager struct {
	backend storage.Store
	cfg     config.SessionConfig
	log     logger.Logger
	root    view.Element
	toggle  view.Element
	current string
}

func NewManager(backend storage.Store, cfg config.SessionConfig, log logger.Logger, root, toggle view.Element) *Manager {
	return &Manager{
		backend: backend,
		cfg:     cfg,
		log:     log.WithFields(map[string]interface{}{"component": "theme"}),
		root:    root,
		toggle:  toggle,
		current: ThemeDark,
	}
}

// Init loads the stored preference and applies it. Any read problem, or an
// unknown stored value, falls back to dark.
func (m *Manager) Init(ctx context.Context) {
	stored, err := m.backend.Get(ctx, m.cfg.ThemeKey)
	if err != nil {
		if err != storage.ErrNotFound {
			m.log.WithError(err).Warn("theme read failed, using dark", nil)
		}
		stored = ThemeDark
	}
	if stored != ThemeLight {
		stored = ThemeDark
	}
	m.apply(stored)
}

// Toggle flips the theme and persists the new preference. A failed write
// is logged only; the visible theme still flips.
func (m *Manager) Toggle(ctx context.Context) {
	next := ThemeLight
	if m.current == ThemeLight {
		next = ThemeDark
	}
	m.apply(next)

	if err := m.backend.Set(ctx, m.cfg.ThemeKey, next); err != nil {
		m.log.WithError(err).Warn("could not persist theme preference", nil)
	}
}

// Current reports the applied theme.
func (m *Manager) Current() string {
	return m.current
}

func (m *Manager) apply(theme string) {
	m.current = theme
	if theme == ThemeLight {
		m.root.AddClass(classLight)
		m.toggle.SetText(iconLight)
	} else {
		m.root.RemoveClass(classLight)
		m.toggle.SetText(iconDark)
	}
	m.log.Debug("theme applied", map[string]interface{}{"theme": theme})
}
