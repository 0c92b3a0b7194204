package view

import (
	"sync"

	"riverside-client/internal/common/logger"
)

// BasicElement is a plain in-memory Element. It is the default building
// block for headless runs; tests usually prefer the richer viewfakes.
type BasicElement struct {
	mu      sync.Mutex
	text    string
	value   string
	classes map[string]struct{}
	enabled bool
}

func NewBasicElement() *BasicElement {
	return &BasicElement{classes: make(map[string]struct{}), enabled: true}
}

func (e *BasicElement) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

func (e *BasicElement) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

func (e *BasicElement) AddClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes[name] = struct{}{}
}

func (e *BasicElement) RemoveClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.classes, name)
}

func (e *BasicElement) HasClass(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.classes[name]
	return ok
}

func (e *BasicElement) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

func (e *BasicElement) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *BasicElement) SetValue(value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.value = value
}

func (e *BasicElement) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

func (e *BasicElement) Focus() {}

// BasicLocation is an in-memory fragment holder.
type BasicLocation struct {
	mu       sync.Mutex
	fragment string
}

func NewBasicLocation() *BasicLocation { return &BasicLocation{} }

func (l *BasicLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

func (l *BasicLocation) SetFragment(fragment string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = fragment
}

// BasicViewport ignores whole-surface operations; a headless run has no
// scroll position or mobile menu.
type BasicViewport struct{}

func (BasicViewport) ScrollToTop()     {}
func (BasicViewport) CloseMobileMenu() {}

// BasicModal is an in-memory open/closed flag.
type BasicModal struct {
	mu   sync.Mutex
	open bool
}

func NewBasicModal() *BasicModal { return &BasicModal{} }

func (m *BasicModal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
}

func (m *BasicModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
}

func (m *BasicModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// LogNotifier writes toasts to the structured log. Headless runs have
// nowhere else to show them.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(message, kind string) {
	n.Log.Info("notification", map[string]interface{}{
		"message": message,
		"kind":    kind,
	})
}
