// Package view abstracts the rendering surface. The controller only ever
// talks to these interfaces, so the same state machine drives a real UI, a
// headless run or a test double.
package view

// Element is a mutable piece of the rendered surface: a page container, a
// button, a label or an input field.
type Element interface {
	// SetText replaces the element's visible text.
	SetText(text string)
	Text() string

	// AddClass and RemoveClass manage presentation state flags such as
	// "active" or "light-theme". Adding a present class is a no-op.
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// SetEnabled toggles interactivity for buttons and inputs.
	SetEnabled(enabled bool)
	Enabled() bool

	// SetValue and Value access an input field's current content.
	SetValue(value string)
	Value() string

	// Focus moves input focus to this element.
	Focus()
}

// Location mirrors the address bar fragment so deep links survive reloads.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
}

// Viewport covers whole-surface operations that belong to no one element.
type Viewport interface {
	ScrollToTop()
	CloseMobileMenu()
}

// Notifier shows transient feedback toasts.
type Notifier interface {
	// Notify shows a toast. Kind is "success", "error" or "info".
	Notify(message, kind string)
}

// Modal is an openable dialog, such as the login prompt.
type Modal interface {
	Open()
	Close()
	IsOpen() bool
}
