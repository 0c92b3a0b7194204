// Package viewfakes provides recording doubles for the view interfaces.
package viewfakes

import (
	"sync"

	"riverside-client/internal/view"
)

// Element records every mutation on top of the basic in-memory behavior.
type Element struct {
	*view.BasicElement

	mu         sync.Mutex
	TextSets   []string
	Focused    int
	ClassAdds  []string
	ClassDrops []string
}

func NewElement() *Element {
	return &Element{BasicElement: view.NewBasicElement()}
}

func (e *Element) SetText(text string) {
	e.mu.Lock()
	e.TextSets = append(e.TextSets, text)
	e.mu.Unlock()
	e.BasicElement.SetText(text)
}

func (e *Element) AddClass(name string) {
	e.mu.Lock()
	e.ClassAdds = append(e.ClassAdds, name)
	e.mu.Unlock()
	e.BasicElement.AddClass(name)
}

func (e *Element) RemoveClass(name string) {
	e.mu.Lock()
	e.ClassDrops = append(e.ClassDrops, name)
	e.mu.Unlock()
	e.BasicElement.RemoveClass(name)
}

func (e *Element) Focus() {
	e.mu.Lock()
	e.Focused++
	e.mu.Unlock()
}

// FocusCount reports how many times Focus was called.
func (e *Element) FocusCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Focused
}

// Notification is one recorded toast.
type Notification struct {
	Message string
	Kind    string
}

// Notifier records toasts in order.
type Notifier struct {
	mu   sync.Mutex
	Sent []Notification
}

func (n *Notifier) Notify(message, kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, Notification{Message: message, Kind: kind})
}

// All returns a copy of recorded notifications.
func (n *Notifier) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.Sent))
	copy(out, n.Sent)
	return out
}

// Last returns the most recent notification, if any.
func (n *Notifier) Last() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Sent) == 0 {
		return Notification{}, false
	}
	return n.Sent[len(n.Sent)-1], true
}

// Viewport counts whole-surface calls.
type Viewport struct {
	mu         sync.Mutex
	Scrolls    int
	MenuCloses int
}

func (v *Viewport) ScrollToTop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Scrolls++
}

func (v *Viewport) CloseMobileMenu() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.MenuCloses++
}

func (v *Viewport) ScrollCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Scrolls
}

// Modal records open and close calls on top of the open flag.
type Modal struct {
	mu     sync.Mutex
	open   bool
	Opens  int
	Closes int
}

func (m *Modal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.Opens++
}

func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.Closes++
}

func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

func (m *Modal) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Opens
}
