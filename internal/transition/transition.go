// Package transition animates the swap between page containers: fade the
// visible page out, exchange the active flag, then fade the new page in
// after a short settle delay.
package transition

import (
	"sync"
	"time"

	"riverside-client/internal/common/config"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/timers"
	"riverside-client/internal/view"
)

// Phase is the engine's position in the fade-out, swap, fade-in sequence.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFadeOut
	PhaseSwap
	PhaseFadeIn
)

const (
	classActive   = "active"
	classFading   = "fade-out"
	classEntering = "fade-in"
)

// Engine runs at most one transition at a time. Starting a new transition
// while one is in flight supersedes it: the pending phase timer is
// cancelled and the sequence restarts toward the new target. The
// superseded transition's completion callback never fires.
type Engine struct {
	reg *timers.Registry
	log logger.Logger

	fadeDuration   time.Duration
	settleDuration time.Duration

	mu      sync.Mutex
	phase   Phase
	visible view.Element
	pending timers.Handle
	hasPend bool
	seq     uint64
}

func NewEngine(reg *timers.Registry, cfg config.DurationConfig, log logger.Logger) *Engine {
	return &Engine{
		reg:            reg,
		log:            log.WithFields(map[string]interface{}{"component": "transition"}),
		fadeDuration:   config.GetDuration(cfg.PageTransition),
		settleDuration: config.GetDuration(cfg.TransitionSettle),
	}
}

// Show transitions to target. With no page visible yet, target is shown
// immediately and done runs synchronously. done may be nil.
func (e *Engine) Show(target view.Element, done func()) {
	e.mu.Lock()

	e.seq++
	seq := e.seq
	if e.hasPend {
		e.reg.Cancel(e.pending)
		e.hasPend = false
	}

	if e.visible == nil {
		target.AddClass(classActive)
		e.visible = target
		e.phase = PhaseIdle
		e.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}

	if e.visible == target {
		// Already there; a fresh fade to the same page would just flicker.
		e.phase = PhaseIdle
		e.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}

	old := e.visible
	e.phase = PhaseFadeOut
	// A supersede during the settle window leaves the entering flag on
	// the page; fading it out clears the flag.
	old.RemoveClass(classEntering)
	old.AddClass(classFading)

	e.pending = e.reg.Schedule(func() {
		e.swap(seq, old, target, done)
	}, e.fadeDuration)
	e.hasPend = true
	e.mu.Unlock()
}

func (e *Engine) swap(seq uint64, old, target view.Element, done func()) {
	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()
		return
	}
	e.phase = PhaseSwap
	old.RemoveClass(classFading)
	old.RemoveClass(classActive)
	target.AddClass(classActive)
	// The entering flag marks the settle window so the view layer can
	// style the fade-in; finish clears it.
	target.AddClass(classEntering)
	e.visible = target

	e.pending = e.reg.Schedule(func() {
		e.finish(seq, target, done)
	}, e.settleDuration)
	e.hasPend = true
	e.phase = PhaseFadeIn
	e.mu.Unlock()
}

func (e *Engine) finish(seq uint64, target view.Element, done func()) {
	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()
		return
	}
	e.phase = PhaseIdle
	e.hasPend = false
	target.RemoveClass(classEntering)
	e.mu.Unlock()
	if done != nil {
		done()
	}
}

// Phase reports the engine's current phase.
func (e *Engine) CurrentPhase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Visible reports the element currently holding the active flag.
func (e *Engine) Visible() view.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}
