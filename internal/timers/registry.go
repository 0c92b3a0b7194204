// Package timers tracks every outstanding delayed or periodic callback so
// they can be cancelled in bulk on logout and teardown. Callbacks run on
// their own goroutines; panics are recovered at the registry boundary and a
// panicking periodic callback cancels its own interval.
package timers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	cerrors "riverside-client/internal/common/errors"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/metrics"
)

// Tag groups timers so a subset can be cancelled without touching the rest.
type Tag string

const (
	TagGlobal    Tag = "global"
	TagDashboard Tag = "dashboard"
)

// Handle identifies a tracked timer. Handles stay valid after the timer
// fires or is cancelled; operations on them become no-ops.
type Handle string

type timerKind int

const (
	kindTimeout timerKind = iota
	kindInterval
)

type pendingTimer struct {
	tag    Tag
	kind   timerKind
	timer  *time.Timer
	ticker *time.Ticker
	done   chan struct{}
}

// Registry owns the tracked-handle set. The bookkeeping invariant is
// add-on-create, remove-exactly-once on fire, panic or cancel.
type Registry struct {
	mu     sync.Mutex
	timers map[Handle]*pendingTimer
	log    logger.Logger
}

func New(log logger.Logger) *Registry {
	return &Registry{
		timers: make(map[Handle]*pendingTimer),
		log:    log.WithFields(map[string]interface{}{"component": "timers"}),
	}
}

// Schedule runs fn once after delay under the global tag.
func (r *Registry) Schedule(fn func(), delay time.Duration) Handle {
	return r.ScheduleTagged(TagGlobal, fn, delay)
}

// ScheduleTagged runs fn once after delay. The handle is removed from
// tracking whether fn returns or panics; panics are logged, never rethrown.
func (r *Registry) ScheduleTagged(tag Tag, fn func(), delay time.Duration) Handle {
	h := Handle(uuid.NewString())

	pt := &pendingTimer{tag: tag, kind: kindTimeout}

	// The handle goes into the map before the timer is armed. A zero-delay
	// callback must find itself tracked, or its removal would race a later
	// insert and leave a phantom entry.
	r.mu.Lock()
	r.timers[h] = pt
	pt.timer = time.AfterFunc(delay, func() {
		defer r.remove(h)
		defer r.recoverCallback(h, false)
		fn()
	})
	r.mu.Unlock()

	metrics.TimersActive.WithLabelValues(string(tag)).Inc()
	return h
}

// ScheduleRepeating runs fn every interval under the global tag.
func (r *Registry) ScheduleRepeating(fn func(), interval time.Duration) Handle {
	return r.ScheduleRepeatingTagged(TagGlobal, fn, interval)
}

// ScheduleRepeatingTagged runs fn every interval. A panicking fn cancels its
// own interval: a broken periodic task is assumed unrecoverable.
func (r *Registry) ScheduleRepeatingTagged(tag Tag, fn func(), interval time.Duration) Handle {
	h := Handle(uuid.NewString())

	pt := &pendingTimer{
		tag:    tag,
		kind:   kindInterval,
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}

	// Tracked before the tick loop starts for the same reason the one-shot
	// path tracks before arming.
	r.track(h, pt)

	go func() {
		for {
			select {
			case <-pt.done:
				return
			case <-pt.ticker.C:
				if !r.runRepeating(h, fn) {
					return
				}
			}
		}
	}()

	return h
}

// runRepeating executes one tick; false stops the loop.
func (r *Registry) runRepeating(h Handle, fn func()) (ok bool) {
	ok = true
	defer func() {
		if rec := recover(); rec != nil {
			r.logPanic(h, rec, true)
			r.Cancel(h)
			ok = false
		}
	}()
	fn()
	return ok
}

func (r *Registry) recoverCallback(h Handle, periodic bool) {
	if rec := recover(); rec != nil {
		r.logPanic(h, rec, periodic)
	}
}

func (r *Registry) logPanic(h Handle, rec interface{}, periodic bool) {
	metrics.TimerCallbackPanics.Inc()
	err := cerrors.NewTimerCallbackPanicError(rec)
	r.log.WithError(err).Error("timer callback panicked", map[string]interface{}{
		"handle":   string(h),
		"periodic": periodic,
	})
}

// Cancel stops a tracked timer. Idempotent: cancelling twice, or cancelling
// an already-fired one-shot, is a no-op.
func (r *Registry) Cancel(h Handle) {
	r.mu.Lock()
	pt, ok := r.timers[h]
	if ok {
		delete(r.timers, h)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	r.stop(pt)
	metrics.TimersActive.WithLabelValues(string(pt.tag)).Dec()
}

// CancelAll stops and clears every tracked timer, one-shot and periodic,
// including the dashboard-tagged subset.
func (r *Registry) CancelAll() {
	r.cancelWhere(func(*pendingTimer) bool { return true })
}

// CancelTag stops only timers in the given group.
func (r *Registry) CancelTag(tag Tag) {
	r.cancelWhere(func(pt *pendingTimer) bool { return pt.tag == tag })
}

func (r *Registry) cancelWhere(match func(*pendingTimer) bool) {
	r.mu.Lock()
	victims := make(map[Handle]*pendingTimer)
	for h, pt := range r.timers {
		if match(pt) {
			victims[h] = pt
			delete(r.timers, h)
		}
	}
	r.mu.Unlock()

	for _, pt := range victims {
		r.stop(pt)
		metrics.TimersActive.WithLabelValues(string(pt.tag)).Dec()
	}
}

func (r *Registry) stop(pt *pendingTimer) {
	switch pt.kind {
	case kindTimeout:
		pt.timer.Stop()
	case kindInterval:
		pt.ticker.Stop()
		close(pt.done)
	}
}

func (r *Registry) track(h Handle, pt *pendingTimer) {
	r.mu.Lock()
	r.timers[h] = pt
	r.mu.Unlock()
	metrics.TimersActive.WithLabelValues(string(pt.tag)).Inc()
}

// remove drops a fired one-shot from tracking. Cancel may have raced it;
// removal happens at most once because deletion is checked under the lock.
func (r *Registry) remove(h Handle) {
	r.mu.Lock()
	pt, ok := r.timers[h]
	if ok {
		delete(r.timers, h)
	}
	r.mu.Unlock()

	if ok {
		metrics.TimersActive.WithLabelValues(string(pt.tag)).Dec()
	}
}

// Active reports the number of tracked timers.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// ActiveTag reports the number of tracked timers in a group.
func (r *Registry) ActiveTag(tag Tag) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, pt := range r.timers {
		if pt.tag == tag {
			n++
		}
	}
	return n
}
