package timers

import (
	"sync"
	"time"
)

// Debounce returns a trigger that runs fn once the trigger has been quiet
// for the given duration. Each call supersedes the previous pending run.
// The pending run is tracked in the registry, so CancelAll suppresses it.
func (r *Registry) Debounce(fn func(), quiet time.Duration) func() {
	var mu sync.Mutex
	var pending Handle
	var armed bool

	return func() {
		mu.Lock()
		defer mu.Unlock()

		if armed {
			r.Cancel(pending)
		}
		pending = r.Schedule(func() {
			mu.Lock()
			armed = false
			mu.Unlock()
			fn()
		}, quiet)
		armed = true
	}
}
