// internal/timers/registry_test.go
package timers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riverside-client/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestRegistry(t *testing.T) *Registry {
	return New(logger.NewTestLogger(t))
}

// ==========================
// One-Shot Timer Tests
// ==========================

func TestRegistry_Schedule_Fires(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var fired atomic.Bool
	reg.Schedule(func() { fired.Store(true) }, 5*time.Millisecond)

	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return reg.Active() == 0 }, time.Second, time.Millisecond)
}

func TestRegistry_Cancel_PreventsFiring(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var fired atomic.Bool
	h := reg.Schedule(func() { fired.Store(true) }, 50*time.Millisecond)
	reg.Cancel(h)

	assert.Equal(t, 0, reg.Active())
	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestRegistry_Cancel_Idempotent(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	h := reg.Schedule(func() {}, 50*time.Millisecond)
	reg.Cancel(h)
	reg.Cancel(h)
	reg.Cancel(Handle("never-issued"))

	assert.Equal(t, 0, reg.Active())
}

func TestRegistry_Cancel_AfterFire_NoOp(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var fired atomic.Bool
	h := reg.Schedule(func() { fired.Store(true) }, time.Millisecond)

	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
	reg.Cancel(h)
	assert.Equal(t, 0, reg.Active())
}

func TestRegistry_ZeroDelayBurst_TrackingDrains(t *testing.T) {
	// A zero-delay callback can run before Schedule returns; every one of
	// them must still be removed from tracking exactly once.
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var fired atomic.Int64
	for i := 0; i < 500; i++ {
		reg.Schedule(func() { fired.Add(1) }, 0)
	}

	require.Eventually(t, func() bool {
		return fired.Load() == 500 && reg.Active() == 0
	}, time.Second, time.Millisecond)
}

// ==========================
// Repeating Timer Tests
// ==========================

func TestRegistry_ScheduleRepeating_Ticks(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var ticks atomic.Int32
	h := reg.ScheduleRepeating(func() { ticks.Add(1) }, 5*time.Millisecond)

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	reg.Cancel(h)
	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load())
}

func TestRegistry_ScheduleRepeating_StaysTracked(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var ticks atomic.Int32
	reg.ScheduleRepeating(func() { ticks.Add(1) }, 5*time.Millisecond)

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, reg.Active())
}

// ==========================
// Bulk Cancellation Tests
// ==========================

func TestRegistry_CancelAll(t *testing.T) {
	reg := createTestRegistry(t)

	var fired atomic.Int32
	reg.Schedule(func() { fired.Add(1) }, 50*time.Millisecond)
	reg.ScheduleTagged(TagDashboard, func() { fired.Add(1) }, 50*time.Millisecond)
	reg.ScheduleRepeating(func() { fired.Add(1) }, 50*time.Millisecond)
	require.Equal(t, 3, reg.Active())

	reg.CancelAll()
	assert.Equal(t, 0, reg.Active())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestRegistry_CancelTag_LeavesOtherTags(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var global, dash atomic.Bool
	reg.Schedule(func() { global.Store(true) }, 20*time.Millisecond)
	reg.ScheduleTagged(TagDashboard, func() { dash.Store(true) }, 20*time.Millisecond)
	require.Equal(t, 1, reg.ActiveTag(TagDashboard))

	reg.CancelTag(TagDashboard)
	assert.Equal(t, 0, reg.ActiveTag(TagDashboard))
	assert.Equal(t, 1, reg.Active())

	require.Eventually(t, global.Load, time.Second, time.Millisecond)
	assert.False(t, dash.Load())
}

// ==========================
// Panic Recovery Tests
// ==========================

func TestRegistry_Schedule_PanicRecovered(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	reg.Schedule(func() { panic("boom") }, time.Millisecond)

	// The panicking handle must still be removed from tracking.
	require.Eventually(t, func() bool { return reg.Active() == 0 }, time.Second, time.Millisecond)

	// Registry keeps working after the panic.
	var fired atomic.Bool
	reg.Schedule(func() { fired.Store(true) }, time.Millisecond)
	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
}

func TestRegistry_ScheduleRepeating_PanicCancelsInterval(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var ticks atomic.Int32
	reg.ScheduleRepeating(func() {
		ticks.Add(1)
		panic("boom")
	}, 5*time.Millisecond)

	require.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return reg.Active() == 0 }, time.Second, time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), ticks.Load())
}

// ==========================
// Debounce Tests
// ==========================

func TestRegistry_Debounce_CoalescesBursts(t *testing.T) {
	reg := createTestRegistry(t)
	defer reg.CancelAll()

	var runs atomic.Int32
	trigger := reg.Debounce(func() { runs.Add(1) }, 20*time.Millisecond)

	trigger()
	trigger()
	trigger()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestRegistry_Debounce_CancelAllSuppressesPending(t *testing.T) {
	reg := createTestRegistry(t)

	var runs atomic.Int32
	trigger := reg.Debounce(func() { runs.Add(1) }, 20*time.Millisecond)

	trigger()
	reg.CancelAll()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
