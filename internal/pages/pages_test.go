// internal/pages/pages_test.go
package pages

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riverside-client/internal/common/config"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/timers"
	"riverside-client/internal/transition"
	"riverside-client/internal/view"
	"riverside-client/internal/view/viewfakes"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeStarter struct {
	mu     sync.Mutex
	starts []string
}

func (f *fakeStarter) Start(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, username)
}

func (f *fakeStarter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

type machineFixture struct {
	machine    *Machine
	reg        *timers.Registry
	location   *view.BasicLocation
	viewport   *viewfakes.Viewport
	modal      *viewfakes.Modal
	containers map[PageID]view.Element
	starter    *fakeStarter
}

func createTestMachine(t *testing.T) *machineFixture {
	log := logger.NewTestLogger(t)
	reg := timers.New(log)
	t.Cleanup(reg.CancelAll)

	cfg := config.Default()
	cfg.Durations.PageTransition = 5
	cfg.Durations.TransitionSettle = 2
	cfg.Durations.DashboardSettle = 5

	containers := map[PageID]view.Element{
		PageHome:      viewfakes.NewElement(),
		PageFeatures:  viewfakes.NewElement(),
		PageDownloads: viewfakes.NewElement(),
		PageSupport:   viewfakes.NewElement(),
		PageDashboard: viewfakes.NewElement(),
	}

	location := view.NewBasicLocation()
	viewport := &viewfakes.Viewport{}
	modal := &viewfakes.Modal{}
	engine := transition.NewEngine(reg, cfg.Durations, log)

	machine := NewMachine(engine, reg, cfg, log, location, viewport, modal, containers)
	starter := &fakeStarter{}
	machine.SetDashboard(starter)

	return &machineFixture{
		machine:    machine,
		reg:        reg,
		location:   location,
		viewport:   viewport,
		modal:      modal,
		containers: containers,
		starter:    starter,
	}
}

// ==========================
// Validation Tests
// ==========================

func TestValidPage(t *testing.T) {
	for _, id := range []PageID{PageHome, PageFeatures, PageDownloads, PageSupport, PageDashboard} {
		assert.True(t, ValidPage(id), string(id))
	}
	assert.False(t, ValidPage(PageID("admin")))
	assert.False(t, ValidPage(PageID("")))
	assert.False(t, ValidPage(PageID("Home")))
}

func TestMachine_NavigateTo_UnknownPage_FallsBackToHome(t *testing.T) {
	f := createTestMachine(t)
	f.machine.NavigateTo(PageFeatures)

	f.machine.NavigateTo(PageID("admin"))

	assert.Equal(t, PageHome, f.machine.Current())
	assert.Equal(t, "home", f.location.Fragment())
	assert.False(t, f.modal.IsOpen())
}

// ==========================
// Navigation Tests
// ==========================

func TestMachine_NavigateTo_UpdatesStateAndSurface(t *testing.T) {
	f := createTestMachine(t)

	f.machine.NavigateTo(PageFeatures)

	assert.Equal(t, PageFeatures, f.machine.Current())
	assert.Equal(t, "features", f.location.Fragment())
	assert.Equal(t, 1, f.viewport.ScrollCount())

	require.Eventually(t, func() bool {
		return f.containers[PageFeatures].HasClass("active")
	}, time.Second, time.Millisecond)
}

func TestMachine_NavigateTo_DashboardGated(t *testing.T) {
	f := createTestMachine(t)
	f.machine.NavigateTo(PageHome)

	f.machine.NavigateTo(PageDashboard)

	assert.Equal(t, PageHome, f.machine.Current(), "navigation must not happen")
	assert.Equal(t, "home", f.location.Fragment())
	assert.Equal(t, 1, f.modal.OpenCount())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, f.starter.count())
}

func TestMachine_NavigateTo_DashboardWhenLoggedIn(t *testing.T) {
	f := createTestMachine(t)
	f.machine.SetLoggedIn("admin")

	f.machine.NavigateTo(PageDashboard)

	assert.Equal(t, PageDashboard, f.machine.Current())
	assert.False(t, f.modal.IsOpen())

	require.Eventually(t, func() bool { return f.starter.count() == 1 }, time.Second, time.Millisecond)
	f.starter.mu.Lock()
	assert.Equal(t, "admin", f.starter.starts[0])
	f.starter.mu.Unlock()
}

func TestMachine_LeavingDashboard_CancelsDashboardTimers(t *testing.T) {
	f := createTestMachine(t)
	f.machine.SetLoggedIn("admin")
	f.machine.NavigateTo(PageDashboard)

	require.Eventually(t, func() bool { return f.starter.count() == 1 }, time.Second, time.Millisecond)

	f.reg.ScheduleRepeatingTagged(timers.TagDashboard, func() {}, 10*time.Millisecond)
	require.Equal(t, 1, f.reg.ActiveTag(timers.TagDashboard))

	f.machine.NavigateTo(PageHome)
	assert.Equal(t, 0, f.reg.ActiveTag(timers.TagDashboard))
}

func TestMachine_LeaveDashboardDuringSettle_StarterNeverRuns(t *testing.T) {
	f := createTestMachine(t)
	f.machine.SetLoggedIn("admin")

	f.machine.NavigateTo(PageDashboard)
	f.machine.NavigateTo(PageHome)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, f.starter.count())
	assert.Equal(t, PageHome, f.machine.Current())
}

// ==========================
// Highlight Tests
// ==========================

type fakeHighlighter struct {
	mu   sync.Mutex
	seen []PageID
}

func (f *fakeHighlighter) Highlight(id PageID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
}

func TestMachine_NavigateTo_UpdatesHighlight(t *testing.T) {
	f := createTestMachine(t)
	hl := &fakeHighlighter{}
	f.machine.SetHighlighter(hl)

	f.machine.NavigateTo(PageFeatures)
	f.machine.NavigateTo(PageID("bogus"))
	f.machine.NavigateTo(PageDashboard) // gated, still highlighted per request

	hl.mu.Lock()
	defer hl.mu.Unlock()
	assert.Equal(t, []PageID{PageFeatures, PageHome, PageDashboard}, hl.seen)
}

// ==========================
// Auth State Tests
// ==========================

func TestMachine_DownloadsSections_FollowAuthState(t *testing.T) {
	f := createTestMachine(t)
	locked := viewfakes.NewElement()
	unlocked := viewfakes.NewElement()
	f.machine.SetDownloadsSections(locked, unlocked)

	f.machine.SetLoggedOut()
	assert.False(t, locked.HasClass("hidden"))
	assert.True(t, unlocked.HasClass("hidden"))

	f.machine.SetLoggedIn("admin")
	assert.True(t, locked.HasClass("hidden"))
	assert.False(t, unlocked.HasClass("hidden"))

	session := f.machine.Session()
	assert.True(t, session.LoggedIn)
	assert.Equal(t, "admin", session.Username)
}

// ==========================
// Startup Tests
// ==========================

func TestMachine_Startup(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		loggedIn bool
		expected PageID
	}{
		{name: "no fragment lands home", fragment: "", expected: PageHome},
		{name: "no fragment with session lands dashboard", fragment: "", loggedIn: true, expected: PageDashboard},
		{name: "deep link wins", fragment: "features", expected: PageFeatures},
		{name: "deep link wins over authenticated default", fragment: "support", loggedIn: true, expected: PageSupport},
		{name: "unknown fragment falls back", fragment: "bogus", expected: PageHome},
		{name: "gated deep link lands home and prompts", fragment: "dashboard", expected: PageHome},
		{name: "dashboard deep link with session", fragment: "dashboard", loggedIn: true, expected: PageDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := createTestMachine(t)
			f.location.SetFragment(tt.fragment)
			if tt.loggedIn {
				f.machine.SetLoggedIn("admin")
			}

			f.machine.Startup()

			assert.Equal(t, tt.expected, f.machine.Current())
			assert.Equal(t, string(tt.expected), f.location.Fragment())

			// The gate is enforced for a pre-selected dashboard fragment
			// too: home shows underneath, the login prompt goes up.
			wantPrompt := tt.fragment == "dashboard" && !tt.loggedIn
			assert.Equal(t, wantPrompt, f.modal.IsOpen())
		})
	}
}
