// Package pages is the navigation state machine. It owns the current-page
// state, enforces the dashboard login gate and drives the transition engine
// and address-bar fragment.
package pages

import (
	"sync"

	"riverside-client/internal/common/config"
	cerrors "riverside-client/internal/common/errors"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/metrics"
	"riverside-client/internal/timers"
	"riverside-client/internal/transition"
	"riverside-client/internal/view"
)

// PageID names one navigable page.
type PageID string

const (
	PageHome      PageID = "home"
	PageFeatures  PageID = "features"
	PageDownloads PageID = "downloads"
	PageSupport   PageID = "support"
	PageDashboard PageID = "dashboard"
)

// ValidPage reports whether id names a known page.
func ValidPage(id PageID) bool {
	switch id {
	case PageHome, PageFeatures, PageDownloads, PageSupport, PageDashboard:
		return true
	}
	return false
}

// SessionState is the authentication view the machine navigates under.
type SessionState struct {
	LoggedIn bool
	Username string
}

// DashboardStarter is invoked once the dashboard page has settled after a
// navigation to it.
type DashboardStarter interface {
	Start(username string)
}

// Highlighter mirrors the requested page onto the navigation links.
type Highlighter interface {
	Highlight(id PageID)
}

const classHidden = "hidden"

// Machine coordinates navigation. All methods are safe for concurrent use.
type Machine struct {
	engine   *transition.Engine
	reg      *timers.Registry
	cfg      *config.Config
	log      logger.Logger
	location view.Location
	viewport view.Viewport
	modal    view.Modal

	containers map[PageID]view.Element

	// Optional downloads-page sections swapped on auth state. Either may
	// be nil when the page has no gated content.
	downloadsLocked   view.Element
	downloadsUnlocked view.Element

	starter     DashboardStarter
	highlighter Highlighter

	mu      sync.Mutex
	current PageID
	session SessionState
}

func NewMachine(
	engine *transition.Engine,
	reg *timers.Registry,
	cfg *config.Config,
	log logger.Logger,
	location view.Location,
	viewport view.Viewport,
	modal view.Modal,
	containers map[PageID]view.Element,
) *Machine {
	return &Machine{
		engine:     engine,
		reg:        reg,
		cfg:        cfg,
		log:        log.WithFields(map[string]interface{}{"component": "pages"}),
		location:   location,
		viewport:   viewport,
		modal:      modal,
		containers: containers,
	}
}

// SetDashboard wires the dashboard loop after construction. The loop needs
// the machine for its own navigation, so the dependency cannot be passed to
// NewMachine.
func (m *Machine) SetDashboard(starter DashboardStarter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starter = starter
}

// SetHighlighter wires the navigation-link highlight delegate.
func (m *Machine) SetHighlighter(h Highlighter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highlighter = h
}

// SetDownloadsSections wires the auth-gated downloads content.
func (m *Machine) SetDownloadsSections(locked, unlocked view.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadsLocked = locked
	m.downloadsUnlocked = unlocked
}

// Current reports the page currently navigated to.
func (m *Machine) Current() PageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Session reports the machine's authentication view.
func (m *Machine) Session() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// SetLoggedIn records an authenticated user and unlocks gated content.
func (m *Machine) SetLoggedIn(username string) {
	m.mu.Lock()
	m.session = SessionState{LoggedIn: true, Username: username}
	m.mu.Unlock()
	m.refreshDownloadsSections()
}

// SetLoggedOut clears the authenticated user and relocks gated content.
func (m *Machine) SetLoggedOut() {
	m.mu.Lock()
	m.session = SessionState{}
	m.mu.Unlock()
	m.refreshDownloadsSections()
}

func (m *Machine) refreshDownloadsSections() {
	m.mu.Lock()
	locked, unlocked := m.downloadsLocked, m.downloadsUnlocked
	loggedIn := m.session.LoggedIn
	m.mu.Unlock()

	if locked != nil {
		if loggedIn {
			locked.AddClass(classHidden)
		} else {
			locked.RemoveClass(classHidden)
		}
	}
	if unlocked != nil {
		if loggedIn {
			unlocked.RemoveClass(classHidden)
		} else {
			unlocked.AddClass(classHidden)
		}
	}
}

// NavigateTo moves to the named page. Unknown ids fall back to home and
// never surface an error to the caller. An unauthenticated navigation to
// the dashboard does not navigate; it opens the login modal instead.
func (m *Machine) NavigateTo(id PageID) {
	if !ValidPage(id) {
		m.log.WithError(cerrors.NewUnknownPageError(string(id))).Warn("unknown page, falling back to home", nil)
		id = PageHome
	}

	m.mu.Lock()
	session := m.session
	highlighter := m.highlighter
	m.mu.Unlock()

	if highlighter != nil {
		highlighter.Highlight(id)
	}

	if id == PageDashboard && !session.LoggedIn {
		metrics.LoginGateBlocks.Inc()
		m.log.Info("dashboard gated, prompting for login", nil)
		m.modal.Open()
		return
	}

	if id == PageDownloads {
		m.refreshDownloadsSections()
	}

	container, ok := m.containers[id]
	if !ok {
		m.log.WithError(cerrors.NewUnknownPageError(string(id))).Warn("no container for page", nil)
		return
	}

	// Leaving the dashboard stops its timers before the fade begins, so a
	// counter never keeps ramping on a hidden page.
	m.mu.Lock()
	leavingDashboard := m.current == PageDashboard && id != PageDashboard
	m.current = id
	m.mu.Unlock()
	if leavingDashboard {
		m.reg.CancelTag(timers.TagDashboard)
	}

	metrics.NavigationsTotal.WithLabelValues(string(id)).Inc()
	m.log.Info("navigating", map[string]interface{}{"page": string(id)})

	m.engine.Show(container, func() {
		m.afterShow(id, session)
	})

	m.location.SetFragment(string(id))
	m.viewport.ScrollToTop()
	m.viewport.CloseMobileMenu()
}

func (m *Machine) afterShow(id PageID, session SessionState) {
	if id != PageDashboard {
		return
	}
	m.mu.Lock()
	starter := m.starter
	m.mu.Unlock()
	if starter == nil {
		return
	}
	// Re-entry replaces any dashboard timers from a previous visit.
	m.reg.CancelTag(timers.TagDashboard)
	settle := config.GetDuration(m.cfg.Durations.DashboardSettle)
	m.reg.ScheduleTagged(timers.TagDashboard, func() {
		// The page may have been left during the settle window.
		if m.Current() != PageDashboard {
			return
		}
		starter.Start(session.Username)
	}, settle)
}

// Startup performs the initial navigation. A deep-link fragment naming a
// known page wins; otherwise an authenticated user lands on the dashboard
// and everyone else on home. A gated deep link lands on home with the
// login modal opened over it.
func (m *Machine) Startup() {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	target := PageHome
	if session.LoggedIn {
		target = PageDashboard
	}
	if frag := PageID(m.location.Fragment()); frag != "" && ValidPage(frag) {
		target = frag
	}

	gated := target == PageDashboard && !session.LoggedIn
	if gated {
		m.log.Info("deep link gated at startup", map[string]interface{}{"fragment": string(target)})
		target = PageHome
	}

	m.refreshDownloadsSections()
	m.NavigateTo(target)

	// The gate fires even for a pre-selected fragment: home is shown
	// underneath and the login prompt goes up.
	if gated {
		metrics.LoginGateBlocks.Inc()
		m.modal.Open()
	}
}
