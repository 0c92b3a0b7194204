package actions

import (
	"context"

	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/metrics"
	"riverside-client/internal/pages"
	"riverside-client/internal/session"
	"riverside-client/internal/timers"
	"riverside-client/internal/view"
)

// Logout tears a session down: clear persisted state, cancel every
// outstanding timer and return to home.
type Logout struct {
	reg      *timers.Registry
	sessions *session.Store
	machine  *pages.Machine
	log      logger.Logger
	notifier view.Notifier
}

func NewLogout(
	reg *timers.Registry,
	sessions *session.Store,
	machine *pages.Machine,
	log logger.Logger,
	notifier view.Notifier,
) *Logout {
	return &Logout{
		reg:      reg,
		sessions: sessions,
		machine:  machine,
		log:      log.WithFields(map[string]interface{}{"component": "logout"}),
		notifier: notifier,
	}
}

// Run logs the user out. A failed Clear is logged but does not keep the
// user signed in; the in-memory state always resets.
func (lo *Logout) Run(ctx context.Context) {
	lo.machine.SetLoggedOut()
	if err := lo.sessions.Clear(ctx); err != nil {
		lo.log.WithError(err).Warn("could not clear persisted session", nil)
	}

	// CancelAll covers dashboard loops, in-flight action latencies and any
	// pending deferred navigation from a just-finished login.
	lo.reg.CancelAll()

	lo.machine.NavigateTo(pages.PageHome)
	lo.notifier.Notify("You have been signed out", "info")
	metrics.ActionsTotal.WithLabelValues("logout", "success").Inc()
	lo.log.Info("logout complete", nil)
}
