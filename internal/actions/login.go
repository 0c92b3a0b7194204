package actions

import (
	"context"
	"time"

	"riverside-client/internal/common/config"
	cerrors "riverside-client/internal/common/errors"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/metrics"
	"riverside-client/internal/common/observability"
	"riverside-client/internal/pages"
	"riverside-client/internal/session"
	"riverside-client/internal/timers"
	"riverside-client/internal/view"
)

const (
	labelSignIn  = "Sign In"
	labelSigning = "Signing in..."
)

// LoginForm groups the login modal's interactive elements.
type LoginForm struct {
	Username view.Element
	Password view.Element
	Submit   view.Element
	Error    view.Element
}

// Login runs the credential flow: validate synchronously, then simulate
// backend latency on a timer before comparing against the demo pair and
// persisting the session.
type Login struct {
	reg      *timers.Registry
	sessions *session.Store
	machine  *pages.Machine
	cfg      *config.Config
	log      logger.Logger
	obs      *observability.Observability
	notifier view.Notifier
	modal    view.Modal
	form     LoginForm
}

func NewLogin(
	reg *timers.Registry,
	sessions *session.Store,
	machine *pages.Machine,
	cfg *config.Config,
	log logger.Logger,
	obs *observability.Observability,
	notifier view.Notifier,
	modal view.Modal,
	form LoginForm,
) *Login {
	return &Login{
		reg:      reg,
		sessions: sessions,
		machine:  machine,
		cfg:      cfg,
		log:      log.WithFields(map[string]interface{}{"component": "login"}),
		obs:      obs,
		notifier: notifier,
		modal:    modal,
		form:     form,
	}
}

// Submit starts the login attempt from the form's current field values.
// Validation failures are reported inline immediately without touching the
// fields; everything past validation happens after the simulated latency.
func (l *Login) Submit(ctx context.Context) {
	started := time.Now()
	username := l.form.Username.Value()
	password := l.form.Password.Value()

	u, _, err := ValidateCredentials(
		username, password,
		l.cfg.Session.MinUsernameLength, l.cfg.Session.MinPasswordLength,
	)
	if err != nil {
		l.showError(err)
		l.finish("validation_failed", started)
		return
	}

	l.form.Submit.SetEnabled(false)
	l.form.Submit.SetText(labelSigning)
	l.clearError()

	// Sanitized password must be re-derived here: ValidateCredentials
	// returns it, but keeping raw input out of the closure matters more
	// than one extra Sanitize call.
	p := Sanitize(password)

	// The completion fires after the caller has returned, typically after
	// an HTTP handler's request context is already canceled. Keep its
	// values but not its cancelation, or the session write would fail.
	deferred := context.WithoutCancel(ctx)

	delay := config.GetDuration(l.cfg.Durations.Login)
	l.reg.Schedule(func() {
		l.complete(deferred, u, p, started)
	}, delay)
}

func (l *Login) complete(ctx context.Context, username, password string, started time.Time) {
	defer l.restoreButton()

	if username != l.cfg.Session.DemoUsername || password != l.cfg.Session.DemoPassword {
		l.log.Warn("authentication failed", map[string]interface{}{"username": username})
		l.showError(cerrors.NewAuthFailedError())
		l.form.Password.SetValue("")
		l.form.Password.Focus()
		l.finish("auth_failed", started)
		return
	}

	if err := l.sessions.Save(ctx, username); err != nil {
		// Login aborts: no in-memory login state was set, so nothing to
		// roll back and no navigation happens.
		l.log.WithError(err).Error("session save failed, aborting login", nil)
		l.showError(err)
		l.finish("save_failed", started)
		return
	}

	l.machine.SetLoggedIn(username)
	l.modal.Close()
	l.form.Username.SetValue("")
	l.form.Password.SetValue("")
	l.clearError()
	l.notifier.Notify("Welcome back, "+username+"!", "success")
	l.log.Info("login succeeded", map[string]interface{}{"username": username})
	l.finish("success", started)

	settle := config.GetDuration(l.cfg.Durations.DashboardSettle)
	l.reg.Schedule(func() {
		l.machine.NavigateTo(pages.PageDashboard)
	}, settle)
}

func (l *Login) finish(outcome string, started time.Time) {
	metrics.ActionsTotal.WithLabelValues("login", outcome).Inc()
	if l.obs != nil {
		ctx := context.Background()
		l.obs.RecordAction(ctx, "login", outcome)
		l.obs.RecordActionDuration(ctx, "login", time.Since(started))
	}
}

func (l *Login) showError(err error) {
	msg := "Login failed"
	if ce, ok := err.(*cerrors.ClientError); ok {
		msg = ce.Message
	}
	l.form.Error.SetText(msg)
	l.form.Error.RemoveClass("hidden")
}

func (l *Login) clearError() {
	l.form.Error.SetText("")
	l.form.Error.AddClass("hidden")
}

func (l *Login) restoreButton() {
	l.form.Submit.SetEnabled(true)
	l.form.Submit.SetText(labelSignIn)
}
