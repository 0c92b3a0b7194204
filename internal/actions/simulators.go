package actions

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"riverside-client/internal/catalog"
	"riverside-client/internal/common/config"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/metrics"
	"riverside-client/internal/common/observability"
	"riverside-client/internal/pages"
	"riverside-client/internal/timers"
	"riverside-client/internal/view"
)

// Rand is the float randomness source for simulated outcomes.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// failure draw thresholds for the simulated outcomes.
const (
	downloadFailureAbove = 0.95
	updateAvailableAbove = 0.5
)

// ReleaseResolver names the release a download should advertise.
type ReleaseResolver interface {
	Latest(ctx context.Context) (catalog.Release, error)
}

// Simulators implements the latency-simulated one-shot actions: download,
// loader launch and update check. Each runs its outcome on a global-tagged
// timer so logout cancels anything in flight.
type Simulators struct {
	reg      *timers.Registry
	machine  *pages.Machine
	cfg      *config.Config
	log      logger.Logger
	obs      *observability.Observability
	notifier view.Notifier
	modal    view.Modal
	releases ReleaseResolver
	rand     Rand
}

func NewSimulators(
	reg *timers.Registry,
	machine *pages.Machine,
	cfg *config.Config,
	log logger.Logger,
	obs *observability.Observability,
	notifier view.Notifier,
	modal view.Modal,
	releases ReleaseResolver,
	rnd Rand,
) *Simulators {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulators{
		reg:      reg,
		machine:  machine,
		cfg:      cfg,
		log:      log.WithFields(map[string]interface{}{"component": "simulators"}),
		obs:      obs,
		notifier: notifier,
		modal:    modal,
		releases: releases,
		rand:     rnd,
	}
}

// Download simulates fetching a release. Unauthenticated users are bounced
// to the login modal instead. A small fraction of downloads fail to keep
// the error path exercised.
func (s *Simulators) Download(ctx context.Context, button view.Element) {
	if !s.machine.Session().LoggedIn {
		metrics.LoginGateBlocks.Inc()
		s.modal.Open()
		s.record("download", "gated", time.Now())
		return
	}

	started := time.Now()
	original := button.Text()
	button.SetEnabled(false)
	button.SetText("Preparing download...")

	// The catalog lookup runs after the caller has returned; drop the
	// caller's cancelation so a finished HTTP request cannot poison it.
	deferred := context.WithoutCancel(ctx)

	delay := config.GetDuration(s.cfg.Durations.Download)
	s.reg.Schedule(func() {
		if s.rand.Float64() > downloadFailureAbove {
			button.SetText("Download Failed")
			s.notifier.Notify("Download failed. Please try again.", "error")
			s.log.Warn("simulated download failure", nil)
			s.record("download", "failure", started)
		} else {
			label := s.releaseLabel(deferred)
			button.SetText("Download Complete!")
			s.notifier.Notify(fmt.Sprintf("Downloading %s...", label), "success")
			s.record("download", "success", started)
		}
		s.restoreLater(button, original)
	}, delay)
}

// restoreLater returns the control to its idle label once the outcome has
// been visible for the notification display window.
func (s *Simulators) restoreLater(button view.Element, original string) {
	s.reg.Schedule(func() {
		button.SetText(original)
		button.SetEnabled(true)
	}, config.GetDuration(s.cfg.Durations.Notification))
}

// releaseLabel asks the catalog for the latest release; a broken catalog
// falls back to a generic label rather than blocking the download.
func (s *Simulators) releaseLabel(ctx context.Context) string {
	if s.releases == nil {
		return "Riverside"
	}
	rel, err := s.releases.Latest(ctx)
	if err != nil {
		s.log.WithError(err).Warn("release lookup failed, using fallback label", nil)
		return "Riverside"
	}
	return rel.Label
}

// LaunchLoader simulates starting the desktop loader.
func (s *Simulators) LaunchLoader(button view.Element) {
	started := time.Now()
	original := button.Text()
	button.SetEnabled(false)
	button.SetText("Launching...")

	delay := config.GetDuration(s.cfg.Durations.LoaderLaunch)
	s.reg.Schedule(func() {
		button.SetText("Launched!")
		s.notifier.Notify("Loader launched successfully!", "success")
		s.record("loader_launch", "success", started)
		s.restoreLater(button, original)
	}, delay)
}

// CheckForUpdates simulates polling the release channel. The outcome is a
// coin flip weighted toward "up to date".
func (s *Simulators) CheckForUpdates(button view.Element) {
	started := time.Now()
	original := button.Text()
	button.SetEnabled(false)
	button.SetText("Checking...")

	delay := config.GetDuration(s.cfg.Durations.UpdateCheck)
	s.reg.Schedule(func() {
		if s.rand.Float64() > updateAvailableAbove {
			button.SetText("Update Available!")
			s.notifier.Notify("A new version is available!", "info")
			s.record("update_check", "update_available", started)
		} else {
			button.SetText("Up to Date")
			s.notifier.Notify("You're running the latest version", "success")
			s.record("update_check", "up_to_date", started)
		}
		s.restoreLater(button, original)
	}, delay)
}

func (s *Simulators) record(action, outcome string, started time.Time) {
	metrics.ActionsTotal.WithLabelValues(action, outcome).Inc()
	if s.obs != nil {
		ctx := context.Background()
		s.obs.RecordAction(ctx, action, outcome)
		s.obs.RecordActionDuration(ctx, action, time.Since(started))
	}
}
