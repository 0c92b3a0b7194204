// cmd/riverside/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"riverside-client/internal/actions"
	"riverside-client/internal/catalog"
	"riverside-client/internal/common/config"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/observability"
	"riverside-client/internal/common/storage"
	"riverside-client/internal/dashboard"
	"riverside-client/internal/pages"
	"riverside-client/internal/session"
	"riverside-client/internal/theme"
	"riverside-client/internal/timers"
	"riverside-client/internal/transition"
	"riverside-client/internal/view"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting riverside client controller...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init storage ---
	var store storage.Store
	if cfg.Storage.InMemory {
		store = storage.NewMemory()
		zapLog.Info("Using in-memory storage")
	} else {
		var redisStore *storage.RedisStore
		err = retryWithBackoff(func() error {
			redisStore = storage.NewRedis(cfg.Storage.Redis)
			return redisStore.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		store = redisStore
		zapLog.Info("Redis connected successfully")
	}
	defer store.Close()

	// --- Init release catalog ---
	var db *sql.DB
	if cfg.Catalog.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			db, err = sql.Open("postgres", cfg.Catalog.Postgres.GetDSN())
			if err != nil {
				return err
			}
			return db.PingContext(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer db.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	var catalogCache *redis.Client
	if rs, ok := store.(*storage.RedisStore); ok {
		catalogCache = rs.GetClient()
	}
	cacheTTL := time.Duration(cfg.Catalog.CacheTTLSec) * time.Second
	releases := catalog.NewService(db, catalogCache, cacheTTL, log)

	// --- Build the view surface ---
	// The controller runs headless here; a UI embedding constructs its own
	// element implementations and passes them in the same way.
	root := view.NewBasicElement()
	themeToggle := view.NewBasicElement()
	location := view.NewBasicLocation()
	viewport := view.BasicViewport{}
	loginModal := view.NewBasicModal()
	notifier := view.LogNotifier{Log: log}

	containers := map[pages.PageID]view.Element{
		pages.PageHome:      view.NewBasicElement(),
		pages.PageFeatures:  view.NewBasicElement(),
		pages.PageDownloads: view.NewBasicElement(),
		pages.PageSupport:   view.NewBasicElement(),
		pages.PageDashboard: view.NewBasicElement(),
	}

	// --- Wire the controller ---
	reg := timers.New(log)
	sessions := session.New(store, cfg.Session, log)
	engine := transition.NewEngine(reg, cfg.Durations, log)
	machine := pages.NewMachine(engine, reg, cfg, log, location, viewport, loginModal, containers)
	machine.SetDownloadsSections(view.NewBasicElement(), view.NewBasicElement())

	feed := dashboard.NewMemoryFeed(cfg.Dashboard.MaxActivityItems)
	loop := dashboard.NewLoop(reg, cfg, log, nil, feed,
		view.NewBasicElement(), view.NewBasicElement(), view.NewBasicElement())
	loop.SetHeader(view.NewBasicElement(), view.NewBasicElement())
	machine.SetDashboard(loop)

	form := actions.LoginForm{
		Username: view.NewBasicElement(),
		Password: view.NewBasicElement(),
		Submit:   view.NewBasicElement(),
		Error:    view.NewBasicElement(),
	}
	form.Submit.SetText("Sign In")
	login := actions.NewLogin(reg, sessions, machine, cfg, log, obs, notifier, loginModal, form)
	logout := actions.NewLogout(reg, sessions, machine, log, notifier)
	sims := actions.NewSimulators(reg, machine, cfg, log, obs, notifier, loginModal, releases, nil)

	themes := theme.NewManager(store, cfg.Session, log, root, themeToggle)
	themes.Init(ctx)

	// --- Restore session and perform the initial navigation ---
	if rec, ok := sessions.Load(ctx); ok {
		machine.SetLoggedIn(rec.Username)
		zapLog.Info("Session restored", zap.String("username", rec.Username))
	}
	machine.Startup()

	// --- Control & Metrics Server ---
	// The controller runs headless, so the demo surface is a small HTTP
	// API that drives the same flows a UI embedding would.
	if cfg.Metrics.Enabled {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
				s := machine.Session()
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]interface{}{
					"page":       string(machine.Current()),
					"logged_in":  s.LoggedIn,
					"username":   s.Username,
					"theme":      themes.Current(),
					"modal_open": loginModal.IsOpen(),
					"activity":   feed.Items(),
				})
			})
			http.HandleFunc("/api/navigate", func(w http.ResponseWriter, r *http.Request) {
				machine.NavigateTo(pages.PageID(r.URL.Query().Get("page")))
				w.WriteHeader(http.StatusAccepted)
			})
			http.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				var body struct {
					Username string `json:"username"`
					Password string `json:"password"`
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				form.Username.SetValue(body.Username)
				form.Password.SetValue(body.Password)
				login.Submit(r.Context())
				w.WriteHeader(http.StatusAccepted)
			})
			http.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
				logout.Run(r.Context())
				w.WriteHeader(http.StatusAccepted)
			})
			http.HandleFunc("/api/theme/toggle", func(w http.ResponseWriter, r *http.Request) {
				themes.Toggle(r.Context())
				w.WriteHeader(http.StatusAccepted)
			})
			http.HandleFunc("/api/actions/download", func(w http.ResponseWriter, r *http.Request) {
				sims.Download(r.Context(), view.NewBasicElement())
				w.WriteHeader(http.StatusAccepted)
			})
			http.HandleFunc("/api/actions/launch-loader", func(w http.ResponseWriter, r *http.Request) {
				sims.LaunchLoader(view.NewBasicElement())
				w.WriteHeader(http.StatusAccepted)
			})
			http.HandleFunc("/api/actions/check-updates", func(w http.ResponseWriter, r *http.Request) {
				sims.CheckForUpdates(view.NewBasicElement())
				w.WriteHeader(http.StatusAccepted)
			})
			http.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			zapLog.Info("Control/Metrics server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				zapLog.Error("Control/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping timers...")
	reg.CancelAll()
	zapLog.Info("Shutdown complete")
}
