// Package session persists the logged-in user across restarts. A session is
// a small JSON record under a fixed storage key and expires 24 hours after
// it was written.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"riverside-client/internal/common/config"
	cerrors "riverside-client/internal/common/errors"
	"riverside-client/internal/common/logger"
	"riverside-client/internal/common/metrics"
	"riverside-client/internal/common/storage"
)

// Record is the persisted session shape. Timestamp is RFC 3339 so records
// written by older builds stay readable.
type Record struct {
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// recordSchema rejects records whose shape drifted, before any field is
// trusted. Unknown extra fields are tolerated.
const recordSchema = `{
	"type": "object",
	"required": ["username", "timestamp"],
	"properties": {
		"username":  {"type": "string", "minLength": 1},
		"timestamp": {"type": "string", "minLength": 1}
	}
}`

// Store loads, saves and clears the session record.
type Store struct {
	backend  storage.Store
	cfg      config.SessionConfig
	log      logger.Logger
	schema   *gojsonschema.Schema
	duration time.Duration
	now      func() time.Time
}

func New(backend storage.Store, cfg config.SessionConfig, log logger.Logger) *Store {
	return NewWithClock(backend, cfg, log, time.Now)
}

// NewWithClock takes the clock used for expiry checks and new timestamps.
func NewWithClock(backend storage.Store, cfg config.SessionConfig, log logger.Logger, now func() time.Time) *Store {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	if err != nil {
		// The schema is a compile-time constant; failing to parse it is a
		// programming error.
		panic("session: invalid record schema: " + err.Error())
	}
	return &Store{
		backend:  backend,
		cfg:      cfg,
		log:      log.WithFields(map[string]interface{}{"component": "session"}),
		schema:   schema,
		duration: time.Duration(cfg.DurationHours) * time.Hour,
		now:      now,
	}
}

// Load returns the stored session if one exists and is still live. Records
// that are malformed, expired or stamped in the future are cleared from
// storage and reported as absent. Load never returns an error to callers:
// a broken session is the same as no session.
func (s *Store) Load(ctx context.Context) (Record, bool) {
	raw, err := s.backend.Get(ctx, s.cfg.LoginKey)
	if err != nil {
		if err != storage.ErrNotFound {
			s.log.WithError(cerrors.NewSessionLoadFailedError(err)).Warn("session read failed", nil)
			metrics.SessionLoads.WithLabelValues("error").Inc()
		} else {
			metrics.SessionLoads.WithLabelValues("absent").Inc()
		}
		return Record{}, false
	}

	rec, ok := s.decode(raw)
	if !ok {
		s.discard(ctx, "malformed")
		return Record{}, false
	}

	stamped, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		s.discard(ctx, "malformed")
		return Record{}, false
	}

	age := s.now().Sub(stamped)
	if age < 0 {
		// A timestamp from the future means a clock jumped; the record's
		// real age is unknowable.
		s.discard(ctx, "future")
		return Record{}, false
	}
	if age >= s.duration {
		s.discard(ctx, "expired")
		return Record{}, false
	}

	metrics.SessionLoads.WithLabelValues("live").Inc()
	return rec, true
}

func (s *Store) decode(raw string) (Record, bool) {
	result, err := s.schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil || !result.Valid() {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false
	}
	return rec, true
}

func (s *Store) discard(ctx context.Context, reason string) {
	s.log.Warn("discarding stored session", map[string]interface{}{"reason": reason})
	metrics.SessionLoads.WithLabelValues(reason).Inc()
	if err := s.backend.Delete(ctx, s.cfg.LoginKey); err != nil {
		s.log.WithError(err).Warn("failed to clear stale session", nil)
	}
}

// Save writes a fresh session record stamped with the current time. When
// the first write fails, every key except the session and theme keys is
// evicted and the write retried once. A second failure returns
// SESSION_SAVE_FAILED and leaves no partial record behind.
func (s *Store) Save(ctx context.Context, username string) error {
	rec := Record{Username: username, Timestamp: s.now().Format(time.RFC3339)}
	raw, err := json.Marshal(rec)
	if err != nil {
		return cerrors.NewSessionSaveFailedError(err)
	}

	if err := s.backend.Set(ctx, s.cfg.LoginKey, string(raw)); err == nil {
		return nil
	} else {
		s.log.WithError(err).Warn("session write failed, evicting non-essential keys", nil)
	}

	s.evictNonEssential(ctx)

	if err := s.backend.Set(ctx, s.cfg.LoginKey, string(raw)); err != nil {
		return cerrors.NewSessionSaveFailedError(err)
	}
	return nil
}

// evictNonEssential frees storage by dropping everything but the session
// and theme keys.
func (s *Store) evictNonEssential(ctx context.Context) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		s.log.WithError(err).Warn("could not enumerate keys for eviction", nil)
		return
	}
	var victims []string
	for _, k := range keys {
		if k == s.cfg.LoginKey || k == s.cfg.ThemeKey {
			continue
		}
		victims = append(victims, k)
	}
	if len(victims) == 0 {
		return
	}
	if err := s.backend.Delete(ctx, victims...); err != nil {
		s.log.WithError(err).Warn("eviction failed", map[string]interface{}{"keys": len(victims)})
		return
	}
	s.log.Info("evicted non-essential keys", map[string]interface{}{"count": len(victims)})
}

// Clear removes the stored session. Missing records are not an error.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, s.cfg.LoginKey); err != nil {
		return cerrors.NewSessionSaveFailedError(err)
	}
	return nil
}
