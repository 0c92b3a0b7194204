// Package catalog serves release metadata for download labels and update
// checks. Lookups go to Postgres with a Redis cache in front; without a
// database the service answers from a static release table.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	cerrors "riverside-client/internal/common/errors"
	"riverside-client/internal/common/logger"
)

// Release describes one downloadable build.
type Release struct {
	Version string  `json:"version"`
	Label   string  `json:"label"`
	SizeMB  float64 `json:"size_mb"`
}

const (
	latestCacheKey = "riverside:catalog:latest"

	latestQuery = `SELECT version, label, size_mb
		FROM releases
		ORDER BY released_at DESC
		LIMIT 1`

	byVersionQuery = `SELECT version, label, size_mb
		FROM releases
		WHERE version = $1`
)

// fallbackRelease answers when no database is configured.
var fallbackRelease = Release{Version: "2.1.4", Label: "Riverside v2.1.4", SizeMB: 48.2}

// Service is the cache-aside release lookup. db and cache may each be nil;
// a nil db serves the static fallback and a nil cache skips caching.
type Service struct {
	db       *sql.DB
	cache    *redis.Client
	cacheTTL time.Duration
	log      logger.Logger
}

func NewService(db *sql.DB, cache *redis.Client, cacheTTL time.Duration, log logger.Logger) *Service {
	return &Service{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// Latest returns the newest release. Cache problems degrade to a direct
// query; only a failed query is an error.
func (s *Service) Latest(ctx context.Context) (Release, error) {
	if s.db == nil {
		return fallbackRelease, nil
	}

	if rel, ok := s.cacheGet(ctx); ok {
		return rel, nil
	}

	var rel Release
	err := s.db.QueryRowContext(ctx, latestQuery).Scan(&rel.Version, &rel.Label, &rel.SizeMB)
	if err == sql.ErrNoRows {
		return Release{}, cerrors.NewReleaseNotFoundError("latest")
	}
	if err != nil {
		return Release{}, cerrors.NewCatalogQueryFailedError(err)
	}

	s.cacheSet(ctx, rel)
	return rel, nil
}

// ByVersion returns one release by exact version string. ByVersion is not
// cached; it backs admin tooling, not the download path.
func (s *Service) ByVersion(ctx context.Context, version string) (Release, error) {
	if s.db == nil {
		if version == fallbackRelease.Version {
			return fallbackRelease, nil
		}
		return Release{}, cerrors.NewReleaseNotFoundError(version)
	}

	var rel Release
	err := s.db.QueryRowContext(ctx, byVersionQuery, version).Scan(&rel.Version, &rel.Label, &rel.SizeMB)
	if err == sql.ErrNoRows {
		return Release{}, cerrors.NewReleaseNotFoundError(version)
	}
	if err != nil {
		return Release{}, cerrors.NewCatalogQueryFailedError(err)
	}
	return rel, nil
}

func (s *Service) cacheGet(ctx context.Context) (Release, bool) {
	if s.cache == nil {
		return Release{}, false
	}
	raw, err := s.cache.Get(ctx, latestCacheKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.WithError(err).Warn("catalog cache read failed", nil)
		}
		return Release{}, false
	}
	var rel Release
	if err := json.Unmarshal([]byte(raw), &rel); err != nil {
		s.log.WithError(err).Warn("catalog cache entry malformed", nil)
		return Release{}, false
	}
	return rel, true
}

func (s *Service) cacheSet(ctx context.Context, rel Release) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rel)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, latestCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.log.WithError(err).Warn("catalog cache write failed", nil)
	}
}
