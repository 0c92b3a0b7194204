// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Durations DurationConfig  `mapstructure:"durations"`
	Session   SessionConfig   `mapstructure:"session"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DurationConfig holds every animation/simulation delay. All values are in
// milliseconds, converted with GetDuration at the point of use.
type DurationConfig struct {
	PageTransition   int `mapstructure:"page_transition"`
	TransitionSettle int `mapstructure:"transition_settle"`
	CounterInterval  int `mapstructure:"counter_interval"`
	Notification     int `mapstructure:"notification"`
	Login            int `mapstructure:"login"`
	LoaderLaunch     int `mapstructure:"loader_launch"`
	UpdateCheck      int `mapstructure:"update_check"`
	Download         int `mapstructure:"download"`
	DashboardSettle  int `mapstructure:"dashboard_settle"`
	ActivityUpdate   int `mapstructure:"activity_update"`
}

// SessionConfig holds the login session and credential validation settings.
type SessionConfig struct {
	DurationHours     int    `mapstructure:"duration_hours"`
	MinUsernameLength int    `mapstructure:"min_username_length"`
	MinPasswordLength int    `mapstructure:"min_password_length"`
	DemoUsername      string `mapstructure:"demo_username"`
	DemoPassword      string `mapstructure:"demo_password"`
	LoginKey          string `mapstructure:"login_key"`
	ThemeKey          string `mapstructure:"theme_key"`
}

// DashboardConfig holds the mock statistic ranges and activity feed limits.
type DashboardConfig struct {
	OnlineUsersBase    int `mapstructure:"online_users_base"`
	OnlineUsersRange   int `mapstructure:"online_users_range"`
	LoadsTodayBase     int `mapstructure:"loads_today_base"`
	LoadsTodayRange    int `mapstructure:"loads_today_range"`
	TotalDownloadsBase int `mapstructure:"total_downloads_base"`
	TotalDownloadsRng  int `mapstructure:"total_downloads_range"`
	CounterSteps       int `mapstructure:"counter_steps"`
	MaxActivityItems   int `mapstructure:"max_activity_items"`
}

type StorageConfig struct {
	InMemory bool        `mapstructure:"in_memory"`
	Redis    RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CatalogConfig holds the release catalog settings for the downloads page.
type CatalogConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	CacheTTLSec int            `mapstructure:"cache_ttl_seconds"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}
