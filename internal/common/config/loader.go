// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like STORAGE_REDIS_ADDRESS
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Default returns a fully defaulted configuration without touching the
// filesystem. Tests build on this.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for optional configuration fields.
// The duration and range defaults are the reference client's constants.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "riverside-client"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "2.1.4"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Durations.PageTransition == 0 {
		cfg.Durations.PageTransition = 300
	}
	if cfg.Durations.TransitionSettle == 0 {
		cfg.Durations.TransitionSettle = 50
	}
	if cfg.Durations.CounterInterval == 0 {
		cfg.Durations.CounterInterval = 30
	}
	if cfg.Durations.Notification == 0 {
		cfg.Durations.Notification = 3000
	}
	if cfg.Durations.Login == 0 {
		cfg.Durations.Login = 800
	}
	if cfg.Durations.LoaderLaunch == 0 {
		cfg.Durations.LoaderLaunch = 2000
	}
	if cfg.Durations.UpdateCheck == 0 {
		cfg.Durations.UpdateCheck = 1500
	}
	if cfg.Durations.Download == 0 {
		cfg.Durations.Download = 2000
	}
	if cfg.Durations.DashboardSettle == 0 {
		cfg.Durations.DashboardSettle = 500
	}
	if cfg.Durations.ActivityUpdate == 0 {
		cfg.Durations.ActivityUpdate = 30000
	}

	if cfg.Session.DurationHours == 0 {
		cfg.Session.DurationHours = 24
	}
	if cfg.Session.MinUsernameLength == 0 {
		cfg.Session.MinUsernameLength = 3
	}
	if cfg.Session.MinPasswordLength == 0 {
		cfg.Session.MinPasswordLength = 3
	}
	if cfg.Session.DemoUsername == "" {
		cfg.Session.DemoUsername = "admin"
	}
	if cfg.Session.DemoPassword == "" {
		cfg.Session.DemoPassword = "admin"
	}
	if cfg.Session.LoginKey == "" {
		cfg.Session.LoginKey = "Riverside-login"
	}
	if cfg.Session.ThemeKey == "" {
		cfg.Session.ThemeKey = "Riverside-theme"
	}

	if cfg.Dashboard.OnlineUsersBase == 0 {
		cfg.Dashboard.OnlineUsersBase = 1000
	}
	if cfg.Dashboard.OnlineUsersRange == 0 {
		cfg.Dashboard.OnlineUsersRange = 2000
	}
	if cfg.Dashboard.LoadsTodayBase == 0 {
		cfg.Dashboard.LoadsTodayBase = 500
	}
	if cfg.Dashboard.LoadsTodayRange == 0 {
		cfg.Dashboard.LoadsTodayRange = 1000
	}
	if cfg.Dashboard.TotalDownloadsBase == 0 {
		cfg.Dashboard.TotalDownloadsBase = 10000
	}
	if cfg.Dashboard.TotalDownloadsRng == 0 {
		cfg.Dashboard.TotalDownloadsRng = 5000
	}
	if cfg.Dashboard.CounterSteps == 0 {
		cfg.Dashboard.CounterSteps = 50
	}
	if cfg.Dashboard.MaxActivityItems == 0 {
		cfg.Dashboard.MaxActivityItems = 10
	}

	if cfg.Storage.Redis.Address == "" {
		cfg.Storage.Redis.Address = "localhost:6379"
	}

	if cfg.Catalog.CacheTTLSec == 0 {
		cfg.Catalog.CacheTTLSec = 300
	}
	if cfg.Catalog.Postgres.Port == 0 {
		cfg.Catalog.Postgres.Port = 5432
	}
	if cfg.Catalog.Postgres.SSLMode == "" {
		cfg.Catalog.Postgres.SSLMode = "disable"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9102
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !cfg.Storage.InMemory && cfg.Storage.Redis.Address == "" {
		return fmt.Errorf("storage.redis.address is required")
	}

	if cfg.Catalog.Enabled {
		if cfg.Catalog.Postgres.Host == "" {
			return fmt.Errorf("catalog.postgres.host is required")
		}
		if cfg.Catalog.Postgres.Database == "" {
			return fmt.Errorf("catalog.postgres.database is required")
		}
		if cfg.Catalog.Postgres.User == "" {
			return fmt.Errorf("catalog.postgres.user is required")
		}
	}

	if cfg.Session.DurationHours < 1 {
		return fmt.Errorf("session.duration_hours must be at least 1")
	}

	if cfg.Dashboard.MaxActivityItems < 1 {
		return fmt.Errorf("dashboard.max_activity_items must be at least 1")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
