package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Store
		Stats
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Store struct {
		// PrefixWildcardsSupported enables storing reversed
		// expression/reading forms for prefix-wildcard search.
		PrefixWildcardsSupported bool
		// ImportBatchSize is the number of terms inserted per batch.
		ImportBatchSize int
	}

	Stats struct {
		RefreshEnabled  bool
		RefreshSchedule string // Cron format: "*/5 * * * *" = every 5 minutes
	}

	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Store defaults
	v.SetDefault("store_prefix_wildcards", false)
	v.SetDefault("store_import_batch_size", 500)

	// Stats refresh defaults
	v.SetDefault("stats_refresh_enabled", true)
	v.SetDefault("stats_refresh_schedule", "*/5 * * * *") // Every 5 minutes

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Store: Store{
			PrefixWildcardsSupported: v.GetBool("STORE_PREFIX_WILDCARDS"),
			ImportBatchSize:          v.GetInt("STORE_IMPORT_BATCH_SIZE"),
		},
		Stats: Stats{
			RefreshEnabled:  v.GetBool("STATS_REFRESH_ENABLED"),
			RefreshSchedule: v.GetString("STATS_REFRESH_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
