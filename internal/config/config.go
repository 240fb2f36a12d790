package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Sync     SyncConfig     `mapstructure:"sync" validate:"required"`
	Governor GovernorConfig `mapstructure:"governor" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"required,gt=0"`
}

// SyncConfig contains reconciliation scheduling settings. The interval
// drives the periodic background sweep; event-driven syncs fire on top
// of it.
type SyncConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required"`
}

// GovernorConfig contains rank governor scheduling settings. The
// evaluation itself is tuned in the rank package; this only controls
// when the nightly sweep runs.
type GovernorConfig struct {
	SweepCron string `mapstructure:"sweep_cron" validate:"required"`
}
