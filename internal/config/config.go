// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds the full application configuration.
type Config struct {
	DB     DBConfig
	Server ServerConfig
	S3     S3Config
	Worker WorkerConfig
}

// DBConfig holds PostgreSQL connection parameters.
type DBConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	DBName  string
	SSLMode string
}

// DSN returns a PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Pass +
		"@" + c.Host + ":" + strconv.Itoa(c.Port) +
		"/" + c.DBName + "?sslmode=" + c.SSLMode
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port string
	Host string
	// APIToken protects mutating endpoints. Empty disables the check,
	// for local development only.
	APIToken string
}

// Addr returns the full listen address (host:port).
func (c ServerConfig) Addr() string {
	return c.Host + c.Port
}

// S3Config holds S3-compatible object storage parameters for the document
// archive.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// WorkerConfig holds the background refresh parameters.
type WorkerConfig struct {
	// RefreshSpec is the cron expression for the backend refresh job.
	RefreshSpec string
	// PruneSpec is the cron expression for the snapshot pruning job.
	PruneSpec string
	// SnapshotRetentionDays is how long superseded snapshots are kept.
	SnapshotRetentionDays int
	// MaxDailyDownloads caps automatic document downloads per day.
	MaxDailyDownloads int
	// BackendsFile optionally points at a YAML file declaring backends
	// to sync into the database at startup.
	BackendsFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DB: DBConfig{
			Host:    envOr("DB_HOST", "localhost"),
			Port:    envOrInt("DB_PORT", 5432),
			User:    envOr("DB_USER", "gleaner"),
			Pass:    envOr("DB_PASS", "gleaner"),
			DBName:  envOr("DB_NAME", "gleaner"),
			SSLMode: envOr("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:     envOr("SERVER_PORT", ":8080"),
			Host:     envOr("SERVER_HOST", ""),
			APIToken: envOr("API_TOKEN", ""),
		},
		S3: S3Config{
			Endpoint:  envOr("S3_ENDPOINT", ""),
			Bucket:    envOr("S3_BUCKET", "gleaner-archive"),
			AccessKey: envOr("S3_ACCESS_KEY", ""),
			SecretKey: envOr("S3_SECRET_KEY", ""),
			Region:    envOr("S3_REGION", "us-east-1"),
		},
		Worker: WorkerConfig{
			RefreshSpec:           envOr("REFRESH_CRON", "0 */6 * * *"),
			PruneSpec:             envOr("PRUNE_CRON", "0 3 * * *"),
			SnapshotRetentionDays: envOrInt("SNAPSHOT_RETENTION_DAYS", 90),
			MaxDailyDownloads:     envOrInt("MAX_DAILY_DOWNLOADS", 200),
			BackendsFile:          envOr("BACKENDS_FILE", ""),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
