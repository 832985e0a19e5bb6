// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Browser BrowserConfig `mapstructure:"browser"`
	Cache   CacheConfig   `mapstructure:"cache"`
	DB      DBConfig      `mapstructure:"db"`
	Storage StorageConfig `mapstructure:"storage"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Health  HealthConfig  `mapstructure:"health"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// BrowserConfig governs the shared headless browser.
type BrowserConfig struct {
	PoolSize        int `mapstructure:"pool_size"`
	QueueTimeoutSec int `mapstructure:"queue_timeout_seconds"`
	FetchTimeoutSec int `mapstructure:"fetch_timeout_seconds"`
}

// CacheConfig selects the robots cache backend. An empty RedisURL falls
// back to the in-process cache.
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url"`
}

// DBConfig controls the health report store. An empty DSN keeps reports
// in memory only.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// StorageConfig selects where fetch artifacts go. GCSBucket wins when
// set; otherwise LocalDir; otherwise artifacts stay in memory.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
}

// PubSubConfig holds metadata for pipeline event publishing. An empty
// ProjectID keeps events in the in-process publisher.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
}

// HealthConfig schedules periodic health runs under serve.
type HealthConfig struct {
	CronSpec string `mapstructure:"cron_spec"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment (prefix JOBSCOUT).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("browser.pool_size", 3)
	v.SetDefault("browser.queue_timeout_seconds", 60)
	v.SetDefault("browser.fetch_timeout_seconds", 30)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("health.cron_spec", "0 */6 * * *")
	v.SetDefault("logging.development", false)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Browser.PoolSize <= 0 {
		return fmt.Errorf("browser.pool_size must be positive, got %d", c.Browser.PoolSize)
	}
	if c.Browser.QueueTimeoutSec <= 0 {
		return fmt.Errorf("browser.queue_timeout_seconds must be positive, got %d", c.Browser.QueueTimeoutSec)
	}
	if c.Browser.FetchTimeoutSec <= 0 {
		return fmt.Errorf("browser.fetch_timeout_seconds must be positive, got %d", c.Browser.FetchTimeoutSec)
	}
	if c.Health.CronSpec == "" {
		return fmt.Errorf("health.cron_spec is required")
	}
	return nil
}
