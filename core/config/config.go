package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	File        string `yaml:"file" envconfig:"LOG_FILE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// SessionConfig controls the user session store.
type SessionConfig struct {
	// TTLMinutes is the idle time-to-live of a user session.
	TTLMinutes int `yaml:"ttl_minutes" envconfig:"SESSION_TTL_MINUTES"`
	// RedisURL switches the store from process-local memory to Redis.
	RedisURL string `yaml:"redis_url" envconfig:"REDIS_URL"`
	// SweepIntervalSeconds controls the memory store janitor; 0 -> default.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" envconfig:"SESSION_SWEEP_INTERVAL_SECONDS"`
}

// StorageConfig controls the scratch directory for in-flight audio files.
type StorageConfig struct {
	TempDir              string `yaml:"temp_dir" envconfig:"TEMP_DIR"`
	MaxAgeMinutes        int    `yaml:"max_age_minutes" envconfig:"TEMP_MAX_AGE_MINUTES"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes" envconfig:"TEMP_SWEEP_INTERVAL_MINUTES"`
}

// ProcessingConfig bounds the audio pipeline.
type ProcessingConfig struct {
	MaxFileSizeMB  int    `yaml:"max_file_size_mb" envconfig:"MAX_FILE_SIZE_MB"`
	MaxConcurrent  int    `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT"`
	FFmpegPath     string `yaml:"ffmpeg_path" envconfig:"FFMPEG_PATH"`
	FFprobePath    string `yaml:"ffprobe_path" envconfig:"FFPROBE_PATH"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"PROCESSING_TIMEOUT_SECONDS"`
}

// HealthConfig configures the liveness/readiness HTTP listener.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard messages (including media)
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the bot configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Session    SessionConfig    `yaml:"session"`
	Storage    StorageConfig    `yaml:"storage"`
	Processing ProcessingConfig `yaml:"processing"`
	Health     HealthConfig     `yaml:"health"`
}

// Load reads configuration from an optional YAML file and environment
// variables. A missing file is not an error: containerized deployments
// configure the bot entirely through the environment.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		case os.IsNotExist(err):
			// env-only configuration
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	if cfg.Session.TTLMinutes < 0 {
		return fmt.Errorf("session.ttl_minutes must be >= 0")
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = 30
	}

	if cfg.Storage.TempDir == "" {
		cfg.Storage.TempDir = "/app/temp"
	}
	if cfg.Storage.MaxAgeMinutes < 0 {
		return fmt.Errorf("storage.max_age_minutes must be >= 0")
	}
	if cfg.Storage.MaxAgeMinutes == 0 {
		cfg.Storage.MaxAgeMinutes = 60
	}
	if cfg.Storage.SweepIntervalMinutes <= 0 {
		cfg.Storage.SweepIntervalMinutes = 10
	}

	if cfg.Processing.MaxFileSizeMB < 0 {
		return fmt.Errorf("processing.max_file_size_mb must be >= 0")
	}
	if cfg.Processing.MaxFileSizeMB == 0 {
		cfg.Processing.MaxFileSizeMB = 50
	}
	if cfg.Processing.MaxConcurrent <= 0 {
		cfg.Processing.MaxConcurrent = 2
	}
	if cfg.Processing.FFmpegPath == "" {
		cfg.Processing.FFmpegPath = "ffmpeg"
	}
	if cfg.Processing.FFprobePath == "" {
		cfg.Processing.FFprobePath = "ffprobe"
	}
	if cfg.Processing.TimeoutSeconds <= 0 {
		cfg.Processing.TimeoutSeconds = 120
	}

	if strings.TrimSpace(cfg.Health.Listen) == "" {
		cfg.Health.Listen = ":80"
	}

	return nil
}

// MaxFileSizeBytes returns the upload cap in bytes.
func (p ProcessingConfig) MaxFileSizeBytes() int64 {
	return int64(p.MaxFileSizeMB) << 20
}
