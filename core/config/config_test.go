package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Session.TTLMinutes != 30 {
		t.Errorf("session ttl = %d, want 30", cfg.Session.TTLMinutes)
	}
	if cfg.Storage.MaxAgeMinutes != 60 {
		t.Errorf("temp max age = %d, want 60", cfg.Storage.MaxAgeMinutes)
	}
	if cfg.Storage.TempDir != "/app/temp" {
		t.Errorf("temp dir = %q, want /app/temp", cfg.Storage.TempDir)
	}
	if cfg.Processing.MaxFileSizeMB != 50 {
		t.Errorf("max file size = %d, want 50", cfg.Processing.MaxFileSizeMB)
	}
	if cfg.Processing.MaxConcurrent != 2 {
		t.Errorf("max concurrent = %d, want 2", cfg.Processing.MaxConcurrent)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	err := Normalize(cfg)
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	if !strings.Contains(err.Error(), "BOT_TOKEN") {
		t.Errorf("error %q does not mention BOT_TOKEN", err)
	}
}

func TestNormalizeWebhookValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "webhook"
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}

	cfg = validConfig()
	cfg.Telegram.RunMode = "webhook"
	cfg.Webhook = WebhookConfig{URL: "https://bot.example.com", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Errorf("run_mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
}

func TestNormalizeRateLimitExcludes(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != "callback" {
		t.Errorf("exclude[0] = %q, want callback", cfg.RateLimit.ExcludeUpdates[0])
	}

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unsupported exclude value")
	}
}

func TestMaxFileSizeBytes(t *testing.T) {
	p := ProcessingConfig{MaxFileSizeMB: 50}
	if got := p.MaxFileSizeBytes(); got != 50*1024*1024 {
		t.Errorf("MaxFileSizeBytes = %d, want %d", got, 50*1024*1024)
	}
}
