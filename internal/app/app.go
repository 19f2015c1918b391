// Package app loads configuration and wires every component into a
// running bot process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreconfig "github.com/m3rciful/audiobot/core/config"
	coredatabase "github.com/m3rciful/audiobot/core/database"
	"github.com/m3rciful/audiobot/core/logger"
	coretelegram "github.com/m3rciful/audiobot/core/telegram"
	"github.com/m3rciful/audiobot/internal/audio"
	"github.com/m3rciful/audiobot/internal/bot"
	"github.com/m3rciful/audiobot/internal/health"
	"github.com/m3rciful/audiobot/internal/history"
	"github.com/m3rciful/audiobot/internal/scratch"
	"github.com/m3rciful/audiobot/internal/session"

	"github.com/joho/godotenv"
)

// Config is the full application configuration: the shared core section
// plus an optional database block.
type Config struct {
	coreconfig.Config `yaml:",inline"`
	Database          coredatabase.Config `yaml:"database"`
}

// LoadConfig reads the YAML file (optional), applies environment
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	core, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{Config: *core}
	if err := cfg.Database.FromEnv(); err != nil {
		return nil, fmt.Errorf("config: database env: %w", err)
	}
	return cfg, nil
}

// Run is the whole process lifecycle: config, logger, stores, health
// server, and the Telegram runtime. It blocks until SIGINT/SIGTERM.
func Run() error {
	// Missing .env is fine; containers inject env directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.InitLogger(&cfg.Config); err != nil {
		return fmt.Errorf("app: logger init: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()

	sessions, err := session.NewStore(cfg.Session)
	if err != nil {
		return err
	}
	defer sessions.Close()

	files, err := scratch.New(cfg.Storage)
	if err != nil {
		return err
	}
	go files.Run(ctx)

	proc := audio.NewProcessor(cfg.Processing)

	var jobs *history.Repo
	if cfg.Database.Enabled() {
		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := coredatabase.RunMigrations(cfg.Database); err != nil {
			return err
		}
		jobs = history.NewRepo(db)
	} else {
		logger.Info(ctx, "app", "history.disabled")
	}

	b := bot.New(&cfg.Config, sessions, proc, files, jobs)
	reg := coretelegram.NewRegistry()
	b.Register(reg)

	checkers := map[string]health.Checker{}
	if check := bot.RedisCheck(sessions); check != nil {
		checkers["redis"] = check
	}
	if jobs != nil {
		checkers["postgres"] = jobs.Ping
	}
	healthSrv := health.New(cfg.Health.Listen, checkers)
	go func() {
		if err := healthSrv.Run(); err != nil {
			logger.Error(ctx, "app", "health.fail",
				slog.String("err", err.Error()),
			)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = healthSrv.Shutdown(shutdownCtx)
	}()

	runOpts := coretelegram.RunOptions{
		Config:      &cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&cfg.Config, nil),
		Routes:      b.Routes(reg),
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			b.SetBot(rt.Bot)
			logger.Info(ctx, "app", "ready",
				slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.Info(ctx, "app", "shutdown")
			return nil
		},
	}

	if err := coretelegram.RunTelegram(ctx, runOpts); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
