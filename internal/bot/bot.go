// Package bot wires the Telegram surface: commands, the action menu and
// the upload pipeline.
package bot

import (
	"context"
	"errors"
	"log/slog"

	coreconfig "github.com/m3rciful/audiobot/core/config"
	"github.com/m3rciful/audiobot/core/logger"
	coretelegram "github.com/m3rciful/audiobot/core/telegram"
	"github.com/m3rciful/audiobot/core/telegram/commands"
	"github.com/m3rciful/audiobot/core/telegram/router"
	"github.com/m3rciful/audiobot/internal/audio"
	"github.com/m3rciful/audiobot/internal/history"
	"github.com/m3rciful/audiobot/internal/scratch"
	"github.com/m3rciful/audiobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// Bot holds every dependency the handlers need.
type Bot struct {
	cfg      *coreconfig.Config
	sessions session.Store
	proc     *audio.Processor
	files    *scratch.Dir
	jobs     *history.Repo // nil when no database is configured

	tg *tele.Bot
}

// New assembles the bot. jobs may be nil to disable history.
func New(cfg *coreconfig.Config, sessions session.Store, proc *audio.Processor, files *scratch.Dir, jobs *history.Repo) *Bot {
	return &Bot{
		cfg:      cfg,
		sessions: sessions,
		proc:     proc,
		files:    files,
		jobs:     jobs,
	}
}

// SetBot stores the live bot handle once the runtime is up. The handle is
// needed for file downloads, which tele.Context does not expose.
func (b *Bot) SetBot(tg *tele.Bot) {
	b.tg = tg
}

// Register wires commands and callbacks into the registry.
func (b *Bot) Register(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.handleStart,
		Description: "Show the processing menu",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     b.handleHelp,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.handleCancel,
		Description: "Drop the pending action",
	})
	reg.RegisterCommand("/history", commands.Command{
		Handler:     b.handleHistory,
		Description: "Your recent jobs",
		Hidden:      b.jobs == nil,
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.handleStats,
		Description: "Global processing totals",
		AdminOnly:   true,
		Hidden:      true,
	})

	mustRegisterCallback(reg, cbAction, b.handleActionCallback)
	mustRegisterCallback(reg, cbHelp, b.handleHelp)
	mustRegisterCallback(reg, cbCancel, b.handleCancel)

	reg.SetTextFallback(b.handleUnknownText)
}

// Routes builds the full route table.
func (b *Bot) Routes(reg *coretelegram.Registry) []coretelegram.Route {
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: b.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.MediaRoutes(reg, router.MediaOptions{
		OnAudio: b.handleMedia,
	})...)
	return routes
}

func mustRegisterCallback(reg *coretelegram.Registry, key string, h tele.HandlerFunc) {
	if err := reg.RegisterCallback(key, h); err != nil {
		logger.Warn(logger.Background(), "bot", "callback.register.fail",
			slog.String("cb_key", key),
			slog.String("err", err.Error()),
		)
	}
}

// RedisCheck returns a readiness checker for the session store when it is
// backed by Redis, nil otherwise.
func RedisCheck(store session.Store) func(ctx context.Context) error {
	rs, ok := store.(*session.RedisStore)
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		_, err := rs.Get(ctx, 0)
		if errors.Is(err, session.ErrNotFound) {
			return nil
		}
		return err
	}
}
