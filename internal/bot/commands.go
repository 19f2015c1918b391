package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/audiobot/core/logger"
	tghelpers "github.com/m3rciful/audiobot/core/telegram/helpers"
	"github.com/m3rciful/audiobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	logger.Info(ctx, "bot", "start",
		slog.String("username", senderUsername(c)),
	)
	return tghelpers.SendMD(c, msgWelcome, menuMarkup())
}

func (b *Bot) handleHelp(c tele.Context) error {
	return tghelpers.SendMD(c, msgHelp, menuMarkup())
}

func (b *Bot) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	if _, err := b.sessions.Get(ctx, userID); errors.Is(err, session.ErrNotFound) {
		return tghelpers.SendText(c, msgNothingToDo)
	}
	if err := b.sessions.Delete(ctx, userID); err != nil {
		return err
	}
	return tghelpers.SendMD(c, msgCancelled, menuMarkup())
}

func (b *Bot) handleHistory(c tele.Context) error {
	if b.jobs == nil {
		return tghelpers.SendText(c, "History is not enabled on this bot.")
	}

	ctx := tghelpers.BuildContext(c)
	jobs, err := b.jobs.RecentByUser(ctx, c.Sender().ID, 10)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return tghelpers.SendText(c, "No processed files yet. Send me something!")
	}

	var sb strings.Builder
	sb.WriteString("Your recent jobs:\n")
	for _, job := range jobs {
		fmt.Fprintf(&sb, "\n%s — %s (%s)", job.CreatedAt.Format("Jan 2 15:04"), job.FileName, job.Action)
		if job.QualityAfter > 0 {
			fmt.Fprintf(&sb, ", quality %.1f → %.1f", job.QualityBefore, job.QualityAfter)
		}
	}
	return tghelpers.SendText(c, sb.String())
}

func (b *Bot) handleStats(c tele.Context) error {
	if b.jobs == nil {
		return tghelpers.SendText(c, "Stats are not enabled on this bot.")
	}

	ctx := tghelpers.BuildContext(c)
	totals, err := b.jobs.GlobalTotals(ctx)
	if err != nil {
		return err
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"Jobs processed: %d\nUnique users: %d\nTotal input: %.1f MB",
		totals.Jobs, totals.Users, float64(totals.SizeBytes)/(1<<20),
	))
}

func (b *Bot) handleUnknownText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := b.sessions.Get(ctx, c.Sender().ID); err == nil {
		return tghelpers.SendText(c, msgSendAudio)
	}
	return tghelpers.SendMD(c, msgWelcome, menuMarkup())
}

func senderUsername(c tele.Context) string {
	if u := c.Sender(); u != nil {
		return u.Username
	}
	return ""
}
