package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/audiobot/core/logger"
	"github.com/m3rciful/audiobot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/audiobot/core/telegram/helpers"
	"github.com/m3rciful/audiobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

// handleActionCallback stores the chosen action and asks for the file.
func (b *Bot) handleActionCallback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	payload := callbacks.CallbackPayload(c)

	if !session.ValidAction(payload) {
		logger.Warn(ctx, "bot", "action.unknown",
			slog.String("payload", logger.SanitizeLimit(payload, 64)),
		)
		return tghelpers.SendMD(c, msgWelcome, menuMarkup())
	}

	action := session.Action(payload)
	err := b.sessions.Put(ctx, session.Session{
		UserID:    c.Sender().ID,
		Action:    action,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "bot", "action.selected",
		slog.String("session_action", payload),
	)
	return tghelpers.SendText(c, fmt.Sprintf("%s selected.\n%s", actionLabels[action], msgSendAudio))
}
