// Package commands defines the command descriptor the registry stores for
// each slash command.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command describes one slash command. AdminOnly commands answer only the
// configured admin; Hidden ones are dispatched but never appear in /help
// output or the Telegram command list (used for /stats, and for /history
// when the bot runs without a database).
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
