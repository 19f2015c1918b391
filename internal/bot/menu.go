package bot

import (
	"github.com/m3rciful/audiobot/core/telegram/keyboard"
	"github.com/m3rciful/audiobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

const (
	cbAction = "action"
	cbHelp   = "help"
	cbCancel = "cancel"
)

const (
	msgWelcome = "🎵 What should I do with your audio?\n\nPick an action, then send me a file."

	msgHelp = "Send me an audio file, a voice note, or an audio document and I will process it.\n\n" +
		"🔍 *Analyze* — loudness metrics and a quality score\n" +
		"✨ *Enhance* — normalize, compress and boost, exported as FLAC\n" +
		"🎧 *Mono → Stereo* — duplicate a mono track into two channels\n" +
		"🚀 *Full* — enhance and force stereo in one pass\n\n" +
		"Files up to 50 MB. Processed files are tagged [ENHANCED] and are not processed twice."

	msgChooseFirst   = "Pick an action from the menu first, then send the file again."
	msgCancelled     = "Cancelled. Pick a new action whenever you are ready."
	msgNothingToDo   = "Nothing to cancel."
	msgSendAudio     = "Now send me an audio file, a voice note, or an audio document."
	msgTooLarge      = "That file is too large. The limit is %d MB."
	msgAlreadyDone   = "This file is already enhanced, I will not process it twice."
	msgAlreadyStereo = "This track is already stereo, nothing to convert."
	msgBusy          = "All processing slots are busy right now, please try again in a minute."
	msgInvalidAudio  = "I could not find a decodable audio stream in that file."
	msgFailed        = "Something went wrong while processing your file. Please try again."
	msgProcessing    = "Working on it…"

	msgFullStepStereo  = "Step 1/2: converting to stereo…"
	msgFullStepEnhance = "Step 2/2: enhancing…"
)

var actionLabels = map[session.Action]string{
	session.ActionAnalyze: "🔍 Analyze",
	session.ActionEnhance: "✨ Enhance",
	session.ActionStereo:  "🎧 Mono → Stereo",
	session.ActionFull:    "🚀 Full processing",
}

// menuMarkup builds the main inline menu.
func menuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: actionLabels[session.ActionAnalyze], Unique: cbAction, Data: string(session.ActionAnalyze)},
			{Text: actionLabels[session.ActionEnhance], Unique: cbAction, Data: string(session.ActionEnhance)},
		},
		[]keyboard.InlineBtn{
			{Text: actionLabels[session.ActionStereo], Unique: cbAction, Data: string(session.ActionStereo)},
			{Text: actionLabels[session.ActionFull], Unique: cbAction, Data: string(session.ActionFull)},
		},
		[]keyboard.InlineBtn{
			{Text: "ℹ️ Help", Unique: cbHelp},
		},
	)
}
