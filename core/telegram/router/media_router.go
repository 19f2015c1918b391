package router

import (
	"time"

	tg "github.com/m3rciful/audiobot/core/telegram"
	"github.com/m3rciful/audiobot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MediaOptions controls routing of incoming media and plain text updates.
type MediaOptions struct {
	// OnAudio receives audio, voice and audio-document updates.
	OnAudio     tele.HandlerFunc
	UnknownText tele.HandlerFunc
}

// MediaRoutes builds handlers for audio uploads and text fallback.
// Audio can arrive as a music file, a voice note, or a generic document,
// so all three endpoints converge on the same handler.
func MediaRoutes(reg *tg.Registry, opts MediaOptions) []tg.Route {
	audioHandler := func(endpoint string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if opts.OnAudio == nil {
				logHandlerSummary(c, "media."+endpoint, start, "skip", "ok", nil)
				return nil
			}
			return handleWithSummary(c, "media."+endpoint, start, "", "", func() error {
				return opts.OnAudio(c)
			})
		}
	}

	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	return []tg.Route{
		{Endpoint: tele.OnAudio, Handler: wrap(audioHandler("audio"))},
		{Endpoint: tele.OnVoice, Handler: wrap(audioHandler("voice"))},
		{Endpoint: tele.OnDocument, Handler: wrap(audioHandler("document"))},
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
	}
}
