package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m3rciful/audiobot/core/logger"
	tghelpers "github.com/m3rciful/audiobot/core/telegram/helpers"
	"github.com/m3rciful/audiobot/internal/audio"
	"github.com/m3rciful/audiobot/internal/chart"
	"github.com/m3rciful/audiobot/internal/history"
	"github.com/m3rciful/audiobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

type mediaFile struct {
	file tele.File
	name string
	size int64
}

// extractMedia pulls the audio payload out of a message, whichever form it
// arrived in. Returns nil for non-audio documents and other content.
func extractMedia(msg *tele.Message) *mediaFile {
	if msg == nil {
		return nil
	}
	switch {
	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio.mp3"
		}
		return &mediaFile{file: msg.Audio.File, name: name, size: msg.Audio.FileSize}
	case msg.Voice != nil:
		return &mediaFile{file: msg.Voice.File, name: "voice.ogg", size: msg.Voice.FileSize}
	case msg.Document != nil:
		if !looksLikeAudio(msg.Document) {
			return nil
		}
		name := msg.Document.FileName
		if name == "" {
			name = "audio.bin"
		}
		return &mediaFile{file: msg.Document.File, name: name, size: msg.Document.FileSize}
	}
	return nil
}

func looksLikeAudio(doc *tele.Document) bool {
	if strings.HasPrefix(doc.MIME, "audio/") {
		return true
	}
	switch strings.ToLower(filepath.Ext(doc.FileName)) {
	case ".mp3", ".wav", ".flac", ".ogg", ".oga", ".m4a", ".aac", ".opus", ".wma", ".aiff":
		return true
	}
	return false
}

// handleMedia runs the upload pipeline: session lookup, size and name
// checks, slot acquisition, download, processing, reply, history.
func (b *Bot) handleMedia(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	m := extractMedia(c.Message())
	if m == nil {
		return tghelpers.SendText(c, msgInvalidAudio)
	}

	sess, err := b.sessions.Get(ctx, userID)
	if errors.Is(err, session.ErrNotFound) {
		return tghelpers.SendMD(c, msgChooseFirst, menuMarkup())
	}
	if err != nil {
		return err
	}

	if m.size > b.cfg.Processing.MaxFileSizeBytes() {
		logger.Info(ctx, "bot", "upload.rejected",
			slog.String("status", "rejected"),
			slog.String("file_name", m.name),
			slog.Int64("size_bytes", m.size),
		)
		_ = tghelpers.SendText(c, fmt.Sprintf(msgTooLarge, b.cfg.Processing.MaxFileSizeMB))
		return audio.ErrTooLarge
	}

	if audio.IsEnhanced(m.name) {
		_ = tghelpers.SendText(c, msgAlreadyDone)
		return audio.ErrAlreadyEnhanced
	}

	release, err := b.proc.Acquire()
	if err != nil {
		_ = tghelpers.SendText(c, msgBusy)
		return err
	}
	defer release()

	_ = tghelpers.SendText(c, msgProcessing)

	start := time.Now()
	job, err := b.process(ctx, c, sess.Action, m)
	if err != nil {
		logger.Error(ctx, "bot", "process.fail",
			slog.String("session_action", string(sess.Action)),
			slog.String("file_name", m.name),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Duration("duration", logger.Took(start)),
		)
		if errors.Is(err, audio.ErrInvalidAudio) {
			_ = tghelpers.SendText(c, msgInvalidAudio)
		} else {
			_ = tghelpers.SendText(c, msgFailed)
		}
		return err
	}

	logger.Info(ctx, "bot", "process.done",
		slog.String("session_action", string(sess.Action)),
		slog.String("file_name", m.name),
		slog.Int64("size_bytes", m.size),
		slog.Float64("quality_before", job.QualityBefore),
		slog.Float64("quality_after", job.QualityAfter),
		slog.Duration("duration", logger.Took(start)),
	)

	if b.jobs != nil {
		if err := b.jobs.Insert(ctx, job); err != nil {
			logger.Warn(ctx, "bot", "history.insert.fail",
				slog.String("err", err.Error()),
			)
		}
	}

	// The flow is one file per selection; a new action must be picked.
	if err := b.sessions.Delete(ctx, userID); err != nil {
		logger.Warn(ctx, "bot", "session.delete.fail",
			slog.String("err", err.Error()),
		)
	}
	return tghelpers.SendMD(c, msgWelcome, menuMarkup())
}

func (b *Bot) process(ctx context.Context, c tele.Context, action session.Action, m *mediaFile) (*history.Job, error) {
	srcPath, err := b.download(ctx, m)
	if err != nil {
		return nil, err
	}
	defer os.Remove(srcPath)
	return b.runAction(ctx, c, action, m, srcPath)
}

// runAction executes the selected action on an already-downloaded file.
func (b *Bot) runAction(ctx context.Context, c tele.Context, action session.Action, m *mediaFile, srcPath string) (*history.Job, error) {
	info, err := b.proc.Probe(ctx, srcPath)
	if err != nil {
		return nil, err
	}

	job := &history.Job{
		UserID:      c.Sender().ID,
		Action:      string(action),
		FileName:    m.name,
		SizeBytes:   m.size,
		DurationSec: info.DurationSec,
		Status:      "ok",
	}
	if chat := c.Chat(); chat != nil {
		job.ChatID = chat.ID
	}

	switch action {
	case session.ActionAnalyze:
		metrics, err := b.proc.Analyze(ctx, srcPath)
		if err != nil {
			return nil, err
		}
		job.QualityBefore = metrics.Quality
		return job, tghelpers.SendText(c, audio.FormatReport(info, metrics))

	case session.ActionStereo:
		if info.Channels >= 2 {
			job.Status = "skip"
			return job, tghelpers.SendText(c, msgAlreadyStereo)
		}
		outPath := b.files.NewPath(".flac")
		defer os.Remove(outPath)
		if err := b.proc.MonoToStereo(ctx, srcPath, outPath); err != nil {
			return nil, err
		}
		return job, b.sendResult(c, outPath, audio.StereoName(m.name), "", nil)

	case session.ActionEnhance, session.ActionFull:
		before, err := b.proc.Analyze(ctx, srcPath)
		if err != nil {
			return nil, err
		}

		workPath := srcPath
		if action == session.ActionFull {
			// Full processing runs as two visible stages: widen mono to
			// stereo first, then enhance the result.
			if info.Channels < 2 {
				_ = tghelpers.SendText(c, msgFullStepStereo)
				stereoPath := b.files.NewPath(".flac")
				defer os.Remove(stereoPath)
				if err := b.proc.MonoToStereo(ctx, srcPath, stereoPath); err != nil {
					return nil, err
				}
				workPath = stereoPath
			}
			_ = tghelpers.SendText(c, msgFullStepEnhance)
		}

		outPath := b.files.NewPath(".flac")
		defer os.Remove(outPath)

		if err := b.proc.Enhance(ctx, workPath, outPath, before.Peak); err != nil {
			return nil, err
		}

		after, err := b.proc.Analyze(ctx, outPath)
		if err != nil {
			return nil, err
		}
		job.QualityBefore = before.Quality
		job.QualityAfter = after.Quality

		png, chartErr := chart.Comparison(before, after)
		if chartErr != nil {
			logger.Warn(ctx, "bot", "chart.fail",
				slog.String("err", chartErr.Error()),
			)
			png = nil
		}
		caption := fmt.Sprintf("Quality: %.1f → %.1f", before.Quality, after.Quality)
		return job, b.sendResult(c, outPath, audio.OutputName(m.name), caption, png)
	}

	return nil, fmt.Errorf("bot: unknown action %q", action)
}

// download fetches the file from Telegram into the scratch directory,
// keeping the original extension so ffmpeg can sniff the container.
func (b *Bot) download(ctx context.Context, m *mediaFile) (string, error) {
	if b.tg == nil {
		return "", errors.New("bot: telegram client not ready")
	}

	start := time.Now()
	reader, err := b.tg.File(&m.file)
	if err != nil {
		return "", fmt.Errorf("bot: download %s: %w", m.name, err)
	}
	defer reader.Close()

	ext := filepath.Ext(m.name)
	if ext == "" {
		ext = ".bin"
	}
	path := b.files.NewPath(ext)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("bot: create %s: %w", path, err)
	}
	written, err := io.Copy(out, reader)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("bot: write %s: %w", path, err)
	}

	logger.Debug(ctx, "bot", "download.done",
		slog.String("file_name", m.name),
		slog.Int64("size_bytes", written),
		slog.Duration("duration", logger.Took(start)),
	)
	return path, nil
}

func (b *Bot) sendResult(c tele.Context, outPath, fileName, caption string, chartPNG []byte) error {
	// Chart first, then the file, mirroring the conversational order of a
	// "here is what changed, here is your file" reply.
	if len(chartPNG) > 0 {
		photo := &tele.Photo{
			File:    tele.FromReader(bytes.NewReader(chartPNG)),
			Caption: "Before / after",
		}
		if err := tghelpers.SendPhoto(c, photo); err != nil {
			return fmt.Errorf("bot: send chart: %w", err)
		}
	}
	result := &tele.Audio{
		File:     tele.FromDisk(outPath),
		FileName: fileName,
		Caption:  caption,
	}
	if err := tghelpers.SendAudio(c, result); err != nil {
		return fmt.Errorf("bot: send audio: %w", err)
	}
	return nil
}
