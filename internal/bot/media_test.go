package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/audiobot/core/config"
	"github.com/m3rciful/audiobot/internal/audio"
	"github.com/m3rciful/audiobot/internal/scratch"
	"github.com/m3rciful/audiobot/internal/session"

	tele "gopkg.in/telebot.v4"
)

func TestExtractMediaAudio(t *testing.T) {
	msg := &tele.Message{
		Audio: &tele.Audio{
			File:     tele.File{FileID: "a1", FileSize: 1024},
			FileName: "song.mp3",
		},
	}

	m := extractMedia(msg)
	require.NotNil(t, m)
	require.Equal(t, "song.mp3", m.name)
	require.Equal(t, int64(1024), m.size)
}

func TestExtractMediaAudioNoName(t *testing.T) {
	msg := &tele.Message{
		Audio: &tele.Audio{File: tele.File{FileID: "a2"}},
	}

	m := extractMedia(msg)
	require.NotNil(t, m)
	require.Equal(t, "audio.mp3", m.name)
}

func TestExtractMediaVoice(t *testing.T) {
	msg := &tele.Message{
		Voice: &tele.Voice{
			File: tele.File{FileID: "v1", FileSize: 2048},
		},
	}

	m := extractMedia(msg)
	require.NotNil(t, m)
	require.Equal(t, "voice.ogg", m.name)
	require.Equal(t, int64(2048), m.size)
}

func TestExtractMediaAudioDocument(t *testing.T) {
	msg := &tele.Message{
		Document: &tele.Document{
			File:     tele.File{FileID: "d1", FileSize: 4096},
			FileName: "take.flac",
			MIME:     "audio/flac",
		},
	}

	m := extractMedia(msg)
	require.NotNil(t, m)
	require.Equal(t, "take.flac", m.name)
}

func TestExtractMediaNonAudioDocument(t *testing.T) {
	msg := &tele.Message{
		Document: &tele.Document{
			File:     tele.File{FileID: "d2"},
			FileName: "report.pdf",
			MIME:     "application/pdf",
		},
	}

	require.Nil(t, extractMedia(msg))
}

func TestExtractMediaEmpty(t *testing.T) {
	require.Nil(t, extractMedia(nil))
	require.Nil(t, extractMedia(&tele.Message{Text: "hello"}))
}

// uploadContext is the minimal tele.Context needed to drive handleMedia.
// Only the methods the upload pipeline touches are implemented; anything
// else falls through to the embedded nil interface.
type uploadContext struct {
	tele.Context
	msg    *tele.Message
	sender *tele.User
	values map[string]any
	sent   []string
}

func newUploadContext(msg *tele.Message) *uploadContext {
	return &uploadContext{
		msg:    msg,
		sender: &tele.User{ID: 7},
		values: make(map[string]any),
	}
}

func (c *uploadContext) Message() *tele.Message { return c.msg }

func (c *uploadContext) Sender() *tele.User { return c.sender }

func (c *uploadContext) Chat() *tele.Chat {
	if c.msg != nil && c.msg.Chat != nil {
		return c.msg.Chat
	}
	return nil
}

func (c *uploadContext) Update() tele.Update { return tele.Update{ID: 1} }

func (c *uploadContext) Get(key string) any { return c.values[key] }

func (c *uploadContext) Set(key string, val any) { c.values[key] = val }

func (c *uploadContext) Send(what any, _ ...any) error {
	if text, ok := what.(string); ok {
		c.sent = append(c.sent, text)
	}
	return nil
}

func newUploadBot(t *testing.T) (*Bot, session.Store) {
	t.Helper()

	cfg := &coreconfig.Config{}
	cfg.Processing.MaxFileSizeMB = 50
	cfg.Processing.MaxConcurrent = 1

	store := session.NewMemoryStore(time.Minute, time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	files, err := scratch.New(coreconfig.StorageConfig{
		TempDir:              t.TempDir(),
		MaxAgeMinutes:        60,
		SweepIntervalMinutes: 10,
	})
	require.NoError(t, err)

	return New(cfg, store, audio.NewProcessor(cfg.Processing), files, nil), store
}

func audioMessage(name string, size int64) *tele.Message {
	return &tele.Message{
		Chat: &tele.Chat{ID: 10},
		Audio: &tele.Audio{
			File:     tele.File{FileID: "f1", FileSize: size},
			FileName: name,
		},
	}
}

func putSession(t *testing.T, store session.Store, userID int64, action session.Action) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), session.Session{
		UserID:    userID,
		Action:    action,
		CreatedAt: time.Now(),
	}))
}

func TestHandleMediaRejectsOversizedUpload(t *testing.T) {
	b, store := newUploadBot(t)
	c := newUploadContext(audioMessage("track.mp3", 51<<20))
	putSession(t, store, c.sender.ID, session.ActionEnhance)

	err := b.handleMedia(c)
	require.ErrorIs(t, err, audio.ErrTooLarge)
	require.Contains(t, c.sent, fmt.Sprintf(msgTooLarge, 50))
	// Rejection happens before a processing slot is even requested.
	require.NotContains(t, c.sent, msgProcessing)
}

func TestHandleMediaRejectsEnhancedUpload(t *testing.T) {
	b, store := newUploadBot(t)
	c := newUploadContext(audioMessage("track[ENHANCED].flac", 1<<20))
	putSession(t, store, c.sender.ID, session.ActionEnhance)

	err := b.handleMedia(c)
	require.ErrorIs(t, err, audio.ErrAlreadyEnhanced)
	require.Contains(t, c.sent, msgAlreadyDone)
	require.NotContains(t, c.sent, msgProcessing)
}

func TestHandleMediaAcceptsStereoConvertedUpload(t *testing.T) {
	// A mono-to-stereo result never went through enhancement, so
	// re-uploading it must pass the reprocessing guard.
	b, store := newUploadBot(t)
	c := newUploadContext(audioMessage("track_stereo.flac", 1<<20))
	putSession(t, store, c.sender.ID, session.ActionEnhance)

	err := b.handleMedia(c)
	require.NotErrorIs(t, err, audio.ErrAlreadyEnhanced)
	require.Contains(t, c.sent, msgProcessing)
}

func TestHandleMediaWithoutSession(t *testing.T) {
	b, _ := newUploadBot(t)
	c := newUploadContext(audioMessage("track.mp3", 1<<20))

	require.NoError(t, b.handleMedia(c))
	require.Contains(t, c.sent, msgChooseFirst)
}

func TestHandleMediaWhenBusy(t *testing.T) {
	b, store := newUploadBot(t)
	release, err := b.proc.Acquire()
	require.NoError(t, err)
	defer release()

	c := newUploadContext(audioMessage("track.mp3", 1<<20))
	putSession(t, store, c.sender.ID, session.ActionEnhance)

	err = b.handleMedia(c)
	require.ErrorIs(t, err, audio.ErrBusy)
	require.Contains(t, c.sent, msgBusy)
}

// fakeTools writes stand-in ffmpeg/ffprobe scripts so pipeline tests can
// run without real encoders. The ffprobe script reports a one-channel
// stream; the ffmpeg script emits a short PCM ramp for decode calls and an
// empty output file for transforms.
func fakeTools(t *testing.T) (ffmpeg, ffprobe string) {
	t.Helper()
	dir := t.TempDir()

	ffprobe = filepath.Join(dir, "ffprobe")
	probeScript := `#!/bin/sh
printf '{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","channels":1,"sample_rate":"44100"}],"format":{"duration":"1.0"}}'
`
	require.NoError(t, os.WriteFile(ffprobe, []byte(probeScript), 0o755))

	ffmpeg = filepath.Join(dir, "ffmpeg")
	ffmpegScript := `#!/bin/sh
last=""
for a in "$@"; do last="$a"; done
if [ "$last" = "pipe:1" ]; then
  printf '\000\040\000\100\000\140\000\100\000\040\000\000'
else
  : > "$last"
fi
`
	require.NoError(t, os.WriteFile(ffmpeg, []byte(ffmpegScript), 0o755))
	return ffmpeg, ffprobe
}

func TestFullActionAnnouncesStages(t *testing.T) {
	ffmpeg, ffprobe := fakeTools(t)

	cfg := &coreconfig.Config{}
	cfg.Processing.MaxFileSizeMB = 50
	cfg.Processing.MaxConcurrent = 1
	cfg.Processing.FFmpegPath = ffmpeg
	cfg.Processing.FFprobePath = ffprobe

	store := session.NewMemoryStore(time.Minute, time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	files, err := scratch.New(coreconfig.StorageConfig{
		TempDir:              t.TempDir(),
		MaxAgeMinutes:        60,
		SweepIntervalMinutes: 10,
	})
	require.NoError(t, err)

	b := New(cfg, store, audio.NewProcessor(cfg.Processing), files, nil)

	src := filepath.Join(t.TempDir(), "take.wav")
	require.NoError(t, os.WriteFile(src, []byte("pcm"), 0o644))

	c := newUploadContext(audioMessage("take.wav", 1<<20))
	m := extractMedia(c.msg)
	require.NotNil(t, m)

	job, err := b.runAction(context.Background(), c, session.ActionFull, m, src)
	require.NoError(t, err)
	require.Equal(t, "ok", job.Status)

	// Mono input runs both stages, announced in order.
	stereoAt := slices.Index(c.sent, msgFullStepStereo)
	enhanceAt := slices.Index(c.sent, msgFullStepEnhance)
	require.GreaterOrEqual(t, stereoAt, 0)
	require.Greater(t, enhanceAt, stereoAt)
}

func TestLooksLikeAudioByExtension(t *testing.T) {
	require.True(t, looksLikeAudio(&tele.Document{FileName: "demo.WAV"}))
	require.True(t, looksLikeAudio(&tele.Document{FileName: "demo.opus"}))
	require.False(t, looksLikeAudio(&tele.Document{FileName: "demo.txt"}))
	require.False(t, looksLikeAudio(&tele.Document{FileName: ""}))
}
