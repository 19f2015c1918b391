package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/m3rciful/audiobot/core/logger"
)

// Info describes the audio stream of a probed file.
type Info struct {
	Channels    int
	SampleRate  int
	DurationSec float64
	Codec       string
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Channels   int    `json:"channels"`
	SampleRate string `json:"sample_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Probe inspects the file with ffprobe and returns its audio stream info.
// Files without an audio stream yield ErrInvalidAudio.
func (p *Processor) Probe(ctx context.Context, path string) (Info, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		logger.Warn(ctx, "audio", "probe.fail",
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return Info{}, ErrInvalidAudio
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return Info{}, fmt.Errorf("audio: decode ffprobe output: %w", err)
	}

	var stream *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "audio" {
			stream = &out.Streams[i]
			break
		}
	}
	if stream == nil {
		return Info{}, ErrInvalidAudio
	}

	info := Info{
		Channels: stream.Channels,
		Codec:    stream.CodecName,
	}
	// ffprobe reports numeric fields as strings in JSON output.
	if rate, err := strconv.Atoi(stream.SampleRate); err == nil {
		info.SampleRate = rate
	}
	if dur, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.DurationSec = dur
	}

	logger.Debug(ctx, "audio", "probe.done",
		slog.Int("channels", info.Channels),
		slog.Int("sample_rate", info.SampleRate),
		slog.Float64("duration_sec", info.DurationSec),
		slog.Duration("duration", logger.Took(start)),
	)
	return info, nil
}
