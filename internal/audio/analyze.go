package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"time"

	"github.com/m3rciful/audiobot/core/logger"
)

// Metrics summarises the loudness profile of a decoded file. Values are
// normalised to [0,1] except DynamicRangeDB (decibels) and Quality (0..100).
type Metrics struct {
	RMS            float64
	Peak           float64
	DynamicRangeDB float64
	Quality        float64
}

// Analyze decodes the file to raw samples and computes its loudness metrics.
func (p *Processor) Analyze(ctx context.Context, path string) (Metrics, error) {
	samples, err := p.decodeSamples(ctx, path)
	if err != nil {
		return Metrics{}, err
	}
	return computeMetrics(samples), nil
}

// decodeSamples converts the file to mono 16-bit little-endian PCM in memory.
func (p *Processor) decodeSamples(ctx context.Context, path string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-v", "quiet",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"pipe:1",
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		logger.Warn(ctx, "audio", "decode.fail",
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil, ErrInvalidAudio
	}

	raw := stdout.Bytes()
	if len(raw) < 2 {
		return nil, ErrInvalidAudio
	}

	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float64(v) / 32768.0
	}

	logger.Debug(ctx, "audio", "decode.done",
		slog.Int("count", len(samples)),
		slog.Duration("duration", logger.Took(start)),
	)
	return samples, nil
}

func computeMetrics(samples []float64) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}

	var sumSquares, peak float64
	for _, s := range samples {
		sumSquares += s * s
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))

	// Digital silence has no meaningful dynamic range.
	var dynRange float64
	if peak > 0 {
		dynRange = 20 * math.Log10(peak/(rms+1e-4))
	}

	return Metrics{
		RMS:            rms,
		Peak:           peak,
		DynamicRangeDB: dynRange,
		Quality:        qualityScore(dynRange),
	}
}

// qualityScore maps dynamic range to a 0..100 score, where 60 dB or more
// counts as full quality.
func qualityScore(dynRangeDB float64) float64 {
	score := dynRangeDB / 60 * 100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*10) / 10
}

// FormatReport renders metrics for a chat message.
func FormatReport(info Info, m Metrics) string {
	return fmt.Sprintf(
		"Channels: %d\nSample rate: %d Hz\nDuration: %.1f s\n\nRMS: %.4f\nPeak: %.4f\nDynamic range: %.1f dB\nQuality: %.1f/100",
		info.Channels, info.SampleRate, info.DurationSec,
		m.RMS, m.Peak, m.DynamicRangeDB, m.Quality,
	)
}
