package audio

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/m3rciful/audiobot/core/logger"
)

// compressor settings: threshold 0.125 is roughly -18 dBFS, a moderate
// 4:1 ratio with fast attack tames peaks without audible pumping.
const compressorFilter = "acompressor=threshold=0.125:ratio=4:attack=5:release=50"

// Enhance normalizes, compresses and boosts the file, writing lossless FLAC.
// The peak from a prior Analyze pass drives the normalization gain.
func (p *Processor) Enhance(ctx context.Context, src, dst string, peak float64) error {
	filters := []string{}
	if gain := normalizeGainDB(peak); gain != 0 {
		filters = append(filters, fmt.Sprintf("volume=%.2fdB", gain))
	}
	filters = append(filters, compressorFilter, "volume=3dB")

	return p.runFFmpeg(ctx, "enhance", src, dst,
		"-af", strings.Join(filters, ","),
		"-c:a", "flac",
	)
}

// MonoToStereo duplicates a mono stream into two channels, writing FLAC.
// Files that are already stereo pass through unchanged apart from the codec.
func (p *Processor) MonoToStereo(ctx context.Context, src, dst string) error {
	return p.runFFmpeg(ctx, "stereo", src, dst,
		"-ac", "2",
		"-c:a", "flac",
	)
}

// normalizeGainDB computes the gain that brings the measured peak just
// under full scale, leaving 0.1 dB of headroom. Silent input gets no gain.
func normalizeGainDB(peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	return -(20 * math.Log10(peak)) - 0.1
}

func (p *Processor) runFFmpeg(ctx context.Context, op, src, dst string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	argv := append([]string{"-v", "error", "-y", "-i", src}, args...)
	argv = append(argv, dst)

	start := time.Now()
	cmd := exec.CommandContext(ctx, p.ffmpegPath, argv...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		logger.Error(ctx, "audio", "transform.fail",
			slog.String("action", op),
			slog.String("err", logger.SanitizeLimit(stderr.String(), 256)),
			slog.Duration("duration", logger.Took(start)),
		)
		return fmt.Errorf("audio: ffmpeg %s: %w", op, err)
	}

	logger.Info(ctx, "audio", "transform.done",
		slog.String("action", op),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
