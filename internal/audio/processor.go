// Package audio runs analysis and enhancement by shelling out to ffmpeg
// and ffprobe. Concurrency is bounded so a burst of uploads cannot fork
// an unbounded number of encoder processes.
package audio

import (
	"time"

	coreconfig "github.com/m3rciful/audiobot/core/config"
)

// Processor owns the concurrency budget and tool paths for all ffmpeg work.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	slots       chan struct{}
}

// NewProcessor builds a processor from configuration, applying defaults
// for anything unset.
func NewProcessor(cfg coreconfig.ProcessingConfig) *Processor {
	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := cfg.FFprobePath
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		slots:       make(chan struct{}, maxConcurrent),
	}
}

// Acquire claims a processing slot without blocking. It returns ErrBusy when
// every slot is taken; the caller should tell the user to retry instead of
// queueing uploads indefinitely.
func (p *Processor) Acquire() (release func(), err error) {
	select {
	case p.slots <- struct{}{}:
		return func() { <-p.slots }, nil
	default:
		return nil, ErrBusy
	}
}
