package audio

import (
	"math"
	"testing"

	coreconfig "github.com/m3rciful/audiobot/core/config"
	"github.com/stretchr/testify/require"
)

func TestComputeMetricsSine(t *testing.T) {
	// Full-scale sine: RMS ~= 1/sqrt(2), peak ~= 1.
	samples := make([]float64, 44100)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}

	m := computeMetrics(samples)
	require.InDelta(t, 1.0, m.Peak, 0.001)
	require.InDelta(t, 1/math.Sqrt2, m.RMS, 0.001)
	require.InDelta(t, 20*math.Log10(m.Peak/(m.RMS+1e-4)), m.DynamicRangeDB, 1e-9)
	require.Greater(t, m.Quality, 0.0)
}

func TestComputeMetricsSilence(t *testing.T) {
	samples := make([]float64, 1000)

	m := computeMetrics(samples)
	require.Zero(t, m.Peak)
	require.Zero(t, m.RMS)
	require.Zero(t, m.DynamicRangeDB)
	require.Zero(t, m.Quality)
}

func TestComputeMetricsEmpty(t *testing.T) {
	require.Equal(t, Metrics{}, computeMetrics(nil))
}

func TestQualityScoreClamps(t *testing.T) {
	require.Equal(t, 0.0, qualityScore(-5))
	require.Equal(t, 100.0, qualityScore(90))
	require.Equal(t, 50.0, qualityScore(30))
	require.Equal(t, 20.5, qualityScore(12.3))
}

func TestNormalizeGainDB(t *testing.T) {
	require.Equal(t, 0.0, normalizeGainDB(0))
	require.Equal(t, 0.0, normalizeGainDB(-1))
	// Peak at half scale needs ~6 dB of gain minus headroom.
	require.InDelta(t, 5.92, normalizeGainDB(0.5), 0.01)
	// Full-scale input only gets the headroom trim.
	require.InDelta(t, -0.1, normalizeGainDB(1.0), 0.001)
}

func TestIsEnhanced(t *testing.T) {
	require.True(t, IsEnhanced("track[ENHANCED].flac"))
	require.True(t, IsEnhanced("my[ENHANCED]mix.mp3"))
	require.False(t, IsEnhanced("track.flac"))
	require.False(t, IsEnhanced(""))
}

func TestOutputName(t *testing.T) {
	require.Equal(t, "track[ENHANCED].flac", OutputName("track.mp3"))
	require.Equal(t, "voice[ENHANCED].flac", OutputName("/tmp/abc/voice.ogg"))
	require.Equal(t, "noext[ENHANCED].flac", OutputName("noext"))
	require.Equal(t, "audio[ENHANCED].flac", OutputName(".mp3"))
}

func TestStereoName(t *testing.T) {
	require.Equal(t, "track_stereo.flac", StereoName("track.mp3"))
	require.Equal(t, "voice_stereo.flac", StereoName("/tmp/abc/voice.ogg"))
	require.Equal(t, "audio_stereo.flac", StereoName(".mp3"))
}

func TestStereoNameStaysEnhanceable(t *testing.T) {
	// A channel-duplicated file was never enhanced, so re-uploading it for
	// enhancement must not trip the reprocessing guard.
	require.False(t, IsEnhanced(StereoName("track.mp3")))
	require.True(t, IsEnhanced(OutputName("track.mp3")))
}

func TestProcessorAcquireBusy(t *testing.T) {
	p := NewProcessor(coreconfig.ProcessingConfig{MaxConcurrent: 1})

	release, err := p.Acquire()
	require.NoError(t, err)

	_, err = p.Acquire()
	require.ErrorIs(t, err, ErrBusy)

	release()

	release2, err := p.Acquire()
	require.NoError(t, err)
	release2()
}

func TestErrorCodes(t *testing.T) {
	require.Equal(t, "oversized", ErrTooLarge.Code())
	require.Equal(t, "already_enhanced", ErrAlreadyEnhanced.Code())
	require.Equal(t, "busy", ErrBusy.Code())
	require.Equal(t, "invalid_audio", ErrInvalidAudio.Code())
}
