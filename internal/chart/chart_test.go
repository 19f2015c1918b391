package chart

import (
	"bytes"
	"testing"

	"github.com/m3rciful/audiobot/internal/audio"

	"github.com/stretchr/testify/require"
)

func TestComparisonRendersPNG(t *testing.T) {
	before := audio.Metrics{RMS: 0.12, Peak: 0.5, DynamicRangeDB: 12.4, Quality: 20.7}
	after := audio.Metrics{RMS: 0.3, Peak: 0.98, DynamicRangeDB: 10.3, Quality: 17.2}

	png, err := Comparison(before, after)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestComparisonZeroMetrics(t *testing.T) {
	png, err := Comparison(audio.Metrics{}, audio.Metrics{})
	require.NoError(t, err)
	require.NotEmpty(t, png)
}
