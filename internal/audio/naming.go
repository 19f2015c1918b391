package audio

import (
	"path/filepath"
	"strings"
)

// EnhancedTag marks output files so re-uploads of processed audio are
// rejected instead of processed twice.
const EnhancedTag = "[ENHANCED]"

// IsEnhanced reports whether the file name carries the enhanced tag.
func IsEnhanced(name string) bool {
	return strings.Contains(name, EnhancedTag)
}

// OutputName derives the enhanced FLAC file name from the source name:
// "track.mp3" becomes "track[ENHANCED].flac".
func OutputName(name string) string {
	return baseName(name) + EnhancedTag + ".flac"
}

// StereoName derives the mono→stereo FLAC file name from the source name:
// "track.mp3" becomes "track_stereo.flac". The enhanced tag is reserved
// for files that went through the enhancement chain, so a stereo-converted
// track can still be enhanced afterwards.
func StereoName(name string) string {
	return baseName(name) + "_stereo.flac"
}

func baseName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" {
		base = "audio"
	}
	return base
}
