package audio

// Error is a processing failure with a stable machine code. The code ends
// up in handler logs as err_code and drives user-facing messages.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

var (
	// ErrTooLarge means the upload exceeds the configured size cap.
	ErrTooLarge = &Error{code: "oversized", msg: "audio: file exceeds the size limit"}
	// ErrAlreadyEnhanced means the file name carries the enhanced tag.
	ErrAlreadyEnhanced = &Error{code: "already_enhanced", msg: "audio: file is already enhanced"}
	// ErrBusy means all processing slots are taken.
	ErrBusy = &Error{code: "busy", msg: "audio: all processing slots busy"}
	// ErrInvalidAudio means ffprobe found no decodable audio stream.
	ErrInvalidAudio = &Error{code: "invalid_audio", msg: "audio: no decodable audio stream"}
)
