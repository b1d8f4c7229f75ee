package png

import "errors"

// Every error returned by Load, Decode, Write and Encode wraps exactly one of
// these, alongside the underlying cause.
var (
	ErrFileOpen      = errors.New("png: cannot open file")
	ErrCodecInternal = errors.New("png: codec resources unavailable")
	ErrDecode        = errors.New("png: decode failed")
	ErrEncode        = errors.New("png: encode failed")
	ErrInvalidFormat = errors.New("png: invalid bitmap format")
)
