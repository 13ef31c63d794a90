// SPDX-License-Identifier: MIT
package decode

import (
	"errors"
	"fmt"
)

var (
	ErrNotWavFile          = errors.New("not a RIFF/WAVE file")
	ErrNotAiffFile         = errors.New("not an AIFF file")
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")
	ErrUnsupportedBitDepth = errors.New("unsupported bit depth")
	ErrNoAudioStream       = errors.New("no audio stream found")
	ErrInvalidStreamFormat = errors.New("invalid sample rate or channel count")
)

// DecodeError reports a malformed or unsupported input. It is fatal to the
// pipeline: the input cannot be recovered at this layer.
type DecodeError struct {
	Path string // Input file
	Op   string // What was being done: "open", "probe", "read", ...
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("decode %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func newError(path, op string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Path == "" {
			de.Path = path
		}
		return de
	}
	return &DecodeError{Path: path, Op: op, Err: err}
}
