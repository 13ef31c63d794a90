// SPDX-License-Identifier: MIT
package video

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOptions = errors.New("video: invalid options")
	ErrFlushed        = errors.New("video: sink already flushed")
)

// UnsupportedFormatError is returned before any output is created when the
// requested container cannot be produced.
type UnsupportedFormatError struct {
	Path   string
	Format string // File extension, lower-case
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("video: cannot write %s (%s): %s", e.Path, e.Format, e.Reason)
}

// EncodeError reports a failure while frames were being written or the
// encoder was draining. Frames already written stay in the output.
type EncodeError struct {
	Op     string // "start", "submit" or "flush"
	Frame  int    // Frames accepted before the failure
	Err    error
	Stderr string // Encoder diagnostics, if any
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("video %s at frame %d: %v", e.Op, e.Frame, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *EncodeError) Unwrap() error { return e.Err }
