// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	"wvrender/internal/log"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	ErrAlreadyRecording = errors.New("audio: already recording")
	ErrInvalidBitDepth  = errors.New("audio: recording bit depth must be 16, 24 or 32")
)

// Recorder writes interleaved float samples in [-1, 1] to an integer PCM
// WAV file.
type Recorder struct {
	path      string
	file      *os.File
	encoder   *wav.Encoder
	sampleBuf *goaudio.IntBuffer // Reusable buffer for format conversion
	fullScale float64
	samples   int64
	err       error // First write error; later writes are skipped
}

// NewRecorder creates path and prepares a WAV encoder for the given format.
func NewRecorder(path string, sampleRate, channels, bitDepth int) (*Recorder, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w, got %d", ErrInvalidBitDepth, bitDepth)
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("audio: invalid recording format %d Hz x %d", sampleRate, channels)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		path:    path,
		file:    file,
		encoder: wav.NewEncoder(file, sampleRate, bitDepth, channels, 1),
		sampleBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, 0, readFrames*channels),
			SourceBitDepth: bitDepth,
		},
		fullScale: float64(int64(1)<<(bitDepth-1)) - 1,
	}, nil
}

// Write converts and appends one block. Samples are clipped to [-1, 1].
func (r *Recorder) Write(block []float64) error {
	if r.err != nil {
		return r.err
	}

	r.sampleBuf.Data = r.sampleBuf.Data[:0]
	for _, s := range block {
		s = math.Max(-1, math.Min(1, s))
		r.sampleBuf.Data = append(r.sampleBuf.Data, int(math.Round(s*r.fullScale)))
	}

	if err := r.encoder.Write(r.sampleBuf); err != nil {
		r.err = fmt.Errorf("writing %s: %w", r.path, err)
		return r.err
	}
	r.samples += int64(len(block))
	return nil
}

// Samples returns the number of interleaved values written.
func (r *Recorder) Samples() int64 { return r.samples }

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	encErr := r.encoder.Close()
	fileErr := r.file.Close()
	if encErr != nil {
		return fmt.Errorf("finalizing %s: %w", r.path, encErr)
	}
	return fileErr
}

// SetRecordingBitDepth selects the sample size used by StartRecording.
func (e *Engine) SetRecordingBitDepth(bits int) error {
	switch bits {
	case 16, 24, 32:
		e.recordBitDepth = bits
		return nil
	default:
		return fmt.Errorf("%w, got %d", ErrInvalidBitDepth, bits)
	}
}

// StartRecording writes the analysis stream (resampled and remixed, before
// framing) to a WAV file at path until StopRecording. Audio already
// buffered by the Framer is not included, so start before Run.
func (e *Engine) StartRecording(filename string) error {
	if e.recorder != nil {
		return ErrAlreadyRecording
	}

	rec, err := NewRecorder(filename, e.framer.SampleRate(), e.framer.Channels(), e.recordBitDepth)
	if err != nil {
		return err
	}
	e.recorder = rec

	e.framer.SetTap(func(block []float64, _, _ int) {
		if err := rec.Write(block); err != nil {
			log.Errorf("Engine: recording stopped: %v", err)
			e.framer.SetTap(nil)
		}
	})

	log.WithFields(log.Fields{
		"component": "engine",
		"path":      filename,
		"bit_depth": e.recordBitDepth,
	}).Info("Recording analysis stream")
	return nil
}

func (e *Engine) StopRecording() error {
	if e.recorder == nil {
		return nil
	}

	e.framer.SetTap(nil)
	rec := e.recorder
	e.recorder = nil

	if err := rec.Close(); err != nil {
		return err
	}
	log.Debugf("Engine: recording closed after %d samples", rec.Samples())
	return nil
}

// IsRecording reports whether a recording is in progress.
func (e *Engine) IsRecording() bool {
	return e.recorder != nil
}
