// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"

	"wvrender/internal/decode"
	"wvrender/internal/log"
	"wvrender/pkg/bitint"
)

var (
	ErrNilSource          = errors.New("audio: nil source")
	ErrInvalidFrameLength = errors.New("audio: frame length must be a power of two >= 16")
	ErrInvalidHopSize     = errors.New("audio: hop size must be in (0, frame length]")
	ErrInvalidSampleRate  = errors.New("audio: invalid sample rate")
	ErrInvalidChannels    = errors.New("audio: invalid channel count")
	ErrNoProgress         = errors.New("audio: source returned no samples repeatedly")
)

const (
	minFrameLength = 16
	readFrames     = 4096 // Source frames requested per read
	maxEmptyReads  = 100
)

// FramerOptions sets the analysis format. A zero SampleRate or Channels
// keeps the source's value.
type FramerOptions struct {
	SampleRate  int
	Channels    int
	FrameLength int // L, a power of two
	HopSize     int // H, 0 < H <= L
}

// TapFunc observes every block of analysis-rate, remixed, interleaved audio
// as it enters the buffer. The slice is reused after the call returns.
type TapFunc func(block []float64, channels, sampleRate int)

// Framer turns a decoded stream into overlapping fixed-length frames. Each
// frame starts H samples after the previous one, so consecutive frames share
// L-H samples. At end of stream any samples not yet part of a frame are
// emitted as one zero-padded frame.
type Framer struct {
	src        decode.Source
	srcRate    int
	srcCh      int
	sampleRate int
	channels   int
	length     int
	hop        int

	resampler *Resampler // nil when rates match
	readBuf   []float32
	converted []float64
	mixed     []float64
	queue     *fifo
	frame     *Frame
	tap       TapFunc

	covered    int   // Frames at the queue head already emitted in a frame
	offset     int64 // Analysis-rate index of the queue head
	index      int
	emptyReads int
	srcDone    bool
	err        error // Sticky; io.EOF once finished
}

// NewFramer validates opts against src and prepares the buffers.
func NewFramer(src decode.Source, opts FramerOptions) (*Framer, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if opts.FrameLength < minFrameLength || !bitint.IsPowerOfTwo(opts.FrameLength) {
		return nil, fmt.Errorf("%w, got %d (try %d)", ErrInvalidFrameLength, opts.FrameLength,
			bitint.NextPowerOfTwo(max(opts.FrameLength, minFrameLength)))
	}
	if opts.HopSize <= 0 || opts.HopSize > opts.FrameLength {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidHopSize, opts.HopSize)
	}
	if opts.SampleRate < 0 || src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: requested %d, source %d", ErrInvalidSampleRate, opts.SampleRate, src.SampleRate())
	}
	if opts.Channels < 0 || src.Channels() <= 0 {
		return nil, fmt.Errorf("%w: requested %d, source %d", ErrInvalidChannels, opts.Channels, src.Channels())
	}

	f := &Framer{
		src:        src,
		srcRate:    src.SampleRate(),
		srcCh:      src.Channels(),
		sampleRate: opts.SampleRate,
		channels:   opts.Channels,
		length:     opts.FrameLength,
		hop:        opts.HopSize,
	}
	if f.sampleRate == 0 {
		f.sampleRate = f.srcRate
	}
	if f.channels == 0 {
		f.channels = f.srcCh
	}

	if f.sampleRate != f.srcRate {
		r, err := NewResampler(f.srcRate, f.sampleRate, f.srcCh)
		if err != nil {
			return nil, err
		}
		f.resampler = r
	}

	f.readBuf = make([]float32, readFrames*f.srcCh)
	f.converted = make([]float64, 0, readFrames*f.srcCh)
	f.queue = newFIFO(f.channels, 2*f.length+readFrames)
	f.frame = newFrame(f.channels, f.length)

	log.WithFields(log.Fields{
		"component":      "framer",
		"source_rate":    f.srcRate,
		"source_ch":      f.srcCh,
		"sample_rate":    f.sampleRate,
		"channels":       f.channels,
		"frame_length":   f.length,
		"hop_size":       f.hop,
		"resampling":     f.resampler != nil,
		"frames_per_sec": f.FrameRate(),
	}).Info("Framing engine ready")

	return f, nil
}

func (f *Framer) SampleRate() int  { return f.sampleRate }
func (f *Framer) Channels() int    { return f.channels }
func (f *Framer) FrameLength() int { return f.length }
func (f *Framer) HopSize() int     { return f.hop }

// FrameRate is the number of frames per second of audio, sample_rate / H.
func (f *Framer) FrameRate() float64 {
	return float64(f.sampleRate) / float64(f.hop)
}

// SetTap installs fn to observe buffered audio; nil removes it.
func (f *Framer) SetTap(fn TapFunc) {
	f.tap = fn
}

// NextFrame returns the next analysis frame, or io.EOF once the source is
// exhausted and every sample has been emitted. Source errors are returned as
// *decode.DecodeError. Errors are sticky.
func (f *Framer) NextFrame() (*Frame, error) {
	if f.err != nil {
		return nil, f.err
	}

	for {
		n := f.queue.Len()
		if n >= f.length {
			return f.emit(f.length), nil
		}
		if f.srcDone {
			if n > f.covered {
				return f.emit(n), nil
			}
			f.err = io.EOF
			return nil, io.EOF
		}
		if err := f.fill(); err != nil {
			f.err = err
			return nil, err
		}
	}
}

// emit copies n frames (n <= L) into the shared Frame and advances the
// queue by min(H, n).
func (f *Framer) emit(n int) *Frame {
	fr := f.frame
	fr.Index = f.index
	fr.Offset = f.offset
	fr.Length = f.queue.Peek(fr.Channels, n)

	advance := min(f.hop, fr.Length)
	f.queue.Discard(advance)
	f.covered = fr.Length - advance
	f.offset += int64(advance)
	f.index++

	return fr
}

// fill reads one block from the source and appends it to the queue.
func (f *Framer) fill() error {
	n, err := f.src.ReadSamples(f.readBuf)
	if n > 0 {
		f.emptyReads = 0
		f.push(f.readBuf[:n])
	}

	switch {
	case err == io.EOF:
		f.srcDone = true
		if f.resampler != nil {
			f.append(f.resampler.Flush())
		}
		log.WithFields(log.Fields{
			"component": "framer",
			"frames":    f.index,
			"buffered":  f.queue.Len(),
		}).Debug("Source exhausted")
		return nil
	case err != nil:
		var de *decode.DecodeError
		if errors.As(err, &de) {
			return err
		}
		return &decode.DecodeError{Op: "read", Err: err}
	case n == 0:
		f.emptyReads++
		if f.emptyReads >= maxEmptyReads {
			return &decode.DecodeError{Op: "read", Err: ErrNoProgress}
		}
	}
	return nil
}

func (f *Framer) push(samples []float32) {
	samples = samples[:len(samples)-len(samples)%f.srcCh]

	f.converted = f.converted[:0]
	for _, s := range samples {
		f.converted = append(f.converted, float64(s))
	}

	block := f.converted
	if f.resampler != nil {
		block = f.resampler.Process(block)
	}
	f.append(block)
}

// append remixes an analysis-rate block to the target layout and queues it.
func (f *Framer) append(block []float64) {
	if len(block) == 0 {
		return
	}
	f.mixed = remix(f.mixed, block, f.srcCh, f.channels)
	f.queue.Write(f.mixed)

	if f.tap != nil {
		f.tap(f.mixed, f.channels, f.sampleRate)
	}
}
