// SPDX-License-Identifier: MIT
package visual

import (
	"errors"
	"fmt"
	"strings"

	"wvrender/internal/log"
)

var (
	ErrInvalidDimensions = errors.New("visual: width and height must be positive")
	ErrUnknownMode       = errors.New("visual: unknown mode")
	ErrWaveformMargin    = errors.New("visual: waveform mode needs a positive margin")
)

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Polyline is an ordered list of points joined by straight segments.
type Polyline []Point

// Mode selects how frames are drawn.
type Mode int

const (
	ModeSpectrum Mode = iota
	ModeWaveform
)

func (m Mode) String() string {
	switch m {
	case ModeSpectrum:
		return "spectrum"
	case ModeWaveform:
		return "waveform"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "spectrum" (also "wavy") and "waveform".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "spectrum", "wavy":
		return ModeSpectrum, nil
	case "waveform", "wave":
		return ModeWaveform, nil
	default:
		return ModeSpectrum, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// MapperOptions holds the image geometry and scaling.
type MapperOptions struct {
	Range          BinRange // Bins drawn in spectrum mode
	Width          int
	Height         int
	Margin         float64 // Horizontal inset in pixels on both sides
	Gain           float64
	PeakBins       int // Spectrum normalisation; usually L/2
	Channels       int // Channel count summed into each spectrum
	Mode           Mode
	FrameLength    int // L, used to pick waveform samples
	WaveformPoints int // N, waveform mode only
}

// Mapper converts spectra or sample frames into polylines. It owns one
// Polyline per mode and rewrites it in place on every call, so the
// returned slice is only valid until the next call.
type Mapper struct {
	opts     MapperOptions
	spectrum Polyline
	waveform Polyline

	step       float64 // Horizontal spacing in spectrum mode
	ampScale   float64 // height / (peak_bins * channels) * gain / 2
	waveStep   float64
	waveScale  float64 // gain * (height/2) / channels
	centerLine float64
}

func NewMapper(opts MapperOptions) (*Mapper, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w, got %dx%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	if opts.Range.Min < 0 || opts.Range.Min >= opts.Range.Max {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBinRange, opts.Range)
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}
	if opts.PeakBins <= 0 {
		opts.PeakBins = max(opts.FrameLength/2, 1)
	}
	if opts.Mode == ModeWaveform {
		if opts.FrameLength <= 0 {
			return nil, fmt.Errorf("visual: waveform mode needs the frame length, got %d", opts.FrameLength)
		}
		// The anchor sits at x=0, so the first sample must start right of it.
		if opts.Margin <= 0 {
			return nil, fmt.Errorf("%w, got %v", ErrWaveformMargin, opts.Margin)
		}
		if opts.WaveformPoints <= 0 {
			opts.WaveformPoints = max(opts.FrameLength/4, 1)
		}
	}

	h := float64(opts.Height)
	inner := float64(opts.Width) - 2*opts.Margin

	m := &Mapper{
		opts:       opts,
		spectrum:   make(Polyline, opts.Range.Len()),
		step:       inner / float64(opts.Range.Len()),
		ampScale:   h / float64(opts.PeakBins*opts.Channels) * opts.Gain / 2,
		centerLine: h / 2,
	}
	if opts.WaveformPoints > 0 {
		m.waveform = make(Polyline, opts.WaveformPoints+1)
		m.waveStep = inner / float64(opts.WaveformPoints)
		m.waveScale = opts.Gain * (h / 2) / float64(opts.Channels)
	}

	log.WithFields(log.Fields{
		"component": "visual",
		"mode":      opts.Mode.String(),
		"bins":      opts.Range.String(),
		"size":      fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"gain":      opts.Gain,
	}).Debug("Mapper ready")

	return m, nil
}

// Options returns the options after defaults were filled in.
func (m *Mapper) Options() MapperOptions { return m.opts }

// MapSpectrum lays bins [Min, Max) of spec across the width. Deflection
// alternates sides, starting upwards, so the line reads as a wave. Bins
// missing from spec count as silence.
func (m *Mapper) MapSpectrum(spec []float64) Polyline {
	sign := 1.0
	for j := range m.spectrum {
		var mag float64
		if i := m.opts.Range.Min + j; i < len(spec) {
			mag = spec[i]
		}

		m.spectrum[j] = Point{
			X: m.opts.Margin + float64(j)*m.step,
			Y: m.centerLine - sign*m.ampScale*mag,
		}
		sign = -sign
	}
	return m.spectrum
}

// MapWaveform draws WaveformPoints samples of the frame after an anchor at
// (0, height/2). Sample j is the channel sum at floor(j*L/N); samples at or
// past length are silent. It returns nil when the Mapper was built without
// waveform points.
func (m *Mapper) MapWaveform(channels [][]float64, length int) Polyline {
	if m.waveform == nil {
		return nil
	}

	m.waveform[0] = Point{X: 0, Y: m.centerLine}
	n := m.opts.WaveformPoints
	for j := range n {
		idx := j * m.opts.FrameLength / n

		var sum float64
		if idx < length {
			for _, ch := range channels {
				if idx < len(ch) {
					sum += ch[idx]
				}
			}
		}

		m.waveform[j+1] = Point{
			X: m.opts.Margin + float64(j)*m.waveStep,
			Y: m.centerLine - m.waveScale*sum,
		}
	}
	return m.waveform
}
