// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
)

// Resampler converts interleaved float64 audio between sample rates with
// Catmull-Rom cubic interpolation. It is push-based: Process takes any
// number of input frames and returns whatever output they complete; Flush
// drains the tail at end of stream.
//
// When downsampling, input passes through a one-pole low-pass at the
// destination Nyquist frequency first.
type Resampler struct {
	srcRate  int
	dstRate  int
	ratio    float64 // Source frames per output frame
	channels int

	pending []float64 // Interleaved source frames not yet fully consumed
	pos     float64   // Read position in pending, in frames
	out     []float64

	useFilter   bool
	filterAlpha float64
	filterState []float64
	primed      bool
}

func NewResampler(srcRate, dstRate, channels int) (*Resampler, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidSampleRate, srcRate, dstRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	ratio := float64(srcRate) / float64(dstRate)
	r := &Resampler{
		srcRate:     srcRate,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		useFilter:   ratio > 1,
		filterState: make([]float64, channels),
	}
	if r.useFilter {
		cutoff := float64(dstRate) / 2
		r.filterAlpha = 1 - math.Exp(-2*math.Pi*cutoff/float64(srcRate))
	}
	return r, nil
}

// Ratio returns source frames per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

// Process appends in (interleaved, whole frames) and returns the output
// frames that can be interpolated so far. The returned slice is reused by
// the next call.
func (r *Resampler) Process(in []float64) []float64 {
	r.push(in)
	return r.drain(false)
}

// Flush returns the remaining output, holding the last source frame for
// interpolation past the end.
func (r *Resampler) Flush() []float64 {
	return r.drain(true)
}

func (r *Resampler) push(in []float64) {
	start := len(r.pending)
	r.pending = append(r.pending, in[:len(in)-len(in)%r.channels]...)
	if !r.useFilter {
		return
	}

	block := r.pending[start:]
	if !r.primed && len(block) > 0 {
		copy(r.filterState, block[:r.channels])
		r.primed = true
	}
	for i := 0; i < len(block); i += r.channels {
		for c := range r.channels {
			r.filterState[c] += r.filterAlpha * (block[i+c] - r.filterState[c])
			block[i+c] = r.filterState[c]
		}
	}
}

func (r *Resampler) drain(final bool) []float64 {
	r.out = r.out[:0]
	frames := len(r.pending) / r.channels

	for {
		i := int(r.pos)
		if final {
			if i >= frames {
				break
			}
		} else if i+2 >= frames {
			break
		}

		t := r.pos - float64(i)
		for c := range r.channels {
			y0 := r.at(i-1, c, frames)
			y1 := r.at(i, c, frames)
			y2 := r.at(i+1, c, frames)
			y3 := r.at(i+2, c, frames)
			r.out = append(r.out, cubicInterpolate(y0, y1, y2, y3, t))
		}
		r.pos += r.ratio
	}

	// Keep one frame of history behind the read position.
	if drop := int(r.pos) - 1; drop > 0 {
		drop = min(drop, frames)
		n := copy(r.pending, r.pending[drop*r.channels:])
		r.pending = r.pending[:n]
		r.pos -= float64(drop)
	}
	if final {
		r.pending = r.pending[:0]
		r.pos = 0
	}
	return r.out
}

// at returns channel c of frame i, clamped to the buffered frames.
func (r *Resampler) at(i, c, frames int) float64 {
	i = max(0, min(i, frames-1))
	return r.pending[i*r.channels+c]
}

// cubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at
// fraction x between y1 and y2.
func cubicInterpolate(y0, y1, y2, y3, x float64) float64 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return ((a0*x+a1)*x+a2)*x + a3
}
