// SPDX-License-Identifier: MIT
package analysis

import (
	"math/cmplx"

	"wvrender/internal/fft"
	"wvrender/internal/log"

	"gonum.org/v1/gonum/floats"
)

// Spectrum holds non-negative magnitudes for bins 0..L/2. Bin 0 is DC.
type Spectrum []float64

// Analyzer windows each channel, runs the real FFT and sums the magnitudes
// across channels. Magnitudes are not normalized by window energy.
//
// An Analyzer owns its scratch buffers and is not safe for concurrent use.
type Analyzer struct {
	transform  fft.Transform
	size       int
	windowType WindowFunc
	window     []float64    // Pre-calculated window coefficients.
	input      []float64    // Windowed copy of the current channel.
	coeffs     []complex128 // FFT output, L/2+1 values.
}

// NewAnalyzer builds an Analyzer around t, precomputing the window for
// t.Len() samples.
func NewAnalyzer(t fft.Transform, windowType WindowFunc) (*Analyzer, error) {
	if t == nil {
		return nil, ErrNilTransform
	}

	n := t.Len()
	log.WithFields(log.Fields{
		"component": "analysis",
		"size":      n,
		"window":    windowType.String(),
	}).Debug("Initializing analyzer")

	return &Analyzer{
		transform:  t,
		size:       n,
		windowType: windowType,
		window:     windowCoefficients(n, windowType),
		input:      make([]float64, n),
		coeffs:     make([]complex128, n/2+1),
	}, nil
}

// Size returns the transform length L.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the spectrum length L/2+1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// Window returns the window in use.
func (a *Analyzer) Window() WindowFunc { return a.windowType }

// Analyze computes the channel-summed magnitude spectrum. Channels shorter
// than L are zero-padded; with no channels the result is all zeros. dst is
// reused when it has the capacity, so the steady state does not allocate.
func (a *Analyzer) Analyze(channels [][]float64, dst Spectrum) Spectrum {
	dst = Silence(dst, a.Bins())

	for c, ch := range channels {
		n := min(len(ch), a.size)
		for i := range n {
			a.input[i] = ch[i] * a.window[i]
		}
		clear(a.input[n:])

		a.transform.Coefficients(a.coeffs, a.input)

		if c == 0 {
			for k, v := range a.coeffs {
				dst[k] = cmplx.Abs(v)
			}
			continue
		}
		for k, v := range a.coeffs {
			dst[k] += cmplx.Abs(v)
		}
	}

	return dst
}

// Silence returns dst resized to bins and zeroed. The render loop uses it for
// gated frames in place of Analyze.
func Silence(dst Spectrum, bins int) Spectrum {
	if cap(dst) < bins {
		dst = make(Spectrum, bins)
	}
	dst = dst[:bins]
	clear(dst)
	return dst
}

// BinFrequency returns the center frequency in Hz of bin k for a transform
// of the Analyzer's size at sampleRate.
func (a *Analyzer) BinFrequency(k int, sampleRate float64) float64 {
	if k < 0 || k >= a.Bins() {
		return 0
	}
	return float64(k) * sampleRate / float64(a.size)
}

// Peak returns the loudest bin in [from, to) and its magnitude. Bounds are
// clamped to the spectrum; an empty range returns (from, 0).
func (a *Analyzer) Peak(spec Spectrum, from, to int) (int, float64) {
	from = max(from, 0)
	to = min(to, len(spec))
	if from >= to {
		return from, 0
	}

	i := floats.MaxIdx(spec[from:to])
	return from + i, spec[from+i]
}
