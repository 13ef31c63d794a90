// SPDX-License-Identifier: MIT
package analysis

import "errors"

var (
	ErrNilTransform  = errors.New("analysis: nil fft transform")
	ErrUnknownWindow = errors.New("analysis: unknown window function")
)

// Processor turns one analysis frame into a magnitude spectrum. The render
// loop depends on this rather than on *Analyzer so it can be faked.
type Processor interface {
	// Analyze writes the channel-summed magnitude spectrum of channels into
	// dst (resizing it when needed) and returns it.
	Analyze(channels [][]float64, dst Spectrum) Spectrum
	// Size is the transform length L; spectra have Size()/2+1 bins.
	Size() int
}

var _ Processor = (*Analyzer)(nil)
