// SPDX-License-Identifier: MIT
package visual

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidBinRange = errors.New("visual: invalid bin range")

// BinRange is the half-open range of spectrum bins [Min, Max) to draw.
type BinRange struct {
	Min int
	Max int
}

// NewBinRange converts a frequency window to bins for a frameLength-point
// transform at sampleRate: bin = floor(frameLength / sampleRate * hz). Max
// is clamped to the spectrum length frameLength/2+1.
func NewBinRange(frameLength, sampleRate int, minHz, maxHz float64) (BinRange, error) {
	if frameLength <= 0 || sampleRate <= 0 {
		return BinRange{}, fmt.Errorf("%w: frame length %d, sample rate %d", ErrInvalidBinRange, frameLength, sampleRate)
	}

	perHz := float64(frameLength) / float64(sampleRate)
	r := BinRange{
		Min: int(math.Floor(perHz * minHz)),
		Max: min(int(math.Floor(perHz*maxHz)), frameLength/2+1),
	}
	if err := r.Validate(frameLength/2 + 1); err != nil {
		return BinRange{}, fmt.Errorf("%w (%.1f-%.1f Hz)", err, minHz, maxHz)
	}
	return r, nil
}

// Validate checks 0 <= Min < Max <= bins.
func (r BinRange) Validate(bins int) error {
	if r.Min < 0 || r.Min >= r.Max || r.Max > bins {
		return fmt.Errorf("%w: [%d, %d) of %d bins", ErrInvalidBinRange, r.Min, r.Max, bins)
	}
	return nil
}

// Len is the number of bins in the range.
func (r BinRange) Len() int { return r.Max - r.Min }

func (r BinRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}
