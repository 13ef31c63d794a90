// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"
	"strings"

	"wvrender/pkg/bitint"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

var (
	ErrInvalidSize    = errors.New("fft size must be a power of two")
	ErrUnknownBackend = errors.New("unknown fft backend")
)

// Backend names accepted by New.
const (
	Gonum = "gonum"
	GoDSP = "godsp"
)

// Transform is a real-input forward FFT of fixed length. Coefficients writes
// the Len()/2+1 non-redundant outputs for seq into dst (allocating when dst is
// nil) and returns it. seq must have length Len().
//
// *fourier.FFT from gonum satisfies this directly.
type Transform interface {
	Len() int
	Coefficients(dst []complex128, seq []float64) []complex128
}

var _ Transform = (*fourier.FFT)(nil)
var _ Transform = (*goDSP)(nil)

// New returns the named backend for n-point transforms. An empty name selects
// gonum.
func New(backend string, n int) (Transform, error) {
	if !bitint.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, n)
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", Gonum:
		return fourier.NewFFT(n), nil
	case GoDSP, "go-dsp":
		return &goDSP{n: n}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Backends lists the names New accepts.
func Backends() []string {
	return []string{Gonum, GoDSP}
}

// goDSP adapts go-dsp's full complex FFT to the half-spectrum contract.
// go-dsp allocates its own output on every call.
type goDSP struct {
	n int
}

func (g *goDSP) Len() int { return g.n }

func (g *goDSP) Coefficients(dst []complex128, seq []float64) []complex128 {
	if len(seq) != g.n {
		panic("fft: sequence length mismatch")
	}
	half := g.n/2 + 1
	if dst == nil {
		dst = make([]complex128, half)
	} else if len(dst) != half {
		panic("fft: destination length mismatch")
	}

	copy(dst, dspfft.FFTReal(seq)[:half])
	return dst
}
