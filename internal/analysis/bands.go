// SPDX-License-Identifier: MIT
package analysis

import "math"

// FrequencyBand names a frequency range [LowHz, HighHz).
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands splits the audible range the way most level meters do. The
// treble band runs to Nyquist.
func DefaultBands() []FrequencyBand {
	return []FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: math.Inf(1)},
	}
}

// BandLevels writes the RMS magnitude of each band into dst and returns it.
// binHz is the width of one bin (sample_rate / L). Bands that contain no bin
// report 0.
func BandLevels(spec Spectrum, bands []FrequencyBand, binHz float64, dst []float64) []float64 {
	if cap(dst) < len(bands) {
		dst = make([]float64, len(bands))
	}
	dst = dst[:len(bands)]

	for b, band := range bands {
		var energy float64
		var n int

		lo := max(int(math.Ceil(band.LowHz/binHz)), 0)
		for k := lo; k < len(spec); k++ {
			if float64(k)*binHz >= band.HighHz {
				break
			}
			energy += spec[k] * spec[k]
			n++
		}

		dst[b] = 0
		if n > 0 {
			dst[b] = math.Sqrt(energy / float64(n))
		}
	}
	return dst
}
