// SPDX-License-Identifier: MIT
package audio

import "math"

// Frame is one analysis window. Channels holds one slice of exactly
// FrameLength samples per channel; samples past Length are zero.
//
// The Framer reuses a single Frame, so the pointer returned by NextFrame is
// only valid until the next call.
type Frame struct {
	Index    int         // 0-based frame number
	Offset   int64       // Analysis-rate sample index of the first sample
	Length   int         // Number of real samples, at most FrameLength
	Channels [][]float64 // Per-channel samples, zero-padded
}

func newFrame(channels, length int) *Frame {
	f := &Frame{Channels: make([][]float64, channels)}
	backing := make([]float64, channels*length)
	for c := range f.Channels {
		f.Channels[c] = backing[c*length : (c+1)*length : (c+1)*length]
	}
	return f
}

// PeakAmplitude returns the largest absolute sample value across channels.
func (f *Frame) PeakAmplitude() float64 {
	var peak float64
	for _, ch := range f.Channels {
		for _, s := range ch[:f.Length] {
			peak = math.Max(peak, math.Abs(s))
		}
	}
	return peak
}
