// Package utils holds signal generators and fakes shared by the package tests.
package utils

import "math"

// MockTransport records everything sent to it instead of transmitting.
type MockTransport struct {
	Events []any
	Closed bool
}

// Send stores the event for later inspection.
func (m *MockTransport) Send(data any) error {
	m.Events = append(m.Events, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// GenerateComplexWave returns a 440Hz fundamental plus two harmonics, peaking at 0.9.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = signal * 0.9
	}
	return buffer
}

// GenerateSineWave returns size samples of a sine at frequency, amplitude 0.9.
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buffer
}

// Interleave packs per-channel slices of equal length into one interleaved slice.
func Interleave(channels ...[]float64) []float64 {
	if len(channels) == 0 {
		return nil
	}
	n := len(channels[0])
	out := make([]float64, n*len(channels))
	for i := range n {
		for c, ch := range channels {
			out[i*len(channels)+c] = ch[i]
		}
	}
	return out
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
// Out-of-range bounds are clamped.
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
