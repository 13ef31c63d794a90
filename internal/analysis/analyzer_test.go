// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"testing"

	"wvrender/internal/fft"
	"wvrender/pkg/utils"
)

const (
	testFrameLength = 2048
	testSampleRate  = 48000
)

func newTestAnalyzer(t testing.TB, backend string, w WindowFunc) *Analyzer {
	t.Helper()

	tr, err := fft.New(backend, testFrameLength)
	if err != nil {
		t.Fatalf("fft.New: %v", err)
	}
	a, err := NewAnalyzer(tr, w)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

func TestNewAnalyzerNilTransform(t *testing.T) {
	if _, err := NewAnalyzer(nil, Hann); !errors.Is(err, ErrNilTransform) {
		t.Fatalf("error = %v, want ErrNilTransform", err)
	}
}

func TestAnalyzeLengthAndSign(t *testing.T) {
	a := newTestAnalyzer(t, fft.Gonum, Hann)
	signal := utils.GenerateComplexWave(testFrameLength, testSampleRate)

	spec := a.Analyze([][]float64{signal}, nil)

	if len(spec) != testFrameLength/2+1 {
		t.Fatalf("len(spec) = %d, want %d", len(spec), testFrameLength/2+1)
	}
	for k, m := range spec {
		if m < 0 || math.IsNaN(m) {
			t.Fatalf("spec[%d] = %v, want non-negative", k, m)
		}
	}
}

func TestAnalyzeSinePeak(t *testing.T) {
	a := newTestAnalyzer(t, fft.Gonum, Hann)

	// Bin 40 sits exactly on 937.5Hz at 48kHz / 2048.
	signal := utils.GenerateSineWave(testFrameLength, testSampleRate, 937.5)
	spec := a.Analyze([][]float64{signal}, nil)

	bin, mag := a.Peak(spec, 1, len(spec))
	if bin != 40 {
		t.Errorf("peak bin = %d, want 40", bin)
	}
	if mag <= 0 {
		t.Errorf("peak magnitude = %v, want > 0", mag)
	}
	if got := a.BinFrequency(bin, testSampleRate); got != 937.5 {
		t.Errorf("BinFrequency(%d) = %v, want 937.5", bin, got)
	}
	if peak := utils.FindPeakBin(spec, 1, len(spec)-1); peak != bin {
		t.Errorf("FindPeakBin = %d, Peak = %d", peak, bin)
	}
}

func TestAnalyzeStereoSumsChannels(t *testing.T) {
	a := newTestAnalyzer(t, fft.Gonum, Hann)
	signal := utils.GenerateComplexWave(testFrameLength, testSampleRate)

	mono := a.Analyze([][]float64{signal}, nil)
	stereo := a.Analyze([][]float64{signal, signal}, nil)

	for k := range mono {
		if stereo[k] != 2*mono[k] {
			t.Fatalf("bin %d: stereo %v, want exactly 2 x %v", k, stereo[k], mono[k])
		}
	}
}

func TestAnalyzeSilenceAndEmpty(t *testing.T) {
	a := newTestAnalyzer(t, fft.Gonum, Hann)

	tests := []struct {
		name     string
		channels [][]float64
	}{
		{"no channels", nil},
		{"silent mono", [][]float64{make([]float64, testFrameLength)}},
		{"short channel", [][]float64{make([]float64, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make(Spectrum, a.Bins())
			for i := range dst {
				dst[i] = 7
			}
			spec := a.Analyze(tt.channels, dst)
			for k, m := range spec {
				if m != 0 {
					t.Fatalf("spec[%d] = %v, want 0", k, m)
				}
			}
		})
	}
}

func TestAnalyzeBackendsAgree(t *testing.T) {
	signal := utils.GenerateComplexWave(testFrameLength, testSampleRate)

	want := newTestAnalyzer(t, fft.Gonum, Blackman).Analyze([][]float64{signal}, nil)
	got := newTestAnalyzer(t, fft.GoDSP, Blackman).Analyze([][]float64{signal}, nil)

	for k := range want {
		if math.Abs(got[k]-want[k]) > 1e-9 {
			t.Fatalf("bin %d: godsp %v, gonum %v", k, got[k], want[k])
		}
	}
}

func TestAnalyzeHotPath(t *testing.T) {
	a := newTestAnalyzer(t, fft.Gonum, Hann)
	left := utils.GenerateComplexWave(testFrameLength, testSampleRate)
	right := utils.GenerateSineWave(testFrameLength, testSampleRate, 1000)
	channels := [][]float64{left, right}

	// Warm-up call (potential initial allocations).
	spec := a.Analyze(channels, nil)
	allocs := testing.AllocsPerRun(100, func() {
		spec = a.Analyze(channels, spec)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Analyze hot path, got %.1f", allocs)
	}
}

func TestHannWindowShape(t *testing.T) {
	w := windowCoefficients(testFrameLength, Hann)

	if w[0] != 0 {
		t.Errorf("w[0] = %v, want 0", w[0])
	}
	if math.Abs(w[testFrameLength-1]) > 1e-12 {
		t.Errorf("w[L-1] = %v, want 0", w[testFrameLength-1])
	}
	for _, n := range []int{1, 100, 1023, 2000} {
		want := 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/float64(testFrameLength-1))
		if math.Abs(w[n]-want) > 1e-12 {
			t.Errorf("w[%d] = %v, want %v", n, w[n], want)
		}
	}

	for _, v := range windowCoefficients(16, Rectangular) {
		if v != 1 {
			t.Fatalf("rectangular coefficient %v, want 1", v)
		}
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		input   string
		want    WindowFunc
		wantErr bool
	}{
		{"hann", Hann, false},
		{"Hanning", Hann, false},
		{"", Hann, false},
		{"BLACKMAN", Blackman, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"hamming", Hamming, false},
		{" nuttall ", Nuttall, false},
		{"none", Rectangular, false},
		{"kaiser", Hann, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWindowFunc(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindowFunc(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseWindowFunc(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if Hann.String() != "hann" {
		t.Errorf("Hann.String() = %q", Hann.String())
	}
}

func TestPeakBounds(t *testing.T) {
	a := newTestAnalyzer(t, fft.Gonum, Hann)
	spec := Spectrum{9, 1, 3, 2}

	tests := []struct {
		from, to int
		wantBin  int
		wantMag  float64
	}{
		{1, 4, 2, 3},
		{-5, 2, 0, 9},
		{3, 100, 3, 2},
		{3, 3, 3, 0},
	}

	for _, tt := range tests {
		bin, mag := a.Peak(spec, tt.from, tt.to)
		if bin != tt.wantBin || mag != tt.wantMag {
			t.Errorf("Peak(%d, %d) = (%d, %v), want (%d, %v)", tt.from, tt.to, bin, mag, tt.wantBin, tt.wantMag)
		}
	}
}

func TestBandLevels(t *testing.T) {
	binHz := float64(testSampleRate) / testFrameLength // 23.4375
	spec := make(Spectrum, testFrameLength/2+1)
	spec[5] = 4 // 117Hz, inside "bass"

	levels := BandLevels(spec, DefaultBands(), binHz, nil)
	if len(levels) != len(DefaultBands()) {
		t.Fatalf("len(levels) = %d", len(levels))
	}

	for i, band := range DefaultBands() {
		if band.Name == "bass" {
			if levels[i] <= 0 {
				t.Errorf("bass level = %v, want > 0", levels[i])
			}
			continue
		}
		if levels[i] != 0 {
			t.Errorf("%s level = %v, want 0", band.Name, levels[i])
		}
	}
}

func BenchmarkAnalyze(b *testing.B) {
	a := newTestAnalyzer(b, fft.Gonum, Hann)
	signal := utils.GenerateComplexWave(testFrameLength, testSampleRate)
	channels := [][]float64{signal, signal}
	spec := a.Analyze(channels, nil)

	b.ReportAllocs()

	for b.Loop() {
		spec = a.Analyze(channels, spec)
	}
}
