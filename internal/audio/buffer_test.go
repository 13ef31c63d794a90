// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"slices"
	"testing"
)

func TestFIFOPeekDiscard(t *testing.T) {
	q := newFIFO(2, 4)
	q.Write([]float64{1, -1, 2, -2, 3, -3})
	q.Write([]float64{4, -4, 99}) // Trailing half frame is dropped

	if q.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", q.Len())
	}

	dst := [][]float64{make([]float64, 3), make([]float64, 3)}
	if n := q.Peek(dst, 3); n != 3 {
		t.Fatalf("Peek returned %d, want 3", n)
	}
	if dst[0][2] != 3 || dst[1][2] != -3 {
		t.Errorf("Peek third frame = %v, %v", dst[0][2], dst[1][2])
	}

	// Peeking does not consume.
	if q.Len() != 4 {
		t.Errorf("Len() after Peek = %d, want 4", q.Len())
	}

	q.Discard(3)
	for i := range dst[0] {
		dst[0][i] = 42
	}
	if n := q.Peek(dst, 3); n != 1 {
		t.Fatalf("Peek returned %d, want 1", n)
	}
	if dst[0][0] != 4 || dst[0][1] != 0 || dst[0][2] != 0 {
		t.Errorf("Peek after discard = %v, want [4 0 0]", dst[0])
	}

	q.Discard(10)
	if q.Len() != 0 {
		t.Errorf("Len() after over-discard = %d, want 0", q.Len())
	}
}

func TestFIFOCompactsBeforeGrowing(t *testing.T) {
	q := newFIFO(1, 8)
	for i := range 100 {
		q.Write([]float64{float64(i), float64(i)})
		q.Discard(1)
	}

	if q.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", q.Len())
	}
	dst := [][]float64{make([]float64, 100)}
	q.Peek(dst, 100)
	for i := range 50 {
		if dst[0][2*i] != float64(50+i) {
			t.Fatalf("sample %d = %v, want %v", 2*i, dst[0][2*i], float64(50+i))
		}
	}
}

func TestRemixHotPath(t *testing.T) {
	src := make([]float64, 2*4096)
	dst := remix(nil, src, 2, 1)

	allocs := testing.AllocsPerRun(100, func() {
		dst = remix(dst, src, 2, 1)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in remix, got %.1f", allocs)
	}
}

func TestResamplerValidation(t *testing.T) {
	if _, err := NewResampler(0, 48000, 1); err == nil {
		t.Error("NewResampler(0, ...) succeeded")
	}
	if _, err := NewResampler(44100, 48000, 0); err == nil {
		t.Error("NewResampler with 0 channels succeeded")
	}
}

func TestResamplerLengthAndDC(t *testing.T) {
	tests := []struct {
		srcRate, dstRate int
		chunk            int
	}{
		{44100, 48000, 441},
		{48000, 44100, 1000},
		{22050, 48000, 333},
		{96000, 48000, 4096},
		{8000, 48000, 80},
	}

	for _, tt := range tests {
		t.Run(formatRates(tt.srcRate, tt.dstRate), func(t *testing.T) {
			r, err := NewResampler(tt.srcRate, tt.dstRate, 2)
			if err != nil {
				t.Fatal(err)
			}

			in := make([]float64, 2*tt.chunk)
			for i := 0; i < len(in); i += 2 {
				in[i], in[i+1] = 0.25, -0.75
			}

			var out []float64
			for fed := 0; fed < tt.srcRate; fed += tt.chunk {
				n := min(tt.chunk, tt.srcRate-fed)
				out = append(out, r.Process(in[:2*n])...)
			}
			out = append(out, r.Flush()...)

			frames := len(out) / 2
			if frames < tt.dstRate-1 || frames > tt.dstRate+1 {
				t.Errorf("one second resampled to %d frames, want about %d", frames, tt.dstRate)
			}
			for i := 0; i < len(out); i += 2 {
				if math.Abs(out[i]-0.25) > 1e-9 || math.Abs(out[i+1]+0.75) > 1e-9 {
					t.Fatalf("frame %d = (%v, %v), want (0.25, -0.75)", i/2, out[i], out[i+1])
				}
			}
		})
	}
}

func TestResamplerFollowsRamp(t *testing.T) {
	// Cubic interpolation is exact on linear input away from the edges.
	r, _ := NewResampler(1000, 3000, 1)
	in := make([]float64, 100)
	for i := range in {
		in[i] = float64(i)
	}

	// Process and Flush share one output buffer.
	out := slices.Clone(r.Process(in))
	out = append(out, r.Flush()...)
	for j := 3; j < 3*97; j++ {
		want := float64(j) / 3
		if math.Abs(out[j]-want) > 1e-9 {
			t.Fatalf("out[%d] = %v, want %v", j, out[j], want)
		}
	}
}

func TestCubicInterpolate(t *testing.T) {
	tests := []struct {
		y0, y1, y2, y3, x, want float64
	}{
		{0, 1, 2, 3, 0, 1},
		{0, 1, 2, 3, 1, 2},
		{0, 1, 2, 3, 0.5, 1.5},
		{5, 5, 5, 5, 0.3, 5},
	}

	for _, tt := range tests {
		if got := cubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("cubicInterpolate(%v, %v, %v, %v, %v) = %v, want %v",
				tt.y0, tt.y1, tt.y2, tt.y3, tt.x, got, tt.want)
		}
	}
}

func formatRates(src, dst int) string {
	return formatFloat(float64(src)/1000) + "k-" + formatFloat(float64(dst)/1000) + "k"
}
