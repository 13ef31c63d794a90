// SPDX-License-Identifier: MIT
package render

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"wvrender/internal/visual"
)

var (
	yellow = color.NRGBA{R: 0xff, G: 0xff, A: 0xff}
	black  = color.NRGBA{A: 0xff}
)

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func TestCanvasClearAndStroke(t *testing.T) {
	c, err := NewCanvas(100, 100)
	if err != nil {
		t.Fatal(err)
	}

	c.Clear(yellow)
	img := c.Image()
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for _, p := range [][2]int{{0, 0}, {99, 99}, {50, 50}} {
		if got := img.RGBAAt(p[0], p[1]); got != (color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
			t.Fatalf("pixel %v after Clear = %v, want yellow", p, got)
		}
	}

	c.StrokePolyline(visual.Polyline{{X: 10, Y: 50}, {X: 50, Y: 50}, {X: 90, Y: 50}}, black, 4)

	on := img.RGBAAt(50, 50)
	if !near(on.R, 0) || !near(on.G, 0) || on.A != 0xff {
		t.Errorf("pixel on the line = %v, want black", on)
	}
	off := img.RGBAAt(50, 10)
	if off != (color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
		t.Errorf("pixel off the line = %v, want yellow", off)
	}

	// Clearing again erases the stroke.
	c.Clear(yellow)
	if got := img.RGBAAt(50, 50); got != (color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
		t.Errorf("pixel after second Clear = %v, want yellow", got)
	}
}

func TestCanvasDegeneratePolyline(t *testing.T) {
	c, _ := NewCanvas(10, 10)
	c.Clear(yellow)
	c.StrokePolyline(nil, black, 2)
	c.StrokePolyline(visual.Polyline{{X: 5, Y: 5}}, black, 2)

	if got := c.Image().RGBAAt(5, 5); got != (color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
		t.Errorf("single point drew pixel %v", got)
	}
}

func TestNewCanvasInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		if _, err := NewCanvas(size[0], size[1]); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("NewCanvas(%d, %d) error = %v, want ErrInvalidSize", size[0], size[1], err)
		}
	}
}

func TestCanvasSavePNG(t *testing.T) {
	c, _ := NewCanvas(16, 16)
	c.Clear(black)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := c.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("png not written: %v", err)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"000000", color.NRGBA{A: 0xff}, false},
		{"ffff00", color.NRGBA{R: 0xff, G: 0xff, A: 0xff}, false},
		{"#1E90FF", color.NRGBA{R: 0x1e, G: 0x90, B: 0xff, A: 0xff}, false},
		{"0x80ff0000", color.NRGBA{R: 0xff, A: 0x80}, false},
		{"#00112233", color.NRGBA{R: 0x11, G: 0x22, B: 0x33}, false},
		{" 123456 ", color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}, false},
		{"fff", color.NRGBA{}, true},
		{"zzzzzz", color.NRGBA{}, true},
		{"gg000000", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Fatalf("ParseColor(%q) error = %v, want ErrInvalidColor", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatColor(t *testing.T) {
	for _, s := range []string{"ffff00", "1e90ff", "80ff0000"} {
		c, err := ParseColor(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatColor(c); got != s {
			t.Errorf("FormatColor(ParseColor(%q)) = %q", s, got)
		}
	}
}

func BenchmarkFrame(b *testing.B) {
	c, _ := NewCanvas(1920, 1080)
	line := make(visual.Polyline, 424)
	for j := range line {
		line[j] = visual.Point{X: 96 + float64(j)*4, Y: 540 + float64(j%2*2-1)*100}
	}

	b.ReportAllocs()

	for b.Loop() {
		c.Clear(yellow)
		c.StrokePolyline(line, black, 2)
	}
}
