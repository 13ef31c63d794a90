// SPDX-License-Identifier: MIT
package video

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func testOptions() Options {
	return Options{Width: 64, Height: 48, FPS: 46.875, Codec: "libx264", Preset: "ultrafast", CRF: 18}
}

func TestOpenFFmpegUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		opts Options
	}{
		{"mp4", filepath.Join(dir, "out.mp4"), testOptions()},
		{"no extension", filepath.Join(dir, "out"), testOptions()},
		{"webm", filepath.Join(dir, "out.WEBM"), testOptions()},
		{"missing encoder", filepath.Join(dir, "out.mkv"), Options{Width: 64, Height: 48, FPS: 25, FFmpegPath: filepath.Join(dir, "no-such-ffmpeg")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := OpenFFmpeg(context.Background(), tt.path, tt.opts)
			if err == nil {
				sink.Close()
				t.Fatal("OpenFFmpeg succeeded, want error")
			}

			var ufe *UnsupportedFormatError
			if !errors.As(err, &ufe) {
				t.Fatalf("error %T (%v) is not *UnsupportedFormatError", err, err)
			}
			if _, statErr := os.Stat(tt.path); !os.IsNotExist(statErr) {
				t.Errorf("output %s was created", tt.path)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", testOptions(), false},
		{"odd width", Options{Width: 63, Height: 48, FPS: 25}, true},
		{"odd height", Options{Width: 64, Height: 47, FPS: 25}, true},
		{"zero size", Options{FPS: 25}, true},
		{"zero fps", Options{Width: 64, Height: 48}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error %v does not wrap ErrInvalidOptions", err)
			}
		})
	}
}

func TestOptionsArgs(t *testing.T) {
	args := testOptions().args("out.mkv")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-f rawvideo -pix_fmt rgba -s 64x48 -framerate 46.875 -i pipe:0",
		"-c:v libx264 -preset ultrafast -crf 18",
		"-pix_fmt yuv420p -f matroska out.mkv",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}

	opts := Options{Width: 64, Height: 48, FPS: 30, CRF: -1}
	args = opts.args("x.mkv")
	if slices.Contains(args, "-crf") || slices.Contains(args, "-preset") {
		t.Errorf("args %v include unset encoder options", args)
	}
	if !slices.Contains(args, defaultCodec) {
		t.Errorf("args %v missing default codec", args)
	}
}

func TestWriteFrame(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 9, A: 255})
		}
	}

	var full bytes.Buffer
	if err := writeFrame(&full, img, 4, 2); err != nil {
		t.Fatal(err)
	}
	if full.Len() != 4*4*2 {
		t.Fatalf("wrote %d bytes, want %d", full.Len(), 4*4*2)
	}

	// A sub-image has a wider stride than its width and is written row by row.
	sub := img.SubImage(image.Rect(1, 0, 3, 2)).(*image.RGBA)
	var rows bytes.Buffer
	if err := writeFrame(&rows, sub, 2, 2); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 9, 255, 2, 0, 9, 255, 1, 1, 9, 255, 2, 1, 9, 255}
	if !bytes.Equal(rows.Bytes(), want) {
		t.Errorf("sub-image bytes = %v, want %v", rows.Bytes(), want)
	}

	if err := writeFrame(&rows, img, 8, 8); err == nil {
		t.Error("size mismatch accepted")
	}
	if err := writeFrame(&rows, nil, 4, 2); err == nil {
		t.Error("nil frame accepted")
	}
}

func TestFFmpegSinkEncodes(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	path := filepath.Join(t.TempDir(), "out.mkv")
	opts := testOptions()
	opts.Codec = "" // Fall back to the default when libx264 is present

	sink, err := OpenFFmpeg(context.Background(), path, opts)
	if err != nil {
		var ee *EncodeError
		if errors.As(err, &ee) {
			t.Skipf("encoder unavailable: %v", err)
		}
		t.Fatalf("OpenFFmpeg: %v", err)
	}
	defer sink.Close()

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for i := range 10 {
		for p := range img.Pix {
			img.Pix[p] = uint8(i * 20)
		}
		if err := sink.Submit(img); err != nil {
			skipWithoutEncoder(t, err)
			t.Fatalf("Submit frame %d: %v", i, err)
		}
	}
	if sink.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", sink.Frames())
	}

	if err := sink.Flush(); err != nil {
		skipWithoutEncoder(t, err)
		t.Fatalf("Flush: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Errorf("second Flush = %v, want nil", err)
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("output missing or empty: %v", err)
	}

	var ee *EncodeError
	if err := sink.Submit(img); !errors.As(err, &ee) || !errors.Is(err, ErrFlushed) {
		t.Errorf("Submit after Flush = %v, want EncodeError wrapping ErrFlushed", err)
	}
}

// skipWithoutEncoder skips when ffmpeg was built without libx264.
func skipWithoutEncoder(t *testing.T, err error) {
	t.Helper()

	msg := err.Error()
	if strings.Contains(msg, "libx264") || strings.Contains(msg, "Unknown encoder") {
		t.Skipf("libx264 not available: %v", err)
	}
}
