// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"wvrender/internal/visual"
	"wvrender/pkg/utils"
)

func decodeWav(t *testing.T, path string) (*wav.Decoder, []int) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		t.Fatal("recording is not a valid WAV file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("FullPCMBuffer: %v", err)
	}
	return d, buf.Data
}

func TestRecorderClipsAndScales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	rec, err := NewRecorder(path, 8000, 1, 16)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	if err := rec.Write([]float64{0, 0.5, -0.5, 1, -1, 2, -2}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	d, got := decodeWav(t, path)
	if d.SampleRate != 8000 || d.NumChans != 1 || d.BitDepth != 16 {
		t.Errorf("format = %d Hz x %d @ %d bits", d.SampleRate, d.NumChans, d.BitDepth)
	}
	want := []int{0, 16384, -16384, 32767, -32767, 32767, -32767}
	if len(got) != len(want) {
		t.Fatalf("samples = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestNewRecorderValidation(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewRecorder(filepath.Join(dir, "a.wav"), 48000, 2, 8); !errors.Is(err, ErrInvalidBitDepth) {
		t.Errorf("8-bit err = %v, want ErrInvalidBitDepth", err)
	}
	if _, err := NewRecorder(filepath.Join(dir, "b.wav"), 0, 2, 16); err == nil {
		t.Error("zero sample rate accepted")
	}
	if _, err := NewRecorder(filepath.Join(dir, "missing", "c.wav"), 48000, 2, 16); err == nil {
		t.Error("unwritable path accepted")
	}
}

func TestEngineRecordsAnalysisStream(t *testing.T) {
	left, right := make([]float64, 6000), make([]float64, 6000)
	for i := range left {
		left[i], right[i] = 0.25, -0.25
	}
	interleaved := utils.Interleave(left, right)
	data := make([]float32, len(interleaved))
	for i, v := range interleaved {
		data[i] = float32(v)
	}
	src := &sliceSource{rate: testSampleRate, channels: 2, data: data, chunk: 2000}
	fx := newEngineFixture(t, src, visual.ModeSpectrum, nil)

	path := filepath.Join(t.TempDir(), "tap.wav")
	if err := fx.engine.StartRecording(path); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if err := fx.engine.StartRecording(path); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second StartRecording err = %v, want ErrAlreadyRecording", err)
	}
	if !fx.engine.IsRecording() {
		t.Fatal("IsRecording = false")
	}

	if err := fx.engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := fx.engine.StopRecording(); err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if fx.engine.IsRecording() {
		t.Error("IsRecording = true after stop")
	}

	d, got := decodeWav(t, path)
	if d.SampleRate != testSampleRate || d.NumChans != 2 {
		t.Errorf("format = %d Hz x %d", d.SampleRate, d.NumChans)
	}
	if len(got) != len(data) {
		t.Fatalf("recorded %d values, want %d", len(got), len(data))
	}
	for i, v := range got {
		want := 8192
		if i%2 == 1 {
			want = -8192
		}
		if v != want {
			t.Fatalf("value %d = %d, want %d", i, v, want)
		}
	}
}

func TestSetRecordingBitDepth(t *testing.T) {
	e := &Engine{}
	for _, bits := range []int{16, 24, 32} {
		if err := e.SetRecordingBitDepth(bits); err != nil {
			t.Errorf("%d bits: %v", bits, err)
		}
	}
	if err := e.SetRecordingBitDepth(12); !errors.Is(err, ErrInvalidBitDepth) {
		t.Errorf("12 bits err = %v", err)
	}
	if e.recordBitDepth != 32 {
		t.Errorf("bit depth = %d after rejected change", e.recordBitDepth)
	}
}
