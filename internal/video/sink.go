// SPDX-License-Identifier: MIT
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"wvrender/internal/log"
)

// Sink accepts rendered frames in presentation order.
type Sink interface {
	// Submit encodes img as the next frame; its timestamp is Frames()/FPS.
	Submit(img *image.RGBA) error
	// Flush drains the encoder and finalizes the container. Idempotent.
	Flush() error
	// Frames is the number of frames accepted so far.
	Frames() int
}

// Options configures the ffmpeg encoder.
type Options struct {
	Width       int
	Height      int
	FPS         float64
	FFmpegPath  string // Defaults to "ffmpeg" on PATH
	Codec       string // Defaults to libx264
	Preset      string // Encoder preset, omitted when empty
	CRF         int    // Constant rate factor, omitted when negative
	PixelFormat string // Output pixel format, defaults to yuv420p
}

// Extensions lists the output containers OpenFFmpeg accepts.
func Extensions() []string {
	return []string{".mkv"}
}

const (
	defaultCodec       = "libx264"
	defaultPixelFormat = "yuv420p"
)

// FFmpegSink pipes raw RGBA frames into an ffmpeg process that encodes and
// muxes them into Matroska.
type FFmpegSink struct {
	path   string
	opts   Options
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *syncBuffer
	frames int
	start  time.Time
	done   bool
	err    error // Result of the first Flush
}

var _ Sink = (*FFmpegSink)(nil)

// OpenFFmpeg checks the output format and starts the encoder. Nothing is
// created on disk when the extension is not .mkv or ffmpeg is missing; both
// are reported as *UnsupportedFormatError. ctx bounds the ffmpeg process.
func OpenFFmpeg(ctx context.Context, path string, opts Options) (*FFmpegSink, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".mkv" {
		return nil, &UnsupportedFormatError{Path: path, Format: ext, Reason: "only Matroska (.mkv) output is supported"}
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}

	bin := opts.FFmpegPath
	if bin == "" {
		bin = "ffmpeg"
	}
	resolved, err := exec.LookPath(bin)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: path, Format: ext, Reason: fmt.Sprintf("encoder %q not available: %v", bin, err)}
	}

	s := &FFmpegSink{
		path:   path,
		opts:   opts,
		stderr: &syncBuffer{},
	}

	args := opts.args(path)
	s.cmd = exec.CommandContext(ctx, resolved, args...)
	s.cmd.Stderr = s.stderr

	s.stdin, err = s.cmd.StdinPipe()
	if err != nil {
		return nil, &EncodeError{Op: "start", Err: err}
	}
	if err := s.cmd.Start(); err != nil {
		return nil, &EncodeError{Op: "start", Err: err}
	}
	s.start = time.Now()

	log.WithFields(log.Fields{
		"component": "video",
		"path":      path,
		"size":      fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"fps":       opts.FPS,
		"codec":     opts.codec(),
	}).Info("Started encoder")
	log.Debugf("ffmpeg %s", strings.Join(args, " "))

	return s, nil
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.Width%2 != 0 || o.Height%2 != 0 {
		return fmt.Errorf("%w: size %dx%d must be even for 4:2:0 output", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.FPS <= 0 {
		return fmt.Errorf("%w: frame rate %v", ErrInvalidOptions, o.FPS)
	}
	return nil
}

func (o Options) codec() string {
	if o.Codec == "" {
		return defaultCodec
	}
	return o.Codec
}

func (o Options) args(path string) []string {
	pixFmt := o.PixelFormat
	if pixFmt == "" {
		pixFmt = defaultPixelFormat
	}

	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", o.Width, o.Height),
		"-framerate", strconv.FormatFloat(o.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-c:v", o.codec(),
	}
	if o.Preset != "" {
		args = append(args, "-preset", o.Preset)
	}
	if o.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(o.CRF))
	}
	return append(args, "-pix_fmt", pixFmt, "-f", "matroska", path)
}

// Submit writes one frame. The image must match the configured size.
func (s *FFmpegSink) Submit(img *image.RGBA) error {
	if s.done {
		return &EncodeError{Op: "submit", Frame: s.frames, Err: ErrFlushed}
	}
	if err := writeFrame(s.stdin, img, s.opts.Width, s.opts.Height); err != nil {
		return &EncodeError{Op: "submit", Frame: s.frames, Err: err, Stderr: s.stderr.String()}
	}

	s.frames++
	return nil
}

// writeFrame copies img's rows to w as tightly packed RGBA.
func writeFrame(w io.Writer, img *image.RGBA, width, height int) error {
	if img == nil {
		return errors.New("nil frame")
	}
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d", b.Dx(), b.Dy(), width, height)
	}

	rowBytes := 4 * width
	if img.Stride == rowBytes {
		start := img.PixOffset(b.Min.X, b.Min.Y)
		_, err := w.Write(img.Pix[start : start+rowBytes*height])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[start : start+rowBytes]); err != nil {
			return err
		}
	}
	return nil
}

// Flush closes ffmpeg's input and waits for it to finish writing the file.
func (s *FFmpegSink) Flush() error {
	if s.done {
		return s.err
	}
	s.done = true

	closeErr := s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		s.err = &EncodeError{Op: "flush", Frame: s.frames, Err: err, Stderr: strings.TrimSpace(s.stderr.String())}
		return s.err
	}
	if closeErr != nil {
		s.err = &EncodeError{Op: "flush", Frame: s.frames, Err: closeErr}
		return s.err
	}

	log.WithFields(log.Fields{
		"component": "video",
		"path":      s.path,
		"frames":    s.frames,
		"duration":  s.Duration().String(),
		"elapsed":   time.Since(s.start).Round(time.Millisecond).String(),
	}).Info("Finished encoding")
	return nil
}

// Close stops ffmpeg without draining when Flush was never called. Frames
// already written may be left in a truncated file.
func (s *FFmpegSink) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	s.err = &EncodeError{Op: "flush", Frame: s.frames, Err: errors.New("encoder aborted")}

	s.stdin.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

func (s *FFmpegSink) Frames() int { return s.frames }

// Duration is the presentation length of the frames written so far.
func (s *FFmpegSink) Duration() time.Duration {
	return time.Duration(float64(s.frames) / s.opts.FPS * float64(time.Second))
}

// syncBuffer collects stderr written by exec's copying goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
