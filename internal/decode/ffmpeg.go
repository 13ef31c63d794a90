// SPDX-License-Identifier: MIT
package decode

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"wvrender/internal/log"
)

// StreamInfo is what ffprobe reports about the first audio stream.
type StreamInfo struct {
	SampleRate int
	Channels   int
	Codec      string
}

type ffprobeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

func parseFFprobeOutput(data []byte) (*StreamInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, ErrNoAudioStream
	}

	s := out.Streams[0]
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 || s.Channels <= 0 {
		return nil, fmt.Errorf("%w: rate %q, channels %d", ErrInvalidStreamFormat, s.SampleRate, s.Channels)
	}

	return &StreamInfo{SampleRate: rate, Channels: s.Channels, Codec: s.CodecName}, nil
}

// Probe runs ffprobe on path and returns the first audio stream's format.
func Probe(ctx context.Context, path string, opts Options) (*StreamInfo, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	}

	cmd := exec.CommandContext(ctx, execPath(opts.FFprobePath, "ffprobe"), args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, newError(path, "probe", fmt.Errorf("ffprobe failed: %w, stderr: %s", err, exitErr.Stderr))
		}
		return nil, newError(path, "probe", fmt.Errorf("ffprobe failed: %w", err))
	}

	info, err := parseFFprobeOutput(output)
	if err != nil {
		return nil, newError(path, "probe", err)
	}
	return info, nil
}

func execPath(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}

// ffmpegSource streams native-rate, native-layout f32le PCM from ffmpeg.
type ffmpegSource struct {
	path       string
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	r          *bufio.Reader
	stderr     bytes.Buffer
	sampleRate int
	channels   int
	buf        []byte
	eof        bool
	waited     bool
}

// OpenFFmpeg decodes any container ffmpeg understands. The stream keeps the
// source rate and channel count; resampling happens in the framing engine.
func OpenFFmpeg(ctx context.Context, path string, opts Options) (Source, error) {
	info, err := Probe(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-v", "error",
		"-i", path,
		"-map", "0:a:0",
		"-vn",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"pipe:1",
	}

	s := &ffmpegSource{
		path:       path,
		sampleRate: info.SampleRate,
		channels:   info.Channels,
	}

	s.cmd = exec.CommandContext(ctx, execPath(opts.FFmpegPath, "ffmpeg"), args...)
	s.cmd.Stderr = &s.stderr

	s.stdout, err = s.cmd.StdoutPipe()
	if err != nil {
		return nil, newError(path, "open", err)
	}
	if err := s.cmd.Start(); err != nil {
		return nil, newError(path, "open", fmt.Errorf("starting ffmpeg: %w", err))
	}
	s.r = bufio.NewReaderSize(s.stdout, 64*1024)

	log.WithFields(log.Fields{
		"component":   "decode",
		"path":        path,
		"codec":       info.Codec,
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
		"args":        strings.Join(args, " "),
	}).Info("Opened audio input through ffmpeg")

	return s, nil
}

func (s *ffmpegSource) SampleRate() int { return s.sampleRate }
func (s *ffmpegSource) Channels() int   { return s.channels }

func (s *ffmpegSource) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	frames := len(dst) / s.channels
	want := frames * s.channels * 4
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.r, s.buf)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		s.eof = true
		if werr := s.wait(); werr != nil {
			return 0, werr
		}
	default:
		return 0, newError(s.path, "read", err)
	}

	samples := (n / (4 * s.channels)) * s.channels
	for i := range samples {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(s.buf[4*i:]))
	}

	if samples == 0 && s.eof {
		return 0, io.EOF
	}
	return samples, nil
}

// wait reaps ffmpeg and turns a non-zero exit into a DecodeError.
func (s *ffmpegSource) wait() error {
	if s.waited {
		return nil
	}
	s.waited = true
	if err := s.cmd.Wait(); err != nil {
		return newError(s.path, "read", fmt.Errorf("ffmpeg decode failed: %w, stderr: %s",
			err, strings.TrimSpace(s.stderr.String())))
	}
	return nil
}

func (s *ffmpegSource) Close() error {
	if s.waited {
		return nil
	}
	// Closing our end makes ffmpeg exit with a broken pipe; that exit status is expected.
	s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	s.waited = true
	_ = s.cmd.Wait()
	return nil
}
