// SPDX-License-Identifier: MIT
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"wvrender/internal/log"
)

// Source is a stream of decoded PCM.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels count (1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1, 1] and
	// returns the number of values written (not frames). n == 0 with io.EOF
	// means the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases the decoder and its input.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Options configures Open.
type Options struct {
	FFmpegPath  string // Defaults to "ffmpeg" on PATH
	FFprobePath string // Defaults to "ffprobe" on PATH
}

// Registry maps lower-case file extensions (with the dot) to decoders.
type Registry struct {
	codecs map[string]Decoder
	mtx    sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Decoder)}
}

func (r *Registry) Register(ext string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(ext)] = d
}

func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(ext)]
	return d, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// DefaultRegistry holds the native decoders.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	r.Register(".wav", WavDecoder{})
	r.Register(".wave", WavDecoder{})
	r.Register(".aif", AiffDecoder{})
	r.Register(".aiff", AiffDecoder{})
	r.Register(".mp3", MP3Decoder{})
	r.Register(".ogg", VorbisDecoder{})
	r.Register(".oga", VorbisDecoder{})
	return r
}()

// Formats lists the natively decoded extensions. Everything else goes
// through ffmpeg.
func Formats() []string {
	return DefaultRegistry.Extensions()
}

// Open decodes path with the native decoder registered for its extension,
// or with ffmpeg when there is none or the native decoder does not handle
// the file's sample encoding (float or 8-bit PCM, for instance). ctx scopes
// the ffmpeg subprocess.
func Open(ctx context.Context, path string, opts Options) (Source, error) {
	logger := log.WithFields(log.Fields{"component": "decode", "path": path})

	ext := filepath.Ext(path)
	dec, ok := DefaultRegistry.Get(ext)
	if !ok {
		logger.Debugf("no native decoder for %q, using ffmpeg", ext)
		return OpenFFmpeg(ctx, path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(path, "open", err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		if errors.Is(err, ErrUnsupportedEncoding) || errors.Is(err, ErrUnsupportedBitDepth) {
			logger.Debugf("native decoder declined (%v), using ffmpeg", err)
			return OpenFFmpeg(ctx, path, opts)
		}
		return nil, newError(path, "open", err)
	}

	logger.WithFields(log.Fields{
		"sample_rate": src.SampleRate(),
		"channels":    src.Channels(),
	}).Info("Opened audio input")

	return &fileSource{Source: src, f: f, path: path}, nil
}

// fileSource closes the underlying file with the decoder and tags read
// errors with the input path.
type fileSource struct {
	Source
	f    *os.File
	path string
}

func (s *fileSource) ReadSamples(dst []float32) (int, error) {
	n, err := s.Source.ReadSamples(dst)
	if err != nil && err != io.EOF {
		return n, newError(s.path, "read", err)
	}
	return n, err
}

func (s *fileSource) Close() error {
	srcErr := s.Source.Close()
	fErr := s.f.Close()
	if srcErr != nil {
		return fmt.Errorf("closing decoder: %w", srcErr)
	}
	return fErr
}
