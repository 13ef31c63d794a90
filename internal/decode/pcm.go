// SPDX-License-Identifier: MIT
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmReader is the part of the go-audio wav and aiff decoders we use.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// pcmSource adapts a go-audio integer PCM decoder to Source.
type pcmSource struct {
	dec        pcmReader
	sampleRate int
	channels   int
	scale      float32 // 1 / full-scale value for the bit depth
	intBuf     *goaudio.IntBuffer
	eof        bool
}

func newPCMSource(dec pcmReader, format *goaudio.Format, bitDepth int) (*pcmSource, error) {
	if format == nil || format.SampleRate <= 0 || format.NumChannels <= 0 {
		return nil, ErrInvalidStreamFormat
	}

	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &pcmSource{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		scale:      1 / float32(int64(1)<<(bitDepth-1)),
		intBuf: &goaudio.IntBuffer{
			Format: format,
			Data:   make([]int, 4096*format.NumChannels),
		},
	}, nil
}

func (s *pcmSource) SampleRate() int { return s.sampleRate }
func (s *pcmSource) Channels() int   { return s.channels }
func (s *pcmSource) Close() error    { return nil }

func (s *pcmSource) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.intBuf.Data) < len(dst) {
		s.intBuf.Data = make([]int, len(dst))
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("reading pcm: %w", err)
	}

	for i := range n {
		dst[i] = float32(s.intBuf.Data[i]) * s.scale
	}

	// A short read from a file-backed decoder means the data chunk is exhausted.
	if n == 0 || n < len(dst) || err == io.EOF {
		s.eof = true
		if n == 0 {
			return 0, io.EOF
		}
	}

	return n, nil
}

// asReadSeeker returns r itself when it can seek, otherwise buffers it.
// go-audio needs to seek between chunks.
func asReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("buffering input: %w", err)
	}
	return bytes.NewReader(data), nil
}

// WavDecoder decodes integer PCM RIFF/WAVE files.
type WavDecoder struct{}

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

func (WavDecoder) Decode(r io.Reader) (Source, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	dec.ReadInfo()

	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: wav format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	return newPCMSource(dec, dec.Format(), int(dec.BitDepth))
}

// AiffDecoder decodes integer PCM AIFF files.
type AiffDecoder struct{}

func (AiffDecoder) Decode(r io.Reader) (Source, error) {
	rs, err := asReadSeeker(r)
	if err != nil {
		return nil, err
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	return newPCMSource(dec, dec.Format(), int(dec.BitDepth))
}
