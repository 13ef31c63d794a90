// SPDX-License-Identifier: MIT
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Reader is the part of gomp3.Decoder we use, so tests can fake it.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// go-mp3 always produces 16-bit little-endian stereo.
const (
	mp3Channels      = 2
	mp3BytesPerFrame = 2 * mp3Channels
)

type mp3Source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	eof        bool
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return mp3Channels }
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	// Whole frames only, so channel interleaving never shifts between reads.
	want := (len(dst) / mp3Channels) * mp3BytesPerFrame
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.dec, s.buf)
	switch err {
	case nil:
	case io.EOF, io.ErrUnexpectedEOF:
		s.eof = true
	default:
		return 0, fmt.Errorf("decoding frame: %w", err)
	}

	samples := (n / mp3BytesPerFrame) * mp3Channels
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 && s.eof {
		return 0, io.EOF
	}
	return samples, nil
}

// MP3Decoder decodes MPEG-1/2 Layer III streams.
type MP3Decoder struct{}

func (MP3Decoder) Decode(r io.Reader) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("reading stream header: %w", err)
	}
	if dec.SampleRate() <= 0 {
		return nil, ErrInvalidStreamFormat
	}

	return &mp3Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
