// SPDX-License-Identifier: MIT
package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader we use.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type vorbisSource struct {
	dec        oggReader
	sampleRate int
	channels   int
	eof        bool
}

func (s *vorbisSource) SampleRate() int { return s.sampleRate }
func (s *vorbisSource) Channels() int   { return s.channels }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	// Read returns a count of values, always a multiple of the channel count.
	frames := len(dst) / s.channels
	if frames == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:frames*s.channels])
	if err == io.EOF {
		s.eof = true
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
	if err != nil {
		return 0, fmt.Errorf("decoding frame: %w", err)
	}
	return n, nil
}

// VorbisDecoder decodes Ogg Vorbis streams.
type VorbisDecoder struct{}

func (VorbisDecoder) Decode(r io.Reader) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading stream header: %w", err)
	}
	if dec.SampleRate() <= 0 || dec.Channels() <= 0 {
		return nil, ErrInvalidStreamFormat
	}

	return &vorbisSource{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
