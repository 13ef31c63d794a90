// SPDX-License-Identifier: MIT

// Package decode turns audio files into streams of interleaved float32 PCM.
//
// Each supported container has a small adapter around a third-party decoder:
//   - WAV (PCM 16/24/32-bit) via github.com/go-audio/wav
//   - AIFF (PCM 16/24/32-bit) via github.com/go-audio/aiff
//   - MP3 via github.com/hajimehoshi/go-mp3
//   - Ogg Vorbis via github.com/jfreymuth/oggvorbis
//
// Any other extension is handed to an ffmpeg subprocess, probed first with
// ffprobe for its native rate and channel count.
//
// All adapters implement Source. Samples are in [-1, 1] and a read returning
// io.EOF ends the stream. Every failure is reported as a *DecodeError.
//
//	src, err := decode.Open(ctx, "talk.flac", decode.Options{})
//	if err != nil { ... }
//	defer src.Close()
//	buf := make([]float32, 4096*src.Channels())
//	n, err := src.ReadSamples(buf)
package decode
