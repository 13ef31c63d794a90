// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wvrender/internal/analysis"
	"wvrender/internal/fft"
	"wvrender/internal/log"
	"wvrender/internal/visual"
	"wvrender/pkg/bitint"
)

// Environment variables read by applyEnvOverrides.
const (
	EnvLogLevel    = "WVRENDER_LOG_LEVEL"
	EnvFFmpegPath  = "WVRENDER_FFMPEG_PATH"
	EnvFFprobePath = "WVRENDER_FFPROBE_PATH"
	EnvPreviewAddr = "WVRENDER_PREVIEW_ADDR"
)

// LoadConfig builds the configuration from defaults, environment overrides
// and the YAML file at path, in that order. If path is empty, it looks for
// wvrender.yaml in the working directory and silently skips it when
// absent. An explicit path that cannot be read is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()
	cfg.applyEnvOverrides()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		log.Debugf("configuration: loaded %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides copies the WVRENDER_* variables that are set over the
// current values.
func (cfg *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{EnvLogLevel, &cfg.LogLevel},
		{EnvFFmpegPath, &cfg.Encoder.FFmpegPath},
		{EnvFFprobePath, &cfg.Audio.FFprobePath},
		{EnvPreviewAddr, &cfg.Transport.PreviewAddress},
	}

	for _, o := range overrides {
		if val, ok := os.LookupEnv(o.env); ok {
			*o.dst = val
			log.Debugf("configuration: overriding from %s: %s", o.env, val)
		}
	}
}

// Validate checks every field and returns the first problem found,
// wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return invalid("unknown log_level %q", c.LogLevel)
	}

	a := c.Audio
	switch {
	case a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate:
		return invalid("audio.sample_rate %d outside %d-%d", a.SampleRate, MinSampleRate, MaxSampleRate)
	case a.Channels < 0 || a.Channels > MaxChannels:
		return invalid("audio.channels %d outside 0-%d", a.Channels, MaxChannels)
	case !bitint.IsPowerOfTwo(a.FrameLength) || a.FrameLength < MinFrameLength || a.FrameLength > MaxFrameLength:
		suggest := min(max(bitint.NextPowerOfTwo(a.FrameLength), MinFrameLength), MaxFrameLength)
		return invalid("audio.frame_length %d must be a power of 2 in %d-%d (try %d)",
			a.FrameLength, MinFrameLength, MaxFrameLength, suggest)
	case a.HopSize <= 0 || a.HopSize > a.FrameLength:
		return invalid("audio.hop_size %d must be in 1-%d", a.HopSize, a.FrameLength)
	case a.GateThreshold < 0 || a.GateThreshold > 1:
		return invalid("audio.gate_threshold %v outside 0-1", a.GateThreshold)
	}
	if _, err := analysis.ParseWindowFunc(a.Window); err != nil {
		return invalid("audio.fft_window %q", a.Window)
	}
	if _, err := fft.New(a.FFTBackend, a.FrameLength); err != nil {
		return invalid("audio.fft_backend: %v", err)
	}

	v := c.Video
	switch {
	case v.Width <= 0 || v.Height <= 0 || v.Width > MaxCanvasDim || v.Height > MaxCanvasDim:
		return invalid("video size %dx%d outside 1-%d", v.Width, v.Height, MaxCanvasDim)
	case v.Width%2 != 0 || v.Height%2 != 0:
		return invalid("video size %dx%d must be even", v.Width, v.Height)
	case v.MinFrequency < 0 || v.MinFrequency >= v.MaxFrequency:
		return invalid("video frequency range %v-%v Hz", v.MinFrequency, v.MaxFrequency)
	case v.Gain < 0:
		return invalid("video.gain %v is negative", v.Gain)
	case v.MarginRatio < 0 || v.MarginRatio >= 0.5:
		return invalid("video.margin %v outside 0-0.5", v.MarginRatio)
	case v.PeakBins < 0 || v.WaveformPoints < 0:
		return invalid("video.peak_bins and video.waveform_points must not be negative")
	case v.StrokeWidth <= 0:
		return invalid("video.stroke_width %v must be positive", v.StrokeWidth)
	}
	mode, err := visual.ParseMode(v.Mode)
	if err != nil {
		return invalid("video.mode %q", v.Mode)
	}
	if mode == visual.ModeWaveform && v.MarginRatio == 0 {
		return invalid("video.margin must be positive in waveform mode")
	}
	if _, err := c.BinRange(); err != nil {
		return invalid("%v", err)
	}
	if _, err := c.StrokeColor(); err != nil {
		return invalid("video.stroke_color: %v", err)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return invalid("video.background_color: %v", err)
	}

	if c.Encoder.CRF > MaxCRF {
		return invalid("encoder.crf %d above %d", c.Encoder.CRF, MaxCRF)
	}

	switch c.Recording.BitDepth {
	case 16, 24, 32:
	default:
		return invalid("recording.bit_depth %d must be 16, 24 or 32", c.Recording.BitDepth)
	}

	return nil
}
