// SPDX-License-Identifier: MIT
package config

import "errors"

// Core configuration constants that define the boundaries and defaults
// for the render pipeline.
const (
	// Analysis stream
	DefaultSampleRate  = 48000 // Analysis rate; sources are resampled to it
	DefaultChannels    = 1     // Mono analysis; 0 keeps the source layout
	DefaultFrameLength = 2048  // L, samples per transform
	DefaultHopSize     = 1024  // H, 50% overlap
	DefaultWindow      = "hann"
	DefaultFFTBackend  = "gonum"

	// Picture
	DefaultWidth           = 1920
	DefaultHeight          = 1080
	DefaultMode            = "spectrum"
	DefaultMinFrequency    = 50.0
	DefaultMaxFrequency    = 10000.0
	DefaultGain            = 2.0
	DefaultMarginRatio     = 0.05 // Of the width, on each side
	DefaultStrokeColor     = "000000"
	DefaultBackgroundColor = "FFFF00"
	DefaultStrokeWidth     = 2.0

	// Encoder
	DefaultCodec       = "libx264"
	DefaultCRF         = -1 // Let the encoder choose
	DefaultPixelFormat = "yuv420p"

	DefaultRecordBitDepth = 16
	DefaultLogLevel       = "info"

	// Limits
	MinSampleRate     = 8000
	MaxSampleRate     = 192000
	MaxChannels       = 8
	MinFrameLength    = 16
	MaxFrameLength    = 65536
	MaxCanvasDim      = 8192
	MaxCRF            = 51
	DefaultConfigFile = "wvrender.yaml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all runtime options. It is built from defaults, then
// environment overrides, then a YAML file; command line flags are applied
// last by the caller.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // debug, info, warn, error
	Audio     AudioConfig     `yaml:"audio"`
	Video     VideoConfig     `yaml:"video"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig describes the analysis stream and the spectral stage.
type AudioConfig struct {
	SampleRate    int     `yaml:"sample_rate"`    // Analysis sample rate in Hz
	Channels      int     `yaml:"channels"`       // Analysis channels; 0 keeps the source layout
	FrameLength   int     `yaml:"frame_length"`   // Samples per analysis frame, power of 2
	HopSize       int     `yaml:"hop_size"`       // Samples advanced between frames
	Window        string  `yaml:"fft_window"`     // Window function name, e.g. "hann"
	FFTBackend    string  `yaml:"fft_backend"`    // "gonum" or "godsp"
	GateThreshold float64 `yaml:"gate_threshold"` // Peak amplitude below which frames draw flat; 0 disables
	FFprobePath   string  `yaml:"ffprobe_path"`   // Used by the fallback decoder
}

// VideoConfig describes the picture.
type VideoConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Mode            string  `yaml:"mode"`             // "spectrum" or "waveform"
	MinFrequency    float64 `yaml:"min_frequency"`    // Lowest plotted frequency in Hz
	MaxFrequency    float64 `yaml:"max_frequency"`    // Highest plotted frequency in Hz
	Gain            float64 `yaml:"gain"`             // Amplitude multiplier
	MarginRatio     float64 `yaml:"margin"`           // Horizontal inset as a fraction of width
	PeakBins        int     `yaml:"peak_bins"`        // Spectrum normalisation; 0 means frame_length/2
	WaveformPoints  int     `yaml:"waveform_points"`  // 0 means frame_length/4
	StrokeColor     string  `yaml:"stroke_color"`     // RRGGBB or AARRGGBB
	BackgroundColor string  `yaml:"background_color"` // RRGGBB or AARRGGBB
	StrokeWidth     float64 `yaml:"stroke_width"`
}

// EncoderConfig configures the ffmpeg video sink.
type EncoderConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	Codec       string `yaml:"codec"`
	Preset      string `yaml:"preset"`
	CRF         int    `yaml:"crf"` // Negative leaves the encoder default
	PixelFormat string `yaml:"pixel_format"`
}

// RecordingConfig enables a WAV copy of the analysis stream.
type RecordingConfig struct {
	Path     string `yaml:"path"` // Empty disables recording
	BitDepth int    `yaml:"bit_depth"`
}

// TransportConfig selects where per-frame preview events go.
type TransportConfig struct {
	PreviewAddress string `yaml:"preview_address"` // WebSocket listen address, e.g. ":8080"
	UDPAddress     string `yaml:"udp_address"`     // UDP target, e.g. "127.0.0.1:9090"
	LogEvents      bool   `yaml:"log_events"`      // Log every event at debug level
}

// NewConfig creates a Config holding the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			SampleRate:  DefaultSampleRate,
			Channels:    DefaultChannels,
			FrameLength: DefaultFrameLength,
			HopSize:     DefaultHopSize,
			Window:      DefaultWindow,
			FFTBackend:  DefaultFFTBackend,
		},
		Video: VideoConfig{
			Width:           DefaultWidth,
			Height:          DefaultHeight,
			Mode:            DefaultMode,
			MinFrequency:    DefaultMinFrequency,
			MaxFrequency:    DefaultMaxFrequency,
			Gain:            DefaultGain,
			MarginRatio:     DefaultMarginRatio,
			StrokeColor:     DefaultStrokeColor,
			BackgroundColor: DefaultBackgroundColor,
			StrokeWidth:     DefaultStrokeWidth,
		},
		Encoder: EncoderConfig{
			Codec:       DefaultCodec,
			CRF:         DefaultCRF,
			PixelFormat: DefaultPixelFormat,
		},
		Recording: RecordingConfig{
			BitDepth: DefaultRecordBitDepth,
		},
	}
}
