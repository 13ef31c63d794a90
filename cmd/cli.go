// Package cmd wires the command line onto the render pipeline.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wvrender/internal/build"
	"wvrender/internal/config"
	"wvrender/internal/decode"
	"wvrender/internal/fft"
	"wvrender/internal/log"
	"wvrender/internal/video"
)

// ErrOutputIsInput is returned when the output path names the input file.
var ErrOutputIsInput = errors.New("output would overwrite the input")

// flagValues receives the raw flag values. Only flags the user actually set
// are copied onto the loaded configuration.
type flagValues struct {
	configPath string
	output     string
	verbose    bool
	logLevel   string

	width           int
	height          int
	minFrequency    float64
	maxFrequency    float64
	strokeColor     string
	backgroundColor string
	strokeWidth     float64
	gain            float64
	mode            string

	sampleRate  int
	channels    int
	frameLength int
	hopSize     int
	window      string
	fftBackend  string
	gate        float64

	record  string
	preview string
	udp     string
}

// Execute runs the command line with args (without the program name).
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand(ctx)
	root.SetArgs(args)
	return root.Execute()
}

// NewRootCommand builds the command tree. ctx bounds the decoder and
// encoder subprocesses.
func NewRootCommand(ctx context.Context) *cobra.Command {
	root, _ := newRootCommand(ctx)
	return root
}

func newRootCommand(ctx context.Context) (*cobra.Command, *flagValues) {
	buildInfo := build.GetBuildInfo()
	f := &flagValues{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name + " [flags] INPUT",
		Short:         buildInfo.Description,
		Version:       buildInfo.String(),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, output, err := resolve(cmd, f, args[0])
			if err != nil {
				return err
			}
			return Render(ctx, args[0], output, cfg)
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "formats",
		Short: "List supported input and output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "input:  %s (anything else via ffmpeg)\n", strings.Join(decode.Formats(), " "))
			fmt.Fprintf(out, "output: %s\n", strings.Join(video.Extensions(), " "))
			fmt.Fprintf(out, "fft:    %s\n", strings.Join(fft.Backends(), " "))
			return nil
		},
	})

	flags := rootCmd.Flags()

	// General
	flags.StringVarP(&f.configPath, "config", "c", "",
		"YAML configuration file (default "+config.DefaultConfigFile+" if present)")
	flags.StringVarP(&f.output, "output", "o", "",
		"Output video file. Default is the input name with a .mkv extension")
	flags.BoolVarP(&f.verbose, "verbose", "v", false,
		"Show verbose output (same as --log-level debug)")
	flags.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel,
		"Logging level: debug, info, warn, error")

	// Picture
	flags.IntVar(&f.width, "width", config.DefaultWidth, "Width of the video in pixels")
	flags.IntVar(&f.height, "height", config.DefaultHeight, "Height of the video in pixels")
	flags.Float64Var(&f.minFrequency, "min-frequency", config.DefaultMinFrequency, "Lowest plotted frequency (Hz)")
	flags.Float64Var(&f.maxFrequency, "max-frequency", config.DefaultMaxFrequency, "Highest plotted frequency (Hz)")
	flags.StringVar(&f.strokeColor, "stroke-color", config.DefaultStrokeColor, "Line color, RRGGBB or AARRGGBB")
	flags.StringVar(&f.backgroundColor, "background-color", config.DefaultBackgroundColor, "Background color, RRGGBB or AARRGGBB")
	flags.Float64Var(&f.strokeWidth, "stroke-width", config.DefaultStrokeWidth, "Line width in pixels")
	flags.Float64Var(&f.gain, "gain", config.DefaultGain, "Amplitude gain (increases peak height)")
	flags.StringVar(&f.mode, "mode", config.DefaultMode, "Drawing mode: spectrum or waveform")

	// Analysis
	flags.IntVar(&f.sampleRate, "sample-rate", config.DefaultSampleRate, "Analysis sample rate (Hz); input is resampled to it")
	flags.IntVar(&f.channels, "channels", config.DefaultChannels, "Analysis channels; 0 keeps the input layout")
	flags.IntVar(&f.frameLength, "frame-length", config.DefaultFrameLength, "Samples per analysis frame (power of 2)")
	flags.IntVar(&f.hopSize, "hop-size", config.DefaultHopSize, "Samples between frames; sets the frame rate")
	flags.StringVar(&f.window, "window", config.DefaultWindow, "Analysis window function")
	flags.StringVar(&f.fftBackend, "fft-backend", config.DefaultFFTBackend, "FFT implementation: "+strings.Join(fft.Backends(), ", "))
	flags.Float64Var(&f.gate, "gate", 0, "Draw frames with peak amplitude at or below this level flat (0-1, 0 disables)")

	// Side outputs
	flags.StringVar(&f.record, "record", "", "Also write the analysis audio to this WAV file")
	flags.StringVar(&f.preview, "preview", "", "Serve per-frame progress over WebSocket at this address, e.g. :8080")
	flags.StringVar(&f.udp, "udp", "", "Send per-frame progress as UDP datagrams to this address")

	return rootCmd, f
}

// resolve loads the configuration, applies explicitly set flags over it,
// validates the result and configures logging.
func resolve(cmd *cobra.Command, f *flagValues, input string) (*config.Config, string, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, "", err
	}

	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	log.SetLevel(cfg.Level())

	output := f.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".mkv"
	}
	if samePath(input, output) {
		return nil, "", fmt.Errorf("%w: %s (pass -o)", ErrOutputIsInput, output)
	}
	return cfg, output, nil
}

// samePath compares cleaned absolute paths. ffmpeg runs with -y, so a
// match would truncate the input before it is read.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func applyFlags(cmd *cobra.Command, f *flagValues, cfg *config.Config) {
	set := cmd.Flags().Changed

	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}

	v := &cfg.Video
	if set("width") {
		v.Width = f.width
	}
	if set("height") {
		v.Height = f.height
	}
	if set("min-frequency") {
		v.MinFrequency = f.minFrequency
	}
	if set("max-frequency") {
		v.MaxFrequency = f.maxFrequency
	}
	if set("stroke-color") {
		v.StrokeColor = f.strokeColor
	}
	if set("background-color") {
		v.BackgroundColor = f.backgroundColor
	}
	if set("stroke-width") {
		v.StrokeWidth = f.strokeWidth
	}
	if set("gain") {
		v.Gain = f.gain
	}
	if set("mode") {
		v.Mode = f.mode
	}

	a := &cfg.Audio
	if set("sample-rate") {
		a.SampleRate = f.sampleRate
	}
	if set("channels") {
		a.Channels = f.channels
	}
	if set("frame-length") {
		a.FrameLength = f.frameLength
	}
	if set("hop-size") {
		a.HopSize = f.hopSize
	}
	if set("window") {
		a.Window = f.window
	}
	if set("fft-backend") {
		a.FFTBackend = f.fftBackend
	}
	if set("gate") {
		a.GateThreshold = f.gate
	}

	if set("record") {
		cfg.Recording.Path = f.record
	}
	if set("preview") {
		cfg.Transport.PreviewAddress = f.preview
	}
	if set("udp") {
		cfg.Transport.UDPAddress = f.udp
	}
}
