package cmd

import (
	"context"
	"errors"
	"fmt"

	"wvrender/internal/analysis"
	"wvrender/internal/audio"
	"wvrender/internal/config"
	"wvrender/internal/decode"
	"wvrender/internal/fft"
	"wvrender/internal/log"
	"wvrender/internal/render"
	"wvrender/internal/transport"
	"wvrender/internal/transport/udp"
	"wvrender/internal/video"
	"wvrender/internal/visual"
)

// Render converts input to a video at output using cfg. The output file is
// only created once the input has been opened and the output format
// accepted.
func Render(ctx context.Context, input, output string, cfg *config.Config) (err error) {
	src, err := decode.Open(ctx, input, decode.Options{
		FFmpegPath:  cfg.Encoder.FFmpegPath,
		FFprobePath: cfg.Audio.FFprobePath,
	})
	if err != nil {
		return err
	}
	defer src.Close()

	framer, err := audio.NewFramer(src, audio.FramerOptions{
		SampleRate:  cfg.Audio.SampleRate,
		Channels:    cfg.Audio.Channels,
		FrameLength: cfg.Audio.FrameLength,
		HopSize:     cfg.Audio.HopSize,
	})
	if err != nil {
		return err
	}

	tf, err := fft.New(cfg.Audio.FFTBackend, cfg.Audio.FrameLength)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewAnalyzer(tf, cfg.Window())
	if err != nil {
		return err
	}

	bins, err := cfg.BinRange()
	if err != nil {
		return err
	}
	mapper, err := visual.NewMapper(visual.MapperOptions{
		Range:          bins,
		Width:          cfg.Video.Width,
		Height:         cfg.Video.Height,
		Margin:         cfg.Margin(),
		Gain:           cfg.Video.Gain,
		PeakBins:       cfg.PeakBins(),
		Channels:       framer.Channels(),
		Mode:           cfg.Mode(),
		FrameLength:    cfg.Audio.FrameLength,
		WaveformPoints: cfg.Video.WaveformPoints,
	})
	if err != nil {
		return err
	}

	canvas, err := render.NewCanvas(cfg.Video.Width, cfg.Video.Height)
	if err != nil {
		return err
	}
	style, err := cfg.Style()
	if err != nil {
		return err
	}

	sink, err := video.OpenFFmpeg(ctx, output, video.Options{
		Width:       cfg.Video.Width,
		Height:      cfg.Video.Height,
		FPS:         framer.FrameRate(),
		FFmpegPath:  cfg.Encoder.FFmpegPath,
		Codec:       cfg.Encoder.Codec,
		Preset:      cfg.Encoder.Preset,
		CRF:         cfg.Encoder.CRF,
		PixelFormat: cfg.Encoder.PixelFormat,
	})
	if err != nil {
		return err
	}

	tr, err := newTransport(cfg.Transport)
	if err != nil {
		sink.Close()
		return err
	}

	engine, err := audio.NewEngine(audio.EngineParts{
		Framer:    framer,
		Analyzer:  analyzer,
		Mapper:    mapper,
		Canvas:    canvas,
		Sink:      sink,
		Transport: tr,
		Style:     style,
		Mode:      cfg.Mode(),
	})
	if err != nil {
		sink.Close()
		if tr != nil {
			tr.Close()
		}
		return err
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	engine.SetGateThreshold(cfg.Audio.GateThreshold)

	if cfg.Recording.Path != "" {
		if err := engine.SetRecordingBitDepth(cfg.Recording.BitDepth); err != nil {
			return err
		}
		if err := engine.StartRecording(cfg.Recording.Path); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"input":  input,
		"output": output,
		"rate":   framer.SampleRate(),
		"frame":  fmt.Sprintf("%d/%d", cfg.Audio.FrameLength, cfg.Audio.HopSize),
		"bins":   bins.String(),
	}).Info("Rendering")

	return engine.Run()
}

// newTransport builds the preview outputs named in cfg. It returns nil
// when none are configured.
func newTransport(cfg config.TransportConfig) (transport.Transport, error) {
	var outputs transport.Multi

	if cfg.PreviewAddress != "" {
		ws, err := transport.NewWebSocketTransport(cfg.PreviewAddress)
		if err != nil {
			return nil, fmt.Errorf("starting preview server: %w", err)
		}
		outputs = append(outputs, ws)
	}

	if cfg.UDPAddress != "" {
		pub, err := udp.NewUDPPublisher(cfg.UDPAddress)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("starting UDP publisher: %w", err), outputs.Close())
		}
		outputs = append(outputs, pub)
	}

	if cfg.LogEvents {
		outputs = append(outputs, transport.NewLoggingTransport())
	}

	switch len(outputs) {
	case 0:
		return nil, nil
	case 1:
		return outputs[0], nil
	default:
		return outputs, nil
	}
}
