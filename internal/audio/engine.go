// SPDX-License-Identifier: MIT
/*
Package audio turns a decoded stream into rendered video frames.

The Framer buffers decoded audio and yields overlapping analysis frames.
The Engine pulls those frames one at a time and, for each, analyses,
maps, draws and submits exactly one video frame:

	Source -> Framer -> Analyzer -> Mapper -> Canvas -> Sink

Everything runs on the caller's goroutine. Buffers (frame, spectrum,
polyline, pixels) are allocated once and reused, so the steady state
does not allocate outside the rasterizer and encoder.

Side outputs hang off the loop: a noise gate that flattens quiet frames,
a WAV recording of the analysis stream, and a preview transport that
receives one event per frame.
*/
package audio

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"wvrender/internal/analysis"
	"wvrender/internal/log"
	"wvrender/internal/render"
	"wvrender/internal/transport"
	"wvrender/internal/video"
	"wvrender/internal/visual"
)

var ErrMissingPart = errors.New("audio: engine part missing")

// EngineParts wires the pipeline stages together. Transport is optional.
type EngineParts struct {
	Framer    *Framer
	Analyzer  analysis.Processor
	Mapper    *visual.Mapper
	Canvas    render.Canvas
	Sink      video.Sink
	Transport transport.Transport
	Style     render.Style
	Mode      visual.Mode
}

type Engine struct {
	framer    *Framer
	analyzer  analysis.Processor
	mapper    *visual.Mapper
	canvas    render.Canvas
	sink      video.Sink
	transport transport.Transport
	style     render.Style
	mode      visual.Mode

	spectrum   analysis.Spectrum
	bands      []analysis.FrequencyBand
	bandLevels []float64
	binHz      float64
	peak       *analysis.Analyzer // Non-nil when the analyzer can report peaks

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold float64 // Peak absolute amplitude, 0-1

	// Recording state.
	recorder       *Recorder
	recordBitDepth int

	frames int
}

func NewEngine(parts EngineParts) (*Engine, error) {
	switch {
	case parts.Framer == nil:
		return nil, fmt.Errorf("%w: framer", ErrMissingPart)
	case parts.Analyzer == nil:
		return nil, fmt.Errorf("%w: analyzer", ErrMissingPart)
	case parts.Mapper == nil:
		return nil, fmt.Errorf("%w: mapper", ErrMissingPart)
	case parts.Canvas == nil:
		return nil, fmt.Errorf("%w: canvas", ErrMissingPart)
	case parts.Sink == nil:
		return nil, fmt.Errorf("%w: sink", ErrMissingPart)
	}
	if parts.Mode != parts.Mapper.Options().Mode {
		return nil, fmt.Errorf("audio: engine mode %s does not match mapper mode %s",
			parts.Mode, parts.Mapper.Options().Mode)
	}
	if parts.Analyzer.Size() != parts.Framer.FrameLength() {
		return nil, fmt.Errorf("audio: analyzer size %d does not match frame length %d",
			parts.Analyzer.Size(), parts.Framer.FrameLength())
	}

	e := &Engine{
		framer:         parts.Framer,
		analyzer:       parts.Analyzer,
		mapper:         parts.Mapper,
		canvas:         parts.Canvas,
		sink:           parts.Sink,
		transport:      parts.Transport,
		style:          parts.Style,
		mode:           parts.Mode,
		spectrum:       make(analysis.Spectrum, parts.Analyzer.Size()/2+1),
		bands:          analysis.DefaultBands(),
		binHz:          float64(parts.Framer.SampleRate()) / float64(parts.Framer.FrameLength()),
		recordBitDepth: 16,
	}
	e.peak, _ = parts.Analyzer.(*analysis.Analyzer)

	return e, nil
}

// Run renders every frame the Framer produces and then flushes the sink.
// The first error stops the loop; frames already submitted stay in the
// output.
func (e *Engine) Run() error {
	start := time.Now()
	logger := log.WithFields(log.Fields{"component": "engine", "mode": e.mode.String()})
	logger.Infof("Rendering at %.3f fps", e.framer.FrameRate())

	for {
		frame, err := e.framer.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading frame %d: %w", e.frames, err)
		}

		if err := e.renderFrame(frame); err != nil {
			return err
		}
	}

	if err := e.sink.Flush(); err != nil {
		return fmt.Errorf("finishing video: %w", err)
	}

	logger.WithFields(log.Fields{
		"frames":  e.frames,
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("Render complete")
	return nil
}

// Frames returns the number of frames submitted so far.
func (e *Engine) Frames() int { return e.frames }

// renderFrame draws one analysis frame and hands the pixels to the sink.
func (e *Engine) renderFrame(frame *Frame) error {
	e.canvas.Clear(e.style.Background)

	gated := e.gateEnabled && frame.PeakAmplitude() <= e.gateThreshold
	needSpectrum := e.mode == visual.ModeSpectrum || e.transport != nil

	if needSpectrum {
		if gated {
			e.spectrum = analysis.Silence(e.spectrum, len(e.spectrum))
		} else {
			e.spectrum = e.analyzer.Analyze(frame.Channels, e.spectrum)
		}
	}

	var line visual.Polyline
	switch e.mode {
	case visual.ModeWaveform:
		length := frame.Length
		if gated {
			length = 0
		}
		line = e.mapper.MapWaveform(frame.Channels, length)
	default:
		line = e.mapper.MapSpectrum(e.spectrum)
	}
	e.canvas.StrokePolyline(line, e.style.Stroke, e.style.StrokeWidth)

	if err := e.sink.Submit(e.canvas.Image()); err != nil {
		return fmt.Errorf("submitting frame %d: %w", frame.Index, err)
	}
	e.frames++

	if log.Enabled(log.LevelDebug) {
		log.Debugf("Engine: frame %d offset %d length %d gated %v", frame.Index, frame.Offset, frame.Length, gated)
	}

	if e.transport != nil {
		e.publish(frame, gated)
	}
	return nil
}

// publish sends the per-frame preview event. Transport errors are logged
// and otherwise ignored; preview is best effort.
func (e *Engine) publish(frame *Frame, gated bool) {
	ev := transport.NewFrameEvent(frame.Index, float64(frame.Offset)/float64(e.framer.SampleRate()))
	ev.Gated = gated

	if e.peak != nil {
		r := e.mapper.Options().Range
		bin, mag := e.peak.Peak(e.spectrum, r.Min, r.Max)
		ev.PeakHz = e.peak.BinFrequency(bin, float64(e.framer.SampleRate()))
		ev.PeakMagnitude = mag
	}
	e.bandLevels = analysis.BandLevels(e.spectrum, e.bands, e.binHz, e.bandLevels)
	// Queued transports hold the event after Send returns.
	ev.Bands = slices.Clone(e.bandLevels)

	if err := e.transport.Send(ev); err != nil {
		log.Warnf("Engine: preview send failed: %v", err)
	}
}

// Close stops any recording, aborts an unflushed sink and closes the
// transport. It returns the first error.
func (e *Engine) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	keep(e.StopRecording())
	if c, ok := e.sink.(io.Closer); ok {
		keep(c.Close())
	}
	if e.transport != nil {
		keep(e.transport.Close())
	}
	return first
}
