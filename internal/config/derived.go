package config

import (
	"image/color"

	"wvrender/internal/analysis"
	"wvrender/internal/log"
	"wvrender/internal/render"
	"wvrender/internal/visual"
)

// FrameRate returns the video frame rate, one frame per hop.
func (c *Config) FrameRate() float64 {
	return float64(c.Audio.SampleRate) / float64(c.Audio.HopSize)
}

// BinRange converts the frequency window to transform bins.
func (c *Config) BinRange() (visual.BinRange, error) {
	return visual.NewBinRange(c.Audio.FrameLength, c.Audio.SampleRate, c.Video.MinFrequency, c.Video.MaxFrequency)
}

// Margin returns the horizontal inset in pixels.
func (c *Config) Margin() float64 {
	return c.Video.MarginRatio * float64(c.Video.Width)
}

func (c *Config) PeakBins() int {
	if c.Video.PeakBins > 0 {
		return c.Video.PeakBins
	}
	return c.Audio.FrameLength / 2
}

func (c *Config) StrokeColor() (color.NRGBA, error) {
	return render.ParseColor(c.Video.StrokeColor)
}

func (c *Config) BackgroundColor() (color.NRGBA, error) {
	return render.ParseColor(c.Video.BackgroundColor)
}

// Style bundles the parsed drawing settings.
func (c *Config) Style() (render.Style, error) {
	stroke, err := c.StrokeColor()
	if err != nil {
		return render.Style{}, err
	}
	bg, err := c.BackgroundColor()
	if err != nil {
		return render.Style{}, err
	}
	return render.Style{Background: bg, Stroke: stroke, StrokeWidth: c.Video.StrokeWidth}, nil
}

// Mode returns the parsed drawing mode. Validate rejects unknown names.
func (c *Config) Mode() visual.Mode {
	m, _ := visual.ParseMode(c.Video.Mode)
	return m
}

// Window returns the parsed window function, Hann when unknown.
func (c *Config) Window() analysis.WindowFunc {
	w, _ := analysis.ParseWindowFunc(c.Audio.Window)
	return w
}

// Level returns the parsed log level, info when unknown.
func (c *Config) Level() log.LogLevel {
	l, _ := log.ParseLevel(c.LogLevel)
	return l
}
