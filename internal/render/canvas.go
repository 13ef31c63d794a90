// SPDX-License-Identifier: MIT
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"wvrender/internal/visual"

	"github.com/fogleman/gg"
)

var ErrInvalidSize = errors.New("render: canvas size must be positive")

// Canvas is the 2D surface one video frame is drawn on.
type Canvas interface {
	// Clear fills the whole surface with c.
	Clear(c color.Color)
	// StrokePolyline draws p as connected segments of the given width.
	StrokePolyline(p visual.Polyline, c color.Color, width float64)
	// Image returns the pixels. The buffer is reused by the next draw.
	Image() *image.RGBA
}

// Style holds the colours and stroke used for every frame.
type Style struct {
	Background  color.Color
	Stroke      color.Color
	StrokeWidth float64
}

// GGCanvas rasterizes with fogleman/gg into a fixed RGBA buffer.
type GGCanvas struct {
	img *image.RGBA
	dc  *gg.Context
}

var _ Canvas = (*GGCanvas)(nil)

func NewCanvas(width, height int) (*GGCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w, got %dx%d", ErrInvalidSize, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	dc := gg.NewContextForRGBA(img)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	return &GGCanvas{img: img, dc: dc}, nil
}

func (c *GGCanvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *GGCanvas) StrokePolyline(p visual.Polyline, col color.Color, width float64) {
	if len(p) < 2 {
		return
	}

	c.dc.NewSubPath()
	c.dc.MoveTo(p[0].X, p[0].Y)
	for _, pt := range p[1:] {
		c.dc.LineTo(pt.X, pt.Y)
	}
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.Stroke()
}

func (c *GGCanvas) Image() *image.RGBA { return c.img }

// SavePNG writes the current frame to path.
func (c *GGCanvas) SavePNG(path string) error {
	return c.dc.SavePNG(path)
}
