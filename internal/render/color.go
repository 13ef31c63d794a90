// SPDX-License-Identifier: MIT
package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var ErrInvalidColor = errors.New("render: invalid color")

// ParseColor reads RRGGBB or AARRGGBB hex, with an optional "#" or "0x"
// prefix. Six-digit colours are opaque.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimSpace(s)
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) > 2 && (hex[:2] == "0x" || hex[:2] == "0X") {
		hex = hex[2:]
	}

	alpha := uint64(0xff)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[:2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
		}
		alpha = a
		hex = hex[2:]
	default:
		return color.NRGBA{}, fmt.Errorf("%w %q: want RRGGBB or AARRGGBB", ErrInvalidColor, s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}, nil
}

// FormatColor is the inverse of ParseColor, omitting alpha when opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}
