// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

package gpu

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"

	"github.com/jetsetilly/threemu/curated"
)

// Screen selects one of the two screens.
type Screen int

// List of valid Screen values.
const (
	TopScreen Screen = iota
	BottomScreen
)

func (s Screen) String() string {
	switch s {
	case TopScreen:
		return "top"
	case BottomScreen:
		return "bottom"
	}
	return "unknown"
}

// ParseScreen is the inverse of Screen.String(). Returns false if the string
// does not name a screen.
func ParseScreen(s string) (Screen, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return TopScreen, true
	case "bottom":
		return BottomScreen, true
	}
	return TopScreen, false
}

// Size returns the dimensions of the screen as it is seen by the user.
func (s Screen) Size() (width int, height int) {
	if s == BottomScreen {
		return 320, 240
	}
	return 400, 240
}

// Sentinal error patterns.
const (
	NoFramebuffer  = "screenshot: no framebuffer for %s screen"
	UnknownFormat  = "screenshot: unknown pixel format (%d) for %s screen"
	FramebufferRAM = "screenshot: %v"
)

// Memory is used to read the contents of a framebuffer. Reads must not have
// side effects.
type Memory interface {
	Dump(origin uint32, length uint32) ([]byte, error)
}

// Screenshot renders the framebuffer of the screen to an image. The scale
// must be one or more and the image is scaled by nearest neighbour.
func (g *GPU) Screenshot(mem Memory, screen Screen, scale int) (*image.RGBA, error) {
	fb := g.Top
	if screen == BottomScreen {
		fb = g.Bottom
	}

	if fb.Address == 0 {
		return nil, curated.Errorf(NoFramebuffer, screen)
	}

	format := fb.Format()
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, curated.Errorf(UnknownFormat, fb.FormatReg&0x07, screen)
	}

	width, height := screen.Size()

	// each column of the screen is a row of the framebuffer
	stride := int(fb.Stride)
	if stride == 0 {
		stride = height * bpp
	}

	data, err := mem.Dump(fb.Address, uint32(stride*(width-1)+height*bpp))
	if err != nil {
		return nil, curated.Errorf(FramebufferRAM, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			idx := x*stride + (height-1-y)*bpp
			c := decode(format, data[idx:idx+bpp])

			// the alpha component is not used by the display
			c.A = 0xff
			img.SetRGBA(x, y, c)
		}
	}

	if scale <= 1 {
		return img, nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
	return scaled, nil
}

// expand a colour component of n bits to eight bits
func expand(v uint16, n uint) uint8 {
	v &= (1 << n) - 1
	return uint8((v << (8 - n)) | (v >> (2*n - 8)))
}

func decode(format Format, p []byte) color.RGBA {
	switch format {
	case RGBA8:
		return color.RGBA{R: p[3], G: p[2], B: p[1], A: p[0]}
	case RGB8:
		return color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
	}

	v := uint16(p[0]) | uint16(p[1])<<8
	switch format {
	case RGB565:
		return color.RGBA{R: expand(v>>11, 5), G: expand(v>>5, 6), B: expand(v, 5), A: 0xff}
	case RGB5A1:
		var a uint8
		if v&0x01 == 0x01 {
			a = 0xff
		}
		return color.RGBA{R: expand(v>>11, 5), G: expand(v>>6, 5), B: expand(v>>1, 5), A: a}
	case RGBA4:
		return color.RGBA{R: expand(v>>12, 4), G: expand(v>>8, 4), B: expand(v>>4, 4), A: expand(v, 4)}
	}
	return color.RGBA{}
}
