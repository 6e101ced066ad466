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

// Package gpu implements the framebuffer setup registers of the GPU. Nothing
// is drawn by the GPU itself. The registers are recorded so that the contents
// of a framebuffer can be rendered to an image on request.
//
// Framebuffers are stored rotated by 90 degrees. Each column of the screen,
// from the bottom of the screen to the top, is a contiguous run of pixels.
package gpu

import (
	"fmt"

	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/logger"
)

const label = "GPU"

// register offsets from the start of the window.
const (
	regTopLeft      = 0x468
	regTopFormat    = 0x470
	regTopStride    = 0x490
	regTopRight     = 0x494
	regBottom       = 0x568
	regBottomFormat = 0x570
	regBottomStride = 0x590
)

// Format is the pixel format of a framebuffer.
type Format int

// List of valid Format values.
const (
	RGBA8 Format = iota
	RGB8
	RGB565
	RGB5A1
	RGBA4
	Unknown
)

// formatFromRegister decodes the low three bits of a format register.
func formatFromRegister(v uint32) Format {
	f := Format(v & 0x07)
	if f > RGBA4 {
		return Unknown
	}
	return f
}

func (f Format) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case RGB8:
		return "RGB8"
	case RGB565:
		return "RGB565"
	case RGB5A1:
		return "RGB5A1"
	case RGBA4:
		return "RGBA4"
	}
	return "unknown"
}

// BytesPerPixel returns the size of a single pixel in the format. Returns zero
// for the Unknown format.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGBA8:
		return 4
	case RGB8:
		return 3
	case RGB565, RGB5A1, RGBA4:
		return 2
	}
	return 0
}

// Framebuffer is the setup of a single screen.
type Framebuffer struct {
	Address uint32

	// the raw value of the format register. only the low three bits select
	// the pixel format
	FormatReg uint32

	// distance in bytes between columns. zero means the columns are packed
	Stride uint32
}

// Format returns the pixel format of the framebuffer.
func (fb Framebuffer) Format() Format {
	return formatFromRegister(fb.FormatReg)
}

// GPU implements the bus.Peripheral interface.
type GPU struct {
	Top      Framebuffer
	TopRight uint32
	Bottom   Framebuffer
}

// NewGPU is the preferred method of initialisation for the GPU type.
func NewGPU() *GPU {
	return &GPU{}
}

func (g *GPU) String() string {
	return fmt.Sprintf("top: %08x %s, bottom: %08x %s", g.Top.Address, g.Top.Format(), g.Bottom.Address, g.Bottom.Format())
}

// Label implements the bus.Peripheral interface.
func (g *GPU) Label() string {
	return label
}

// Reset all registers to zero.
func (g *GPU) Reset() {
	*g = GPU{}
}

func (g *GPU) register(off uint32) *uint32 {
	switch off {
	case regTopLeft:
		return &g.Top.Address
	case regTopFormat:
		return &g.Top.FormatReg
	case regTopStride:
		return &g.Top.Stride
	case regTopRight:
		return &g.TopRight
	case regBottom:
		return &g.Bottom.Address
	case regBottomFormat:
		return &g.Bottom.FormatReg
	case regBottomStride:
		return &g.Bottom.Stride
	}
	return nil
}

// Read implements the bus.Peripheral interface. Registers not listed in the
// package documentation read as zero.
func (g *GPU) Read(addr uint32, width int) (uint32, error) {
	off := addr - memorymap.GPU.Origin
	r := g.register(off &^ 0x03)
	if r == nil {
		logger.Logf(logger.Allow, label, "read of unknown register %#05x", off)
		return 0, nil
	}
	v := *r >> ((off & 0x03) * 8)
	switch width {
	case 1:
		v &= 0xff
	case 2:
		v &= 0xffff
	}
	return v, nil
}

// Write implements the bus.Peripheral interface.
func (g *GPU) Write(addr uint32, width int, value uint32) error {
	off := addr - memorymap.GPU.Origin
	r := g.register(off &^ 0x03)
	if r == nil {
		logger.Logf(logger.Allow, label, "write to unknown register %#05x (%08x)", off, value)
		return nil
	}

	var mask uint32
	switch width {
	case 1:
		mask = 0xff
	case 2:
		mask = 0xffff
	default:
		mask = 0xffffffff
	}
	shift := (off & 0x03) * 8
	*r = *r&^(mask<<shift) | (value&mask)<<shift
	return nil
}
