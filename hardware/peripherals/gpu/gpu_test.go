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

package gpu_test

import (
	"image/color"
	"testing"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/hardware/peripherals/gpu"
	"github.com/jetsetilly/threemu/test"
)

const (
	topLeft      = 0x10400468
	topFormat    = 0x10400470
	topStride    = 0x10400490
	topRight     = 0x10400494
	bottom       = 0x10400568
	bottomFormat = 0x10400570
)

func newGPU(t *testing.T) (*gpu.GPU, *bus.Bus, *bus.Port) {
	t.Helper()
	g := gpu.NewGPU()
	test.ExpectImplements[bus.Peripheral](t, g)

	b := bus.NewBus()
	_, err := b.AddRAM("VRAM", memorymap.VRAM, memorymap.Both)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, b.AddPeripheral(memorymap.GPU, memorymap.ARM11, g))
	b.Seal()

	return g, b, b.NewPort("ARM11", memorymap.ARM11)
}

func TestRegisters(t *testing.T) {
	g, b, p := newGPU(t)

	test.ExpectSuccess(t, p.Write(topLeft, 4, 0x18000000))
	test.ExpectSuccess(t, p.Write(topRight, 4, 0x18100000))
	test.ExpectSuccess(t, p.Write(topFormat, 4, 0x00080341))
	test.ExpectSuccess(t, p.Write(topStride, 2, 0x2d0))
	test.ExpectSuccess(t, p.Write(bottom, 4, 0x18200000))
	test.ExpectSuccess(t, p.Write(bottomFormat, 1, 0x02))

	test.ExpectEquality(t, g.Top.Address, uint32(0x18000000))
	test.ExpectEquality(t, g.TopRight, uint32(0x18100000))
	test.ExpectEquality(t, g.Top.Format(), gpu.RGB8)
	test.ExpectEquality(t, g.Top.Stride, uint32(0x2d0))
	test.ExpectEquality(t, g.Bottom.Address, uint32(0x18200000))
	test.ExpectEquality(t, g.Bottom.Format(), gpu.RGB565)

	v, err := p.Read(topFormat, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x00080341))
	v, err = p.Read(topFormat+2, 2)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0x0008))

	// unknown registers read as zero
	test.ExpectSuccess(t, p.Write(0x10400000, 4, 0xffffffff))
	v, err = p.Read(0x10400000, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint32(0))

	// window is not visible to the ARM9
	_, err = b.NewPort("ARM9", memorymap.ARM9).Read(topLeft, 4)
	test.ExpectFailure(t, err)

	g.Reset()
	test.ExpectEquality(t, g.Top.Address, uint32(0))
}

func TestFormats(t *testing.T) {
	for v, f := range []gpu.Format{gpu.RGBA8, gpu.RGB8, gpu.RGB565, gpu.RGB5A1, gpu.RGBA4, gpu.Unknown, gpu.Unknown, gpu.Unknown} {
		fb := gpu.Framebuffer{FormatReg: uint32(v) | 0x80000}
		test.ExpectEquality(t, fb.Format(), f, v)
	}
	test.ExpectEquality(t, gpu.RGBA8.BytesPerPixel(), 4)
	test.ExpectEquality(t, gpu.RGB8.BytesPerPixel(), 3)
	test.ExpectEquality(t, gpu.RGBA4.BytesPerPixel(), 2)
	test.ExpectEquality(t, gpu.Unknown.BytesPerPixel(), 0)
}

func TestScreenshotRotation(t *testing.T) {
	g, b, p := newGPU(t)

	fb := memorymap.VRAM.Origin
	test.DemandSuccess(t, p.Write(bottom, 4, fb))
	test.DemandSuccess(t, p.Write(bottomFormat, 4, uint32(gpu.RGB8)))

	// the first pixel of the framebuffer is the bottom left of the screen
	test.DemandSuccess(t, p.WriteBytes(fb, []byte{0xff, 0x00, 0x00}))

	// the last pixel of the first framebuffer row is the top left
	test.DemandSuccess(t, p.WriteBytes(fb+239*3, []byte{0x00, 0xff, 0x00}))

	// the first pixel of the second row is one pixel to the right of the
	// bottom left
	test.DemandSuccess(t, p.WriteBytes(fb+240*3, []byte{0x00, 0x00, 0xff}))

	img, err := g.Screenshot(b, gpu.BottomScreen, 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Bounds().Dx(), 320)
	test.ExpectEquality(t, img.Bounds().Dy(), 240)

	test.ExpectEquality(t, img.RGBAAt(0, 239), color.RGBA{R: 0xff, A: 0xff})
	test.ExpectEquality(t, img.RGBAAt(0, 0), color.RGBA{G: 0xff, A: 0xff})
	test.ExpectEquality(t, img.RGBAAt(1, 239), color.RGBA{B: 0xff, A: 0xff})
	test.ExpectEquality(t, img.RGBAAt(100, 100), color.RGBA{A: 0xff})
}

func TestScreenshotFormats(t *testing.T) {
	g, b, p := newGPU(t)

	fb := memorymap.VRAM.Origin
	test.DemandSuccess(t, p.Write(topLeft, 4, fb))

	tests := []struct {
		format   gpu.Format
		pixel    []byte
		expected color.RGBA
	}{
		{format: gpu.RGBA8, pixel: []byte{0x00, 0x30, 0x20, 0x10}, expected: color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}},
		{format: gpu.RGB8, pixel: []byte{0x10, 0x20, 0x30}, expected: color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}},
		{format: gpu.RGB565, pixel: []byte{0x00, 0xf8}, expected: color.RGBA{R: 0xff, A: 0xff}},
		{format: gpu.RGB565, pixel: []byte{0xe0, 0x07}, expected: color.RGBA{G: 0xff, A: 0xff}},
		{format: gpu.RGB5A1, pixel: []byte{0x3e, 0x00}, expected: color.RGBA{B: 0xff, A: 0xff}},
		{format: gpu.RGBA4, pixel: []byte{0x00, 0xf8}, expected: color.RGBA{R: 0xff, G: 0x88, A: 0xff}},
	}

	for _, tt := range tests {
		test.DemandSuccess(t, p.Write(topFormat, 4, uint32(tt.format)))
		test.DemandSuccess(t, p.WriteBytes(fb+239*uint32(tt.format.BytesPerPixel()), tt.pixel))
		img, err := g.Screenshot(b, gpu.TopScreen, 1)
		test.DemandSuccess(t, err, tt.format)
		test.ExpectEquality(t, img.RGBAAt(0, 0), tt.expected, tt.format)
	}
}

func TestScreenshotScale(t *testing.T) {
	g, b, p := newGPU(t)

	fb := memorymap.VRAM.Origin
	test.DemandSuccess(t, p.Write(topLeft, 4, fb))
	test.DemandSuccess(t, p.Write(topFormat, 4, uint32(gpu.RGB8)))
	test.DemandSuccess(t, p.WriteBytes(fb+239*3, []byte{0xff, 0xff, 0xff}))

	img, err := g.Screenshot(b, gpu.TopScreen, 2)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Bounds().Dx(), 800)
	test.ExpectEquality(t, img.Bounds().Dy(), 480)
	test.ExpectEquality(t, img.RGBAAt(1, 1), color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	test.ExpectEquality(t, img.RGBAAt(2, 2), color.RGBA{A: 0xff})
}

func TestScreenshotErrors(t *testing.T) {
	g, b, p := newGPU(t)

	_, err := g.Screenshot(b, gpu.TopScreen, 1)
	test.ExpectSuccess(t, curated.Is(err, gpu.NoFramebuffer))

	test.DemandSuccess(t, p.Write(topLeft, 4, memorymap.VRAM.Origin))
	test.DemandSuccess(t, p.Write(topFormat, 4, 0x07))
	_, err = g.Screenshot(b, gpu.TopScreen, 1)
	test.ExpectSuccess(t, curated.Is(err, gpu.UnknownFormat))

	// framebuffer runs past the end of VRAM
	test.DemandSuccess(t, p.Write(topLeft, 4, memorymap.VRAM.Memtop()-0x100))
	test.DemandSuccess(t, p.Write(topFormat, 4, 0x00))
	_, err = g.Screenshot(b, gpu.TopScreen, 1)
	test.ExpectSuccess(t, curated.Is(err, gpu.FramebufferRAM))
}

func TestParseScreen(t *testing.T) {
	for _, s := range []gpu.Screen{gpu.TopScreen, gpu.BottomScreen} {
		p, ok := gpu.ParseScreen(s.String())
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, p, s)
	}
	p, ok := gpu.ParseScreen(" Bottom")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, p, gpu.BottomScreen)
	_, ok = gpu.ParseScreen("left")
	test.ExpectFailure(t, ok)
}
