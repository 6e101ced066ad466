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

package hardware

import (
	"slices"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/arm11"
	"github.com/jetsetilly/threemu/hardware/arm9"
	"github.com/jetsetilly/threemu/hardware/boot"
	"github.com/jetsetilly/threemu/hardware/bootrom"
	"github.com/jetsetilly/threemu/hardware/dma"
	"github.com/jetsetilly/threemu/hardware/dma/ndma"
	"github.com/jetsetilly/threemu/hardware/dma/xdma"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
	"github.com/jetsetilly/threemu/hardware/peripherals/generic"
	"github.com/jetsetilly/threemu/hardware/peripherals/gpu"
	"github.com/jetsetilly/threemu/hardware/peripherals/sdmmc"
)

// Sentinal error patterns.
const (
	ConsoleError = "console: %v"
)

// Console is the main container for the emulated components of the console.
type Console struct {
	Bus *bus.Bus

	ARM9  *arm9.ARM9
	ARM11 *arm11.ARM11

	Bootrom *bootrom.Bootrom
	NDMA    *ndma.NDMA
	XDMA    *xdma.XDMA
	SDMMC   *sdmmc.SDMMC
	GPU     *gpu.GPU

	// the parts of IO space without a dedicated peripheral
	IO1 *generic.IO
	IO2 *generic.IO

	// bus port used to place boot images and to apply register overrides.
	// the port can see every region of the bus
	loader *bus.Port

	// cores that have been held by the last call to Boot()
	heldARM9  bool
	heldARM11 bool
}

// NewConsole creates a new console and everything associated with the
// hardware. The card argument can be nil, in which case the SD slot is empty.
func NewConsole(card sdmmc.Card) (*Console, error) {
	con := &Console{
		Bus:     bus.NewBus(),
		Bootrom: bootrom.NewBootrom(),
		SDMMC:   sdmmc.NewSDMMC(card),
		GPU:     gpu.NewGPU(),
		IO1:     generic.NewIO("IO1"),
		IO2:     generic.NewIO("IO2"),
	}

	for _, r := range memorymap.RAMRegions {
		if _, err := con.Bus.AddRAM(r.Label, r.Area, r.Access); err != nil {
			return nil, curated.Errorf(ConsoleError, err)
		}
	}

	// the DMA engines are bus masters on the ARM9 side of the bus
	con.NDMA = ndma.NewNDMA(con.Bus.NewPort("NDMA", memorymap.ARM9))
	con.XDMA = xdma.NewXDMA(con.Bus.NewPort("XDMA", memorymap.ARM9))

	periphs := map[memorymap.Area]bus.Peripheral{
		memorymap.NDMA:    con.NDMA,
		memorymap.SDMMC:   con.SDMMC,
		memorymap.XDMA:    con.XDMA,
		memorymap.GPU:     con.GPU,
		memorymap.Bootrom: con.Bootrom,
	}

	taken := []memorymap.Area{memorymap.Unused}
	for _, r := range memorymap.PeripheralRegions {
		p, ok := periphs[r.Area]
		if !ok {
			return nil, curated.Errorf(ConsoleError, "no peripheral for "+r.Label)
		}
		if err := con.Bus.AddPeripheral(r.Area, r.Access, p); err != nil {
			return nil, curated.Errorf(ConsoleError, err)
		}
		taken = append(taken, r.Area)
	}

	for _, ar := range Gaps(memorymap.IO1, taken) {
		if err := con.Bus.AddPeripheral(ar, memorymap.Both, con.IO1); err != nil {
			return nil, curated.Errorf(ConsoleError, err)
		}
	}
	for _, ar := range Gaps(memorymap.IO2, taken) {
		if err := con.Bus.AddPeripheral(ar, memorymap.Both, con.IO2); err != nil {
			return nil, curated.Errorf(ConsoleError, err)
		}
	}

	con.Bus.Seal()

	con.ARM9 = arm9.NewARM9(con.Bus)
	con.ARM11 = arm11.NewARM11(con.Bus)
	con.Bootrom.Attach(con.ARM9.ARM, memorymap.ARM9VectorTable)
	con.Bootrom.Attach(con.ARM11.ARM, memorymap.ARM11VectorTable)

	con.loader = con.Bus.NewPort("loader", memorymap.Both)

	return con, nil
}

// Gaps returns the parts of the window that are not covered by any of the
// taken areas. The gaps are returned in address order.
func Gaps(window memorymap.Area, taken []memorymap.Area) []memorymap.Area {
	var inside []memorymap.Area
	for _, t := range taken {
		if t.Origin <= window.Memtop() && window.Origin <= t.Memtop() {
			inside = append(inside, t)
		}
	}
	slices.SortFunc(inside, func(a, b memorymap.Area) int {
		if a.Origin < b.Origin {
			return -1
		}
		if a.Origin > b.Origin {
			return 1
		}
		return 0
	})

	var gaps []memorymap.Area

	// using uint64 so that a window ending at the top of the address space
	// does not overflow
	next := uint64(window.Origin)
	top := uint64(window.Memtop())

	for _, t := range inside {
		if uint64(t.Origin) > next {
			gaps = append(gaps, memorymap.Area{Origin: uint32(next), Size: uint32(uint64(t.Origin) - next)})
		}
		if end := uint64(t.Memtop()) + 1; end > next {
			next = end
		}
	}
	if next <= top {
		gaps = append(gaps, memorymap.Area{Origin: uint32(next), Size: uint32(top - next + 1)})
	}

	return gaps
}

// Engines returns the DMA engines in the order they are ticked.
func (con *Console) Engines() []dma.Engine {
	return []dma.Engine{con.NDMA, con.XDMA}
}

// Loader returns the bus port that can see every region of the bus.
func (con *Console) Loader() *bus.Port {
	return con.loader
}

// Reset every peripheral. The cores are reset by Boot().
func (con *Console) Reset() {
	con.NDMA.Reset()
	con.XDMA.Reset()
	con.SDMMC.Reset()
	con.GPU.Reset()
}

// Boot the console with the boot image. A core without an entry point in the
// image is held.
func (con *Console) Boot(img boot.BootImage) error {
	con.Reset()
	if err := boot.Boot(con.loader, img, con.ARM9, con.ARM11); err != nil {
		return err
	}
	con.heldARM9 = img.ARM9 == nil
	con.heldARM11 = img.ARM11 == nil
	return nil
}

// Held returns whether each core is held.
func (con *Console) Held() (arm9 bool, arm11 bool) {
	return con.heldARM9, con.heldARM11
}

// Poke writes a value through the loader port.
func (con *Console) Poke(addr uint32, width int, value uint32) error {
	return con.loader.Write(addr, width, value)
}
