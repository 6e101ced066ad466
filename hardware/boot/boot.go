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

// Package boot places a boot image into memory and resets the cores ready for
// the first instruction.
//
// Boot images are produced by the image loaders. The boot package has no
// knowledge of file formats. A BootImage is a list of byte ranges and the
// physical addresses at which they should be placed, along with an optional
// entry point for each core.
package boot

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/logger"
)

// Sentinal error patterns.
const (
	PlacementFault = "boot: cannot place %s at %08x: %v"
	NoEntryPoint   = "boot: image has no entry point for either core"
)

// Placement is a range of bytes to be written to memory at a physical
// address.
type Placement struct {
	Label   string
	Address uint32
	Data    []byte
}

func (p Placement) String() string {
	return fmt.Sprintf("%s: %08x-%08x", p.Label, p.Address, p.Address+uint32(len(p.Data))-1)
}

// EntryPoint is the reset address of a core. Bit 0 of the address selects
// Thumb state.
type EntryPoint struct {
	Address uint32
}

func (e *EntryPoint) String() string {
	if e == nil {
		return "held"
	}
	if e.Address&0x01 == 0x01 {
		return fmt.Sprintf("%08x (thumb)", e.Address&^0x01)
	}
	return fmt.Sprintf("%08x", e.Address)
}

// BootImage is everything needed to start the console. A core with a nil entry
// point is held in reset and never executes.
type BootImage struct {
	Placements []Placement
	ARM9       *EntryPoint
	ARM11      *EntryPoint
}

// NewEntryPoint is a convenience function for creating entry points.
func NewEntryPoint(addr uint32) *EntryPoint {
	return &EntryPoint{Address: addr}
}

func (img BootImage) String() string {
	s := strings.Builder{}
	for _, p := range img.Placements {
		s.WriteString(p.String())
		s.WriteString("\n")
	}
	s.WriteString(fmt.Sprintf("ARM9 entry: %s\n", img.ARM9))
	s.WriteString(fmt.Sprintf("ARM11 entry: %s", img.ARM11))
	return s.String()
}

// Size returns the total number of bytes in all placements.
func (img BootImage) Size() int {
	var n int
	for _, p := range img.Placements {
		n += len(p.Data)
	}
	return n
}

// Memory is written to by Place(). The bus.Port type satisfies the interface.
type Memory interface {
	CheckRAM(addr uint32, length int) error
	WriteBytes(addr uint32, data []byte) error
}

// Core is reset by Boot().
type Core interface {
	Reset(entry uint32)
}

// Place writes every placement in the image to memory, in the order they
// appear in the image. The first placement that fails stops the process.
//
// Every byte of a placement must land in RAM. A placement aimed at a
// peripheral window would otherwise be lost without an error.
func Place(mem Memory, img BootImage) error {
	for _, p := range img.Placements {
		if err := mem.CheckRAM(p.Address, len(p.Data)); err != nil {
			return curated.Errorf(PlacementFault, p.Label, p.Address, err)
		}
		if err := mem.WriteBytes(p.Address, p.Data); err != nil {
			return curated.Errorf(PlacementFault, p.Label, p.Address, err)
		}
		logger.Logf(logger.Allow, "boot", "placed %s (%d bytes)", p, len(p.Data))
	}
	return nil
}

// Boot places the image and resets both cores. A core without an entry point
// is reset to address zero and should not be stepped.
//
// Memory is not cleared. Boot must be called before the first instruction of
// the session.
func Boot(mem Memory, img BootImage, arm9 Core, arm11 Core) error {
	if img.ARM9 == nil && img.ARM11 == nil {
		return curated.Errorf(NoEntryPoint)
	}

	if err := Place(mem, img); err != nil {
		return err
	}

	reset := func(c Core, e *EntryPoint, name string) {
		if e == nil {
			c.Reset(0)
			logger.Logf(logger.Allow, "boot", "%s held", name)
			return
		}
		c.Reset(e.Address)
		logger.Logf(logger.Allow, "boot", "%s entry %s", name, e)
	}
	reset(arm9, img.ARM9, "ARM9")
	reset(arm11, img.ARM11, "ARM11")

	return nil
}
