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

package arm9

import (
	"github.com/jetsetilly/threemu/hardware/cpu/arm"
	"github.com/jetsetilly/threemu/hardware/cpu/cp15"
	"github.com/jetsetilly/threemu/hardware/memory/bus"
)

// Physical size of the tightly coupled memories. The configured region of a
// TCM can be larger than the memory, in which case the memory is mirrored
// throughout the region.
const (
	ITCMSize = 0x8000
	DTCMSize = 0x4000
)

// TCM sits between the ARM9 and the bus. Accesses that fall inside an enabled
// TCM region are served by the TCM and never reach the bus. All other
// accesses are passed to the bus.
//
// The TCM is private to the ARM9. DMA engines and the ARM11 access the bus
// directly and never see the contents of the TCM.
type TCM struct {
	cp  *cp15.ARM946
	bus arm.Memory

	ITCM [ITCMSize]byte
	DTCM [DTCMSize]byte
}

// NewTCM is the preferred method of initialisation for the TCM type.
func NewTCM(cp *cp15.ARM946, mem arm.Memory) *TCM {
	return &TCM{
		cp:  cp,
		bus: mem,
	}
}

// Clear the contents of both memories.
func (t *TCM) Clear() {
	clear(t.ITCM[:])
	clear(t.DTCM[:])
}

// returns the memory and the offset into it for the address. the ITCM takes
// priority when the two regions overlap
func (t *TCM) lookup(addr uint32) ([]byte, uint32, bool) {
	if base, size, ok := t.cp.ITCM(); ok && size > 0 && addr-base < size {
		return t.ITCM[:], (addr - base) % ITCMSize, true
	}
	if base, size, ok := t.cp.DTCM(); ok && size > 0 && addr-base < size {
		return t.DTCM[:], (addr - base) % DTCMSize, true
	}
	return nil, 0, false
}

// Read implements the arm.Memory interface.
func (t *TCM) Read(addr uint32, width int) (uint32, error) {
	mem, offset, ok := t.lookup(addr)
	if !ok {
		return t.bus.Read(addr, width)
	}

	if int(offset)+width > len(mem) {
		return 0, bus.Fault{Kind: bus.Misaligned, Master: master, Address: addr, Width: width}
	}

	var v uint32
	for i := width - 1; i >= 0; i-- {
		v = (v << 8) | uint32(mem[int(offset)+i])
	}
	return v, nil
}

// Write implements the arm.Memory interface.
func (t *TCM) Write(addr uint32, width int, value uint32) error {
	mem, offset, ok := t.lookup(addr)
	if !ok {
		return t.bus.Write(addr, width, value)
	}

	if int(offset)+width > len(mem) {
		return bus.Fault{Kind: bus.Misaligned, Master: master, Address: addr, Width: width, Write: true}
	}

	for i := 0; i < width; i++ {
		mem[int(offset)+i] = uint8(value)
		value >>= 8
	}
	return nil
}
