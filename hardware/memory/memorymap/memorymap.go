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

package memorymap

import "fmt"

// Access indicates which masters can see a region of the address space.
type Access uint8

// List of valid Access bits.
const (
	ARM9 Access = 0x01 << iota
	ARM11
)

// Both cores can see the region.
const Both = ARM9 | ARM11

func (a Access) String() string {
	switch a {
	case ARM9:
		return "ARM9"
	case ARM11:
		return "ARM11"
	case Both:
		return "ARM9+ARM11"
	}
	return fmt.Sprintf("access(%02x)", uint8(a))
}

// Sees returns true if a master with the access value v can see a region with
// the access value a.
func (a Access) Sees(v Access) bool {
	return a&v != 0
}

// Area is a contiguous range of addresses.
type Area struct {
	Origin uint32
	Size   uint32
}

// Memtop is the last valid address in the area.
func (ar Area) Memtop() uint32 {
	return ar.Origin + ar.Size - 1
}

// Contains returns true if address is inside the area.
func (ar Area) Contains(addr uint32) bool {
	return addr >= ar.Origin && addr-ar.Origin < ar.Size
}

func (ar Area) String() string {
	return fmt.Sprintf("%08x-%08x", ar.Origin, ar.Memtop())
}

// RAM regions.
var (
	ARM9PrivateWRAM = Area{Origin: 0x01ff8000, Size: 0x8000}
	ARM9Internal    = Area{Origin: 0x08000000, Size: 0x100000}
	VRAM            = Area{Origin: 0x18000000, Size: 0x600000}
	AXIWRAM         = Area{Origin: 0x1ff80000, Size: 0x80000}
	FCRAM           = Area{Origin: 0x20000000, Size: 0x8000000}
)

// Peripheral windows.
var (
	NDMA    = Area{Origin: 0x10002000, Size: 0x1000}
	SDMMC   = Area{Origin: 0x10006000, Size: 0x1000}
	XDMA    = Area{Origin: 0x1000c000, Size: 0x1000}
	GPU     = Area{Origin: 0x10400000, Size: 0x100000}
	Bootrom = Area{Origin: 0xffff0000, Size: 0x10000}
)

// IO space is split in two by VRAM. Addresses in the IO space that are not
// covered by a named peripheral window are served by a generic window.
var (
	IO1 = Area{Origin: 0x10000000, Size: 0x08000000}
	IO2 = Area{Origin: 0x18600000, Size: 0x1ff80000 - 0x18600000}
)

// Unused is an area of IO space that is deliberately left unmapped.
var Unused = Area{Origin: 0x10007000, Size: 0x1000}

// Test images signal their result by branching to these unmapped addresses.
const (
	TestPass uint32 = 0xf0000000
	TestFail uint32 = 0xf0000004
)

// Exception vector tables in RAM. The bootrom redirects the high vectors to
// these addresses.
const (
	ARM9VectorTable  uint32 = 0x08000000
	ARM11VectorTable uint32 = 0x1fffffa0
)
