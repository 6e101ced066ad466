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

package bus

import (
	"encoding/binary"
	"sort"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/hardware/memory/memorymap"
)

// Sentinal error patterns.
const (
	Overlap     = "bus: %s overlaps %s"
	Sealed      = "bus: cannot map %s after bus has been sealed"
	BadWidth    = "bus: invalid access width (%d)"
	DumpInvalid = "bus: cannot dump %08x-%08x: %v"
)

// Peripheral implementations are registered with the Bus and serve reads and
// writes to their window. Addresses are absolute. Widths are 1, 2 or 4 and the
// address is always aligned to the width.
//
// Write() is called synchronously by the Bus so any side effect of the write is
// visible to the very next access.
type Peripheral interface {
	Label() string
	Read(addr uint32, width int) (uint32, error)
	Write(addr uint32, width int, value uint32) error
}

// RAM is a region of byte addressable memory.
type RAM struct {
	label  string
	area   memorymap.Area
	access memorymap.Access
	data   []byte
}

// Label returns the name of the RAM region.
func (r *RAM) Label() string {
	return r.label
}

// Area returns the address range of the RAM region.
func (r *RAM) Area() memorymap.Area {
	return r.area
}

// Data returns the backing slice of the RAM region. Changes to the slice are
// not bus accesses.
func (r *RAM) Data() []byte {
	return r.data
}

type entry struct {
	area   memorymap.Area
	access memorymap.Access
	ram    *RAM
	periph Peripheral
}

func (e entry) label() string {
	if e.ram != nil {
		return e.ram.label
	}
	return e.periph.Label()
}

// Bus maps a 32bit physical address space to RAM regions and peripheral
// windows.
type Bus struct {
	// sorted by origin
	entries []entry
	sealed  bool
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) add(e entry) error {
	if b.sealed {
		return curated.Errorf(Sealed, e.label())
	}

	for _, o := range b.entries {
		if e.area.Origin <= o.area.Memtop() && o.area.Origin <= e.area.Memtop() {
			return curated.Errorf(Overlap, e.label(), o.label())
		}
	}

	b.entries = append(b.entries, e)
	sort.Slice(b.entries, func(i, j int) bool {
		return b.entries[i].area.Origin < b.entries[j].area.Origin
	})

	return nil
}

// AddRAM creates a new RAM region and adds it to the bus.
func (b *Bus) AddRAM(label string, area memorymap.Area, access memorymap.Access) (*RAM, error) {
	r := &RAM{
		label:  label,
		area:   area,
		access: access,
		data:   make([]byte, area.Size),
	}
	if err := b.add(entry{area: area, access: access, ram: r}); err != nil {
		return nil, err
	}
	return r, nil
}

// AddPeripheral adds a peripheral window to the bus.
func (b *Bus) AddPeripheral(area memorymap.Area, access memorymap.Access, p Peripheral) error {
	return b.add(entry{area: area, access: access, periph: p})
}

// Seal the bus. No more entries can be added after sealing.
func (b *Bus) Seal() {
	b.sealed = true
}

// IsSealed returns true if Seal() has been called.
func (b *Bus) IsSealed() bool {
	return b.sealed
}

// Regions returns all RAM regions in address order.
func (b *Bus) Regions() []*RAM {
	var r []*RAM
	for _, e := range b.entries {
		if e.ram != nil {
			r = append(r, e.ram)
		}
	}
	return r
}

// lookup returns the entry containing addr or nil.
func (b *Bus) lookup(addr uint32) *entry {
	i := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].area.Origin > addr
	}) - 1
	if i < 0 {
		return nil
	}
	if !b.entries[i].area.Contains(addr) {
		return nil
	}
	return &b.entries[i]
}

// resolve finds the entry for the access and checks that the access is
// completely contained by it.
func (b *Bus) resolve(master string, access memorymap.Access, addr uint32, width int, write bool) (*entry, error) {
	if width != 1 && width != 2 && width != 4 {
		return nil, curated.Errorf(BadWidth, width)
	}

	e := b.lookup(addr)
	if e == nil || !e.access.Sees(access) {
		return nil, Fault{Kind: Unmapped, Master: master, Address: addr, Width: width, Write: write}
	}

	if uint64(addr-e.area.Origin)+uint64(width) > uint64(e.area.Size) {
		return nil, Fault{Kind: Misaligned, Master: master, Address: addr, Width: width, Write: write}
	}

	if e.periph != nil && addr%uint32(width) != 0 {
		return nil, Fault{Kind: Misaligned, Master: master, Address: addr, Width: width, Write: write}
	}

	return e, nil
}

func (b *Bus) read(master string, access memorymap.Access, addr uint32, width int) (uint32, error) {
	e, err := b.resolve(master, access, addr, width, false)
	if err != nil {
		return 0, err
	}

	if e.periph != nil {
		return e.periph.Read(addr, width)
	}

	idx := addr - e.area.Origin
	switch width {
	case 1:
		return uint32(e.ram.data[idx]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(e.ram.data[idx:])), nil
	}
	return binary.LittleEndian.Uint32(e.ram.data[idx:]), nil
}

func (b *Bus) write(master string, access memorymap.Access, addr uint32, width int, value uint32) error {
	e, err := b.resolve(master, access, addr, width, true)
	if err != nil {
		return err
	}

	if e.periph != nil {
		return e.periph.Write(addr, width, value)
	}

	idx := addr - e.area.Origin
	switch width {
	case 1:
		e.ram.data[idx] = uint8(value)
	case 2:
		binary.LittleEndian.PutUint16(e.ram.data[idx:], uint16(value))
	default:
		binary.LittleEndian.PutUint32(e.ram.data[idx:], value)
	}
	return nil
}

// Dump returns a copy of RAM contents. The range must be completely contained
// by a single RAM region. Peripherals are never accessed so there are no side
// effects.
func (b *Bus) Dump(origin uint32, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	memtop := origin + length - 1
	e := b.lookup(origin)
	if e == nil || e.ram == nil {
		return nil, curated.Errorf(DumpInvalid, origin, memtop, "not RAM")
	}
	if uint64(origin-e.area.Origin)+uint64(length) > uint64(e.area.Size) {
		return nil, curated.Errorf(DumpInvalid, origin, memtop, "crosses end of "+e.ram.label)
	}
	idx := origin - e.area.Origin
	d := make([]byte, length)
	copy(d, e.ram.data[idx:idx+length])
	return d, nil
}
